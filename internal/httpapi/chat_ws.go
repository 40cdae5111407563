package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ent0n29/planpilot/internal/llm"
	"github.com/ent0n29/planpilot/internal/session"
)

const (
	wsReadLimit    = 64 * 1024
	wsWriteTimeout = 10 * time.Second
	wsIdleTimeout  = 5 * time.Minute
)

type wsInbound struct {
	Message string `json:"message"`
}

type wsOutbound struct {
	Type      string         `json:"type"`
	SessionID string         `json:"session_id,omitempty"`
	Response  string         `json:"response,omitempty"`
	Intent    string         `json:"intent,omitempty"`
	Usage     *wsUsage       `json:"usage,omitempty"`
	Code      string         `json:"code,omitempty"`
	Detail    string         `json:"detail,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

type wsUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// handleChatWS runs a chat loop over a websocket. Each inbound frame is one
// user message; each outbound "message" frame is the completed turn. Gateway
// failures produce an "error" frame and the connection stays open, matching
// the never-abort posture of the rest of the service.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	sessionID := strings.TrimSpace(r.URL.Query().Get("session_id"))
	var sess *session.Session
	if sessionID == "" {
		sess = s.sessions.Create()
	} else {
		sess = s.sessions.Ensure(sessionID)
	}
	s.metrics.SetActiveSessions(s.sessions.ActiveCount())

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsReadLimit)

	if err := writeFrame(conn, wsOutbound{Type: "connected", SessionID: sess.ID}); err != nil {
		return
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		var in wsInbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws session %s: read: %v", sess.ID, err)
			}
			return
		}
		s.metrics.ObserveWSMessage("in", "message")

		text := strings.TrimSpace(in.Message)
		if text == "" {
			if err := writeFrame(conn, wsOutbound{Type: "error", Code: "empty_message", Detail: "message is required"}); err != nil {
				return
			}
			continue
		}

		result, err := s.agent.Chat(r.Context(), sess.ID, text)
		if err != nil {
			if err := writeFrame(conn, errorFrame(err)); err != nil {
				return
			}
			continue
		}
		out := wsOutbound{
			Type:     "message",
			Response: result.Response,
			Intent:   result.Intent,
			Usage:    &wsUsage{InputTokens: result.InputTokens, OutputTokens: result.OutputTokens},
		}
		s.metrics.ObserveWSMessage("out", out.Type)
		if err := writeFrame(conn, out); err != nil {
			return
		}
	}
}

func errorFrame(err error) wsOutbound {
	code := "chat_failed"
	var ge *llm.GatewayError
	if errors.As(err, &ge) {
		code = ge.Code
	}
	return wsOutbound{Type: "error", Code: code, Detail: err.Error()}
}

func writeFrame(conn *websocket.Conn, frame wsOutbound) error {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(frame)
}
