// Package agent runs the conversational side of the service: one chat turn
// is classify, record, ask the model with the session transcript, record the
// reply. Plan creation lives in planner; the agent only talks.
package agent

import (
	"context"
	"strings"

	"github.com/ent0n29/planpilot/internal/intent"
	"github.com/ent0n29/planpilot/internal/llm"
	"github.com/ent0n29/planpilot/internal/observability"
	"github.com/ent0n29/planpilot/internal/session"
)

const chatMaxTokens = 4000

const systemPrompt = `You are an expert Project Management AI Agent. You help users:

1. Plan Projects: break down goals into phases, milestones, and actionable tasks
2. Create Timelines: generate realistic schedules with dependencies and deadlines
3. Track Progress: monitor task completion, calculate metrics, identify blockers
4. Generate Reports: create status reports for various audiences

Communication style: be clear, structured, and actionable. Use data to support
recommendations, proactively identify risks, and adapt to the audience
(team, executive, stakeholder).`

type Agent struct {
	client   llm.Client
	sessions *session.Manager
	metrics  *observability.Metrics
}

// ChatResult is one completed chat turn.
type ChatResult struct {
	Response     string `json:"response"`
	Intent       string `json:"intent"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

func New(client llm.Client, sessions *session.Manager, metrics *observability.Metrics) *Agent {
	return &Agent{client: client, sessions: sessions, metrics: metrics}
}

// Chat processes one user message for a session. The user's turn is recorded
// before the gateway call so a failed call still leaves the transcript
// truthful; the assistant turn is recorded only on success.
func (a *Agent) Chat(ctx context.Context, sessionID, userText string) (ChatResult, error) {
	tag := intent.Classify(userText)

	message := userText
	if sess, err := a.sessions.Get(sessionID); err == nil && strings.TrimSpace(sess.CurrentProjectID) != "" {
		message += "\n\n[Project Context Available]"
	}

	if err := a.sessions.AppendTurn(sessionID, session.RoleUser, message); err != nil {
		return ChatResult{}, err
	}

	window, err := a.sessions.Window(sessionID)
	if err != nil {
		return ChatResult{}, err
	}
	messages := make([]llm.Message, 0, len(window))
	for _, turn := range window {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	resp, err := a.client.Complete(ctx, llm.Request{
		System:    systemPrompt,
		Messages:  messages,
		MaxTokens: chatMaxTokens,
	})
	if err != nil {
		a.metrics.ObserveGatewayCall("chat", "error")
		return ChatResult{}, err
	}
	a.metrics.ObserveGatewayCall("chat", "ok")
	a.metrics.ObserveTokens(resp.InputTokens, resp.OutputTokens)

	if err := a.sessions.AppendTurn(sessionID, session.RoleAssistant, resp.Text); err != nil {
		return ChatResult{}, err
	}

	return ChatResult{
		Response:     resp.Text,
		Intent:       tag.String(),
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}, nil
}
