package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Turn roles. Ordering of turns is significant: the transcript is replayed
// verbatim as dialogue context on every gateway call.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

var (
	ErrNotFound    = errors.New("session not found")
	ErrInvalidRole = errors.New("invalid turn role")
)

// Turn is one immutable message in a session's transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session scopes a conversation: its ordered transcript and the project the
// dialogue currently refers to. Process-lifetime only, never persisted.
type Session struct {
	ID               string    `json:"session_id"`
	Status           Status    `json:"status"`
	Turns            []Turn    `json:"turns"`
	CurrentProjectID string    `json:"current_project_id,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	LastActivityAt   time.Time `json:"last_activity_at"`
}

// Manager owns all sessions and serializes their mutation. Turns are only
// ever appended; nothing outside this package writes them.
type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	inactivityTimeout time.Duration
	historyWindow     int
	onExpire          func(*Session)
	onEvict           func(turns int)
}

func NewManager(inactivityTimeout time.Duration, historyWindow int) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 30 * time.Minute
	}
	if historyWindow <= 0 {
		historyWindow = 40
	}
	return &Manager{
		sessions:          make(map[string]*Session),
		inactivityTimeout: inactivityTimeout,
		historyWindow:     historyWindow,
	}
}

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// SetEvictHook observes turns dropped from the gateway context window.
func (m *Manager) SetEvictHook(hook func(turns int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onEvict = hook
}

func (m *Manager) Create() *Session {
	return m.createLocked(uuid.NewString())
}

// Ensure returns the session with the given id, creating it if absent.
// WebSocket clients bring their own session identifiers.
func (m *Manager) Ensure(sessionID string) *Session {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return m.Create()
	}
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		return clone(s)
	}
	return m.createLocked(sessionID)
}

func (m *Manager) createLocked(id string) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:             id,
		Status:         StatusActive,
		StartedAt:      now,
		LastActivityAt: now,
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[id]; ok {
		return clone(existing)
	}
	m.sessions[id] = s
	return clone(s)
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

// AppendTurn adds one turn to the session transcript.
func (m *Manager) AppendTurn(sessionID, role, content string) error {
	if role != RoleUser && role != RoleAssistant {
		return ErrInvalidRole
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	s.Turns = append(s.Turns, Turn{Role: role, Content: content})
	s.LastActivityAt = time.Now().UTC()
	return nil
}

// History returns the full ordered transcript.
func (m *Manager) History(sessionID string) ([]Turn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Turn, len(s.Turns))
	copy(out, s.Turns)
	return out, nil
}

// Window returns the last historyWindow turns for gateway calls. The full
// transcript is kept; only the model context is bounded, so cost per call
// stays predictable as a session ages.
func (m *Manager) Window(sessionID string) ([]Turn, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	if !ok {
		m.mu.RUnlock()
		return nil, ErrNotFound
	}
	evicted := len(s.Turns) - m.historyWindow
	start := 0
	if evicted > 0 {
		start = evicted
	}
	out := make([]Turn, len(s.Turns)-start)
	copy(out, s.Turns[start:])
	hook := m.onEvict
	m.mu.RUnlock()

	if evicted > 0 && hook != nil {
		hook(evicted)
	}
	return out, nil
}

// Reset clears the transcript and the current project association.
func (m *Manager) Reset(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	s.Turns = nil
	s.CurrentProjectID = ""
	s.LastActivityAt = time.Now().UTC()
	return nil
}

func (m *Manager) SetCurrentProject(sessionID, projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	s.CurrentProjectID = projectID
	s.LastActivityAt = time.Now().UTC()
	return nil
}

func (m *Manager) End(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	s.Status = StatusEnded
	s.LastActivityAt = time.Now().UTC()
	return clone(s), nil
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.Status != StatusActive {
			// Ended sessions hold no further value; drop them.
			delete(m.sessions, id)
			continue
		}
		if now.Sub(s.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		s.Status = StatusEnded
		s.LastActivityAt = now
		expired = append(expired, clone(s))
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	if s.Turns != nil {
		c.Turns = make([]Turn, len(s.Turns))
		copy(c.Turns, s.Turns)
	}
	return &c
}
