package history

import (
	"sync"

	"health-bot/internal/llm"
)

// Manager keeps a bounded per-user conversation turn log used to build AI
// request context. The durable patient record stays the source of truth; the
// manager is just a cache seeded from it, so each user's context survives
// restarts without unbounded in-memory growth.
type Manager struct {
	mu       sync.RWMutex
	window   int
	sessions map[string][]llm.Message
}

func NewManager(window int) *Manager {
	if window <= 0 {
		window = 20
	}
	return &Manager{window: window, sessions: make(map[string][]llm.Message)}
}

func (m *Manager) Reset(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// Seeded reports whether the user already has an in-memory session.
func (m *Manager) Seeded(userID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.sessions[userID]
	return ok
}

// Seed replaces the user's session with turns reconstructed from the durable
// record, trimmed to the window.
func (m *Manager) Seed(userID string, msgs []llm.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = trim(append([]llm.Message(nil), msgs...), m.window)
}

func (m *Manager) AppendUser(userID, content string) {
	m.append(userID, llm.Message{Role: "user", Content: content})
}

func (m *Manager) AppendAssistant(userID, content string) {
	m.append(userID, llm.Message{Role: "assistant", Content: content})
}

func (m *Manager) append(userID string, msg llm.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = trim(append(m.sessions[userID], msg), m.window)
}

// Get returns the user's current context window in order.
func (m *Manager) Get(userID string) []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	es := m.sessions[userID]
	out := make([]llm.Message, len(es))
	copy(out, es)
	return out
}

func trim(msgs []llm.Message, window int) []llm.Message {
	if len(msgs) <= window {
		return msgs
	}
	return msgs[len(msgs)-window:]
}
