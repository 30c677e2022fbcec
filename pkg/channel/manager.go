package channel

import "sync"

// Binding associates a session ID with its live channel and owner
type Binding struct {
	SessionID string
	UserID    string
	Channel   Channel
}

// Manager tracks live channel bindings by session ID. It is the single
// registry both dispatch paths resolve channels through.
type Manager struct {
	mu       sync.RWMutex
	bindings map[string]*Binding
}

// NewManager creates a new Manager
func NewManager() *Manager {
	return &Manager{
		bindings: make(map[string]*Binding),
	}
}

// Bind registers a channel for a session, replacing any previous binding
func (m *Manager) Bind(sessionID, userID string, ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[sessionID] = &Binding{
		SessionID: sessionID,
		UserID:    userID,
		Channel:   ch,
	}
}

// Unbind removes the binding for a session, if any
func (m *Manager) Unbind(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bindings, sessionID)
}

// Get returns the binding for a session
func (m *Manager) Get(sessionID string) (*Binding, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bindings[sessionID]
	return b, ok
}
