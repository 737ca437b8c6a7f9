package editor

import (
	"sort"
	"sync"

	"github.com/dd0wney/cluso-netbuilder/pkg/logging"
)

// Manager keeps the open sessions of a server process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	opts     Options
}

// NewManager creates a manager whose sessions are built with opts.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		opts:     opts,
	}
}

// Create opens a new session.
func (m *Manager) Create() *Session {
	s := NewSession(m.opts)

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and forgets a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	return nil
}

// List returns the ids of the open sessions, oldest first.
func (m *Manager) List() []string {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].created.Equal(sessions[j].created) {
			return sessions[i].id < sessions[j].id
		}
		return sessions[i].created.Before(sessions[j].created)
	})
	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.id
	}
	return ids
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close closes every session.
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
