package service

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"cad-editor/internal/cad/models"
	"cad-editor/internal/common/metrics"
)

// ============================================================
// Session Manager
// ============================================================

// session keeps a loaded document in memory. Its mutex serialises every
// operation that runs against the session.
type session struct {
	mu       sync.Mutex
	location string
	doc      *models.Document
	opened   time.Time
}

type SessionInfo struct {
	Token    string    `json:"session"`
	Location string    `json:"location"`
	Opened   time.Time `json:"opened_at"`
}

type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session // token -> session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*session),
	}
}

// Open registers a loaded document and returns its token.
func (m *SessionManager) Open(location string, doc *models.Document) SessionInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := uuid.NewString()
	s := &session{location: location, doc: doc, opened: time.Now().UTC()}
	m.sessions[token] = s
	metrics.SessionsOpen.Set(float64(len(m.sessions)))
	return SessionInfo{Token: token, Location: location, Opened: s.opened}
}

func (m *SessionManager) get(token string) (*session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	return s, ok
}

// Close drops a session and reports whether it existed.
func (m *SessionManager) Close(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[token]; !ok {
		return false
	}
	delete(m.sessions, token)
	metrics.SessionsOpen.Set(float64(len(m.sessions)))
	return true
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
