package service

import (
	"sync"
	"time"

	"roomdesigner/internal/auth/models"

	"github.com/google/uuid"
)

// ============================================================
// Session Manager
// ============================================================

type SessionManager struct {
	mu     sync.Mutex
	tokens map[string]models.Session
	now    func() time.Time
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		tokens: make(map[string]models.Session),
		now:    time.Now,
	}
}

func (m *SessionManager) Issue(user *models.User) models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := models.Session{
		Token:    uuid.NewString(),
		UserID:   user.ID,
		Login:    user.Login,
		IssuedAt: m.now().UTC().Format(time.RFC3339),
	}
	m.tokens[s.Token] = s
	return s
}

func (m *SessionManager) Resolve(token string) (models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.tokens[token]
	return s, ok
}

// RevokeAll drops every token. The designer has one shared session state,
// so logging out ends every client's session.
func (m *SessionManager) RevokeAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.tokens)
	m.tokens = make(map[string]models.Session)
	return n
}
