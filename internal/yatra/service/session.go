package service

import (
	"sync"

	"github.com/google/uuid"
)

// ============================================================
// Session Manager
// ============================================================

// VisitorState - состояние одной пользовательской сессии.
type VisitorState struct {
	WelcomeDismissed bool `json:"welcome_dismissed"`
}

// SessionManager хранит токены администраторов и состояния посетителей.
// Время жизни - время жизни процесса.
type SessionManager struct {
	mu       sync.Mutex
	admins   map[string]string // token -> adminID
	visitors map[string]*VisitorState
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		admins:   make(map[string]string),
		visitors: make(map[string]*VisitorState),
	}
}

func (m *SessionManager) IssueAdmin(adminID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := uuid.NewString()
	m.admins[token] = adminID
	return token
}

func (m *SessionManager) ResolveAdmin(token string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	adminID, ok := m.admins[token]
	return adminID, ok
}

// StartVisitor заводит новую сессию посетителя с чистым состоянием.
func (m *SessionManager) StartVisitor() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	token := uuid.NewString()
	m.visitors[token] = &VisitorState{}
	return token
}

// Visitor возвращает копию состояния посетителя.
func (m *SessionManager) Visitor(token string) (VisitorState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.visitors[token]
	if !ok {
		return VisitorState{}, false
	}
	return *st, true
}

// DismissWelcome отмечает приветственный попап закрытым до конца сессии.
func (m *SessionManager) DismissWelcome(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.visitors[token]
	if !ok {
		return false
	}
	st.WelcomeDismissed = true
	return true
}
