// Package auth holds the identity boundary the cart depends on. Authentication
// itself (passwords, tokens) lives outside this service; here we only carry the
// resolved user id.
package auth

import (
	"context"
	"strings"
	"sync"
)

// Session reports the currently authenticated user, if any.
type Session interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// Notifier is implemented by sessions whose identity can change over time.
type Notifier interface {
	Subscribe(fn func(prev, next string)) (unsubscribe func())
}

// Manager is an interactive session: one identity at a time, switched by
// Login and Logout.
type Manager struct {
	mu        sync.RWMutex
	userID    string
	nextSubID int
	subs      map[int]func(prev, next string)
}

func NewManager() *Manager {
	return &Manager{subs: make(map[int]func(prev, next string))}
}

func (m *Manager) CurrentUserID(context.Context) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userID, m.userID != ""
}

// Login switches the session to userID. Subscribers are notified only when
// the identity actually changes.
func (m *Manager) Login(userID string) {
	m.switchTo(strings.TrimSpace(userID))
}

func (m *Manager) Logout() {
	m.switchTo("")
}

func (m *Manager) switchTo(userID string) {
	m.mu.Lock()
	prev := m.userID
	if prev == userID {
		m.mu.Unlock()
		return
	}
	m.userID = userID
	subs := make([]func(prev, next string), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	for _, fn := range subs {
		fn(prev, userID)
	}
}

func (m *Manager) Subscribe(fn func(prev, next string)) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

type ctxKey string

const ctxUserID ctxKey = "user_id"

// WithUserID returns a context carrying userID for RequestSession.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// UserIDFrom returns the user id stored by WithUserID.
func UserIDFrom(ctx context.Context) string {
	if v := ctx.Value(ctxUserID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RequestSession resolves identity from the request context, so a single
// value can serve every request of a server.
type RequestSession struct{}

func (RequestSession) CurrentUserID(ctx context.Context) (string, bool) {
	uid := UserIDFrom(ctx)
	return uid, uid != ""
}
