package session

import (
	"sync"

	"github.com/msohanifr/home-automation/internal/api"
)

// Session is the explicit auth context passed to collaborators instead of
// ambient global state. It is initialised at login success and torn down at
// logout.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Session struct {
	mu    sync.RWMutex
	token string
	user  api.User
}

// New creates an empty (anonymous) session.
func New() *Session {
	return &Session{}
}

// Token returns the current bearer token, or "" when logged out.
// Session satisfies api.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current user profile. Meaningful only when authenticated.
func (s *Session) User() api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Authenticated reports whether a token is present.
func (s *Session) Authenticated() bool {
	return s.Token() != ""
}

// Start installs a fresh token and profile after a successful login or
// register.
func (s *Session) Start(token string, user api.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()
}

// End clears the session at logout.
func (s *Session) End() {
	s.mu.Lock()
	s.token = ""
	s.user = api.User{}
	s.mu.Unlock()
}
