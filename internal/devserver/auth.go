package devserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/msohanifr/home-automation/internal/api"
)

// tokenPrefix is the Authorization scheme the backend uses for its opaque
// tokens.
const tokenPrefix = "Token "

type contextKey string

const userContextKey contextKey = "devserver.user"

// authMiddleware resolves the bearer token and injects the user into the
// request context. Missing or stale tokens yield 401.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, tokenPrefix) {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		user, ok := s.state.userForToken(strings.TrimPrefix(header, tokenPrefix))
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Invalid token.")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestUser returns the authenticated user placed by authMiddleware.
func requestUser(r *http.Request) *userRecord {
	u, _ := r.Context().Value(userContextKey).(*userRecord)
	return u
}

// requestToken extracts the raw bearer token from the request.
func requestToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), tokenPrefix)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeDetail(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, token, ok := s.state.createUser(creds.Username, creds.Password)
	if !ok {
		writeDetail(w, http.StatusBadRequest, "username already exists")
		return
	}

	s.logger.Info("user registered", "username", user.Username)
	writeJSON(w, http.StatusCreated, api.AuthResponse{Token: token, User: user.User})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := decodeJSON(r, &creds); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, ok := s.state.authenticate(creds.Username, creds.Password)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"non_field_errors": []string{"Unable to log in with provided credentials."},
		})
		return
	}

	s.logger.Info("user logged in", "username", user.Username)
	writeJSON(w, http.StatusOK, api.AuthResponse{Token: token, User: user.User})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.state.revokeToken(requestToken(r))
	writeJSON(w, http.StatusOK, map[string]string{"detail": "Logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]api.User{"user": requestUser(r).User})
}
