package devserver

import (
	"net/http"
	"sort"

	"github.com/msohanifr/home-automation/internal/api"
)

func (s *Server) handleListIntegrations(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	s.state.mu.RLock()
	integrations := make([]api.Integration, 0)
	for _, rec := range s.state.integrations {
		if rec.ownerID == user.ID {
			integrations = append(integrations, rec.Integration)
		}
	}
	s.state.mu.RUnlock()

	sort.Slice(integrations, func(i, j int) bool { return integrations[i].ID < integrations[j].ID })
	writeJSON(w, http.StatusOK, integrations)
}

func (s *Server) handleCreateIntegration(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var payload struct {
		Provider    string         `json:"provider"`
		DisplayName string         `json:"display_name"`
		Metadata    map[string]any `json:"metadata"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.Provider == "" {
		writeDetail(w, http.StatusBadRequest, "provider is required")
		return
	}

	s.state.mu.Lock()
	s.state.nextIntegration++
	now := touch()
	rec := &integrationRecord{
		Integration: api.Integration{
			ID:          s.state.nextIntegration,
			Provider:    payload.Provider,
			DisplayName: payload.DisplayName,
			Metadata:    payload.Metadata,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		ownerID: user.ID,
	}
	s.state.integrations[rec.Integration.ID] = rec
	out := rec.Integration
	s.state.mu.Unlock()

	s.logger.Info("integration created",
		"provider", out.Provider, "user", user.Username)
	writeJSON(w, http.StatusCreated, out)
}
