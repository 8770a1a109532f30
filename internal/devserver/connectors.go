package devserver

import (
	"net/http"
	"sort"

	"github.com/msohanifr/home-automation/internal/api"
)

func (s *Server) handleListConnectors(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	s.state.mu.RLock()
	connectors := make([]api.Connector, 0)
	for _, rec := range s.state.connectors {
		if rec.ownerID == user.ID {
			connectors = append(connectors, rec.Connector)
		}
	}
	s.state.mu.RUnlock()

	sort.Slice(connectors, func(i, j int) bool { return connectors[i].ID < connectors[j].ID })
	writeJSON(w, http.StatusOK, connectors)
}

func (s *Server) handleCreateConnector(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var payload struct {
		Name          string `json:"name"`
		ConnectorType string `json:"connector_type"`
		Host          string `json:"host"`
		Port          *int   `json:"port"`
		Username      string `json:"username"`
		BaseTopic     string `json:"base_topic"`
		BasePath      string `json:"base_path"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.Name == "" {
		writeDetail(w, http.StatusBadRequest, "name is required")
		return
	}

	s.state.mu.Lock()
	s.state.nextConnectorID++
	now := touch()
	rec := &connectorRecord{
		Connector: api.Connector{
			ID:            s.state.nextConnectorID,
			Name:          payload.Name,
			ConnectorType: payload.ConnectorType,
			Host:          payload.Host,
			Port:          payload.Port,
			Username:      payload.Username,
			BaseTopic:     payload.BaseTopic,
			BasePath:      payload.BasePath,
			IsActive:      true,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		ownerID: user.ID,
	}
	s.state.connectors[rec.Connector.ID] = rec
	out := rec.Connector
	s.state.mu.Unlock()

	s.logger.Info("connector created",
		"name", out.Name, "type", out.ConnectorType, "user", user.Username)
	writeJSON(w, http.StatusCreated, out)
}
