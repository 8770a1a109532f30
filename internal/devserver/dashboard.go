package devserver

import (
	"net/http"

	"github.com/msohanifr/home-automation/internal/api"
)

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	s.state.mu.RLock()
	var summary api.DashboardSummary
	for _, room := range s.state.rooms {
		if room.ownerID == user.ID {
			summary.Rooms++
		}
	}
	for _, d := range s.state.devices {
		room, ok := s.state.rooms[d.roomID]
		if !ok || room.ownerID != user.ID {
			continue
		}
		summary.Devices++
		if d.IsOn {
			summary.OnDevices++
		}
	}
	for _, in := range s.state.integrations {
		if in.ownerID == user.ID {
			summary.Integrations++
		}
	}
	s.state.mu.RUnlock()

	writeJSON(w, http.StatusOK, summary)
}
