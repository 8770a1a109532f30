package devserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/msohanifr/home-automation/internal/api"
)

func (s *Server) handleCreateEndpoint(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var input api.CreateEndpointInput
	if err := decodeJSON(r, &input); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Direction != api.DirectionInput && input.Direction != api.DirectionOutput {
		writeDetail(w, http.StatusBadRequest, "direction must be input or output")
		return
	}

	s.state.mu.Lock()
	if _, ok := s.ownedDeviceLocked(user, input.DeviceID); !ok {
		s.state.mu.Unlock()
		writeDetail(w, http.StatusForbidden, "You do not own this device/room")
		return
	}
	if conn, ok := s.state.connectors[input.ConnectorID]; !ok || conn.ownerID != user.ID {
		s.state.mu.Unlock()
		writeDetail(w, http.StatusForbidden, "You do not own this connector")
		return
	}

	scale := input.Scale
	if scale == 0 {
		scale = 1
	}

	s.state.nextEndpointID++
	now := touch()
	rec := &endpointRecord{
		Endpoint: api.Endpoint{
			ID:         s.state.nextEndpointID,
			Device:     input.DeviceID,
			Direction:  input.Direction,
			Address:    input.Address,
			Scale:      scale,
			Offset:     input.Offset,
			TrueValue:  input.TrueValue,
			FalseValue: input.FalseValue,
			IsPrimary:  input.IsPrimary,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		connectorID: input.ConnectorID,
	}
	s.state.endpoints[rec.Endpoint.ID] = rec
	out := s.state.renderEndpointLocked(rec)
	s.state.mu.Unlock()

	s.logger.Info("endpoint created",
		"device", input.DeviceID,
		"connector", input.ConnectorID,
		"direction", string(input.Direction),
		"address", input.Address,
		"user", user.Username,
	)
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateEndpoint(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64) //nolint:errcheck // 0 misses

	var patch api.EndpointPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	rec, ok := s.state.endpoints[id]
	if ok {
		_, ok = s.ownedDeviceLocked(user, rec.Device)
	}
	if !ok {
		s.state.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	if patch.Direction != nil {
		rec.Direction = *patch.Direction
	}
	if patch.Address != nil {
		rec.Address = *patch.Address
	}
	if patch.Scale != nil {
		rec.Scale = *patch.Scale
	}
	if patch.Offset != nil {
		rec.Offset = *patch.Offset
	}
	if patch.TrueValue != nil {
		rec.TrueValue = *patch.TrueValue
	}
	if patch.FalseValue != nil {
		rec.FalseValue = *patch.FalseValue
	}
	if patch.IsPrimary != nil {
		rec.IsPrimary = *patch.IsPrimary
	}
	rec.UpdatedAt = touch()
	out := s.state.renderEndpointLocked(rec)
	s.state.mu.Unlock()

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteEndpoint(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64) //nolint:errcheck // 0 misses

	s.state.mu.Lock()
	rec, ok := s.state.endpoints[id]
	if ok {
		_, ok = s.ownedDeviceLocked(user, rec.Device)
	}
	if !ok {
		s.state.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	delete(s.state.endpoints, id)
	s.state.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}
