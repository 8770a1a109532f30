package devserver

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/msohanifr/home-automation/internal/api"
)

// ownedDeviceLocked resolves a device and checks ownership via its room.
// Caller holds the state lock.
func (s *Server) ownedDeviceLocked(user *userRecord, id int64) (*deviceRecord, bool) {
	rec, ok := s.state.devices[id]
	if !ok {
		return nil, false
	}
	room, ok := s.state.rooms[rec.roomID]
	if !ok || room.ownerID != user.ID {
		return nil, false
	}
	return rec, true
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var roomFilter int64
	if v := r.URL.Query().Get("room"); v != "" {
		roomFilter, _ = strconv.ParseInt(v, 10, 64) //nolint:errcheck // 0 filters nothing
	}

	s.state.mu.RLock()
	devices := make([]api.Device, 0)
	for _, rec := range s.state.devices {
		room, ok := s.state.rooms[rec.roomID]
		if !ok || room.ownerID != user.ID {
			continue
		}
		if roomFilter != 0 && rec.roomID != roomFilter {
			continue
		}
		devices = append(devices, s.state.renderDeviceLocked(rec))
	}
	s.state.mu.RUnlock()

	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64) //nolint:errcheck // 0 misses

	s.state.mu.RLock()
	rec, ok := s.ownedDeviceLocked(user, id)
	var out api.Device
	if ok {
		out = s.state.renderDeviceLocked(rec)
	}
	s.state.mu.RUnlock()

	if !ok {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	var input api.CreateDeviceInput
	if err := decodeJSON(r, &input); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Name == "" || input.RoomID == 0 {
		writeDetail(w, http.StatusBadRequest, "room and name are required")
		return
	}

	s.state.mu.Lock()
	room, ok := s.state.rooms[input.RoomID]
	if !ok || room.ownerID != user.ID {
		s.state.mu.Unlock()
		writeDetail(w, http.StatusForbidden, "You do not own this room")
		return
	}

	s.state.nextDeviceID++
	now := touch()
	rec := &deviceRecord{
		Device: api.Device{
			ID:         s.state.nextDeviceID,
			Name:       input.Name,
			DeviceType: input.DeviceType,
			DeviceKind: input.DeviceKind,
			SignalType: input.SignalType,
			Unit:       input.Unit,
			Location:   input.Location,
			IsOn:       input.IsOn,
			PositionX:  50,
			PositionY:  50,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		roomID: input.RoomID,
	}
	s.state.devices[rec.Device.ID] = rec
	out := s.state.renderDeviceLocked(rec)
	s.state.mu.Unlock()

	s.logger.Info("device created",
		"name", out.Name, "type", string(out.DeviceType), "user", user.Username)
	s.hub.broadcastDeviceUpdate(rec.roomID, out)
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64) //nolint:errcheck // 0 misses

	var patch api.DevicePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	rec, ok := s.ownedDeviceLocked(user, id)
	if !ok {
		s.state.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	patch.Apply(&rec.Device)
	rec.UpdatedAt = touch()
	out := s.state.renderDeviceLocked(rec)
	roomID := rec.roomID
	s.state.mu.Unlock()

	s.hub.broadcastDeviceUpdate(roomID, out)
	writeJSON(w, http.StatusOK, out)
}

// handleDeviceCommand applies a digital or analog command through the
// device's primary output endpoint, mirroring the backend's scaling rules:
// digital state maps through true/false values, analog setpoints invert the
// endpoint's scale and offset to produce the raw value.
func (s *Server) handleDeviceCommand(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64) //nolint:errcheck // 0 misses

	var cmd struct {
		State       *string  `json:"state"`
		IsOn        *bool    `json:"is_on"`
		TargetValue *float64 `json:"target_value"`
	}
	if err := decodeJSON(r, &cmd); err != nil {
		writeDetail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.state.mu.Lock()
	rec, ok := s.ownedDeviceLocked(user, id)
	if !ok {
		s.state.mu.Unlock()
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	endpoint := s.primaryOutputEndpointLocked(rec.Device.ID)
	if endpoint == nil {
		s.state.mu.Unlock()
		s.logger.Warn("command without output endpoint", "device_id", id)
		writeDetail(w, http.StatusBadRequest, "No output endpoint configured for this device.")
		return
	}

	var (
		engineering float64
		raw         string
	)

	if rec.SignalType == api.SignalDigital {
		var desiredOn bool
		switch {
		case cmd.State != nil:
			desiredOn = isAffirmative(*cmd.State)
		case cmd.IsOn != nil:
			desiredOn = *cmd.IsOn
		default:
			// Nothing specified: toggle.
			desiredOn = !rec.IsOn
		}

		trueVal := endpoint.TrueValue
		if trueVal == "" {
			trueVal = "1"
		}
		falseVal := endpoint.FalseValue
		if falseVal == "" {
			falseVal = "0"
		}
		if desiredOn {
			raw = trueVal
			engineering = 1
		} else {
			raw = falseVal
			engineering = 0
		}
		rec.IsOn = desiredOn
	} else {
		if cmd.TargetValue == nil {
			s.state.mu.Unlock()
			writeDetail(w, http.StatusBadRequest, "target_value is required for non-digital devices.")
			return
		}
		engineering = *cmd.TargetValue

		scale := endpoint.Scale
		offset := endpoint.Offset
		if scale == 0 {
			raw = formatValue(engineering)
		} else {
			raw = formatValue((engineering - offset) / scale)
		}
	}

	rec.LastValue = &engineering
	rec.LastValueRaw = raw
	now := touch()
	rec.LastUpdatedAt = &now
	rec.UpdatedAt = now

	out := s.state.renderDeviceLocked(rec)
	roomID := rec.roomID
	s.state.mu.Unlock()

	s.logger.Info("device command",
		"device_id", id,
		"endpoint_id", endpoint.ID,
		"signal_type", string(rec.SignalType),
		"engineering", engineering,
		"raw", raw,
		"address", endpoint.Address,
	)

	s.hub.broadcastDeviceUpdate(roomID, out)
	writeJSON(w, http.StatusOK, out)
}

// primaryOutputEndpointLocked prefers the primary output endpoint, falling
// back to any output endpoint. Caller holds the state lock.
func (s *Server) primaryOutputEndpointLocked(deviceID int64) *endpointRecord {
	var fallback *endpointRecord
	for _, ep := range s.state.endpoints {
		if ep.Device != deviceID || ep.Direction != api.DirectionOutput {
			continue
		}
		if ep.IsPrimary {
			return ep
		}
		if fallback == nil {
			fallback = ep
		}
	}
	return fallback
}

// isAffirmative mirrors the backend's loose digital state parsing.
func isAffirmative(state string) bool {
	switch strings.ToLower(state) {
	case "on", "true", "1", "yes":
		return true
	default:
		return false
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
