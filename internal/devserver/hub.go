package devserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/msohanifr/home-automation/internal/api"
	"github.com/msohanifr/home-automation/internal/infrastructure/logging"
)

// upgrader configures the WebSocket upgrader. Origin checks are relaxed for
// local development.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// wsEnvelope is the live-channel message shape.
type wsEnvelope struct {
	Type    string       `json:"type"`
	Device  *api.Device  `json:"device,omitempty"`
	Devices []api.Device `json:"devices,omitempty"`
}

// hub fans device updates out to the websocket clients of each room.
type hub struct {
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[int64]map[*wsClient]struct{} // room id -> clients
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func newHub(logger *logging.Logger) *hub {
	return &hub{
		logger:  logger,
		clients: make(map[int64]map[*wsClient]struct{}),
	}
}

// run blocks until the context is cancelled, then closes every client.
func (h *hub) run(ctx context.Context) {
	<-ctx.Done()

	h.mu.Lock()
	for _, room := range h.clients {
		for client := range room {
			close(client.send)
		}
	}
	h.clients = make(map[int64]map[*wsClient]struct{})
	h.mu.Unlock()
}

// register adds a client to a room's fan-out set.
func (h *hub) register(roomID int64, client *wsClient) {
	h.mu.Lock()
	if h.clients[roomID] == nil {
		h.clients[roomID] = make(map[*wsClient]struct{})
	}
	h.clients[roomID][client] = struct{}{}
	h.mu.Unlock()
}

// unregister removes a client. Only the goroutine that removes the client
// from the map closes its send channel, preventing double-close panics.
func (h *hub) unregister(roomID int64, client *wsClient) {
	h.mu.Lock()
	room := h.clients[roomID]
	_, existed := room[client]
	delete(room, client)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
}

// broadcastDeviceUpdate pushes a device_update envelope to every client
// watching the device's room. Slow clients are dropped rather than blocking
// the sender.
func (h *hub) broadcastDeviceUpdate(roomID int64, device api.Device) {
	data, err := json.Marshal(wsEnvelope{Type: "device_update", Device: &device})
	if err != nil {
		h.logger.Error("encoding device update", "error", err)
		return
	}

	h.mu.RLock()
	var stale []*wsClient
	for client := range h.clients[roomID] {
		select {
		case client.send <- data:
		default:
			stale = append(stale, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range stale {
		h.unregister(roomID, client)
	}
}

// handleRoomSocket upgrades the connection and streams room updates,
// starting with a full devices_snapshot.
func (s *Server) handleRoomSocket(w http.ResponseWriter, r *http.Request) {
	roomID, err := strconv.ParseInt(chi.URLParam(r, "roomID"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 64),
	}
	s.hub.register(roomID, client)
	s.logger.Debug("room socket connected", "room_id", roomID)

	// Snapshot first, so a client that reconnects converges immediately.
	s.state.mu.RLock()
	devices := make([]api.Device, 0)
	for _, rec := range s.state.devices {
		if rec.roomID == roomID {
			devices = append(devices, s.state.renderDeviceLocked(rec))
		}
	}
	s.state.mu.RUnlock()

	if data, err := json.Marshal(wsEnvelope{Type: "devices_snapshot", Devices: devices}); err == nil {
		select {
		case client.send <- data:
		default:
		}
	}

	go s.writePump(roomID, client)
	go s.readPump(roomID, client)
}

// writePump drains the send channel onto the socket.
func (s *Server) writePump(roomID int64, client *wsClient) {
	defer client.conn.Close() //nolint:errcheck // Best-effort close on exit

	for data := range client.send {
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.hub.unregister(roomID, client)
			return
		}
	}
}

// readPump discards inbound frames; the protocol is one-way. Its real job is
// detecting disconnects.
func (s *Server) readPump(roomID int64, client *wsClient) {
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			s.hub.unregister(roomID, client)
			s.logger.Debug("room socket disconnected", "room_id", roomID)
			return
		}
	}
}
