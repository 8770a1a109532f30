package roomview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
)

// ChannelState is the lifecycle state of the live channel.
type ChannelState int

// Channel lifecycle. There is no automatic reconnection: once offline the
// channel stays offline until the owning view re-opens it.
const (
	ChannelIdle ChannelState = iota
	ChannelConnecting
	ChannelOnline
	ChannelOffline
)

// String returns the state name for logs.
func (s ChannelState) String() string {
	switch s {
	case ChannelIdle:
		return "idle"
	case ChannelConnecting:
		return "connecting"
	case ChannelOnline:
		return "online"
	case ChannelOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// ErrChannelClosed is returned when opening an already-closed channel.
var ErrChannelClosed = errors.New("roomview: channel closed")

// RoomSocketURL derives the live-channel URL for a room from the REST base
// URL: same host, scheme mirrored (http becomes ws, https becomes wss), the
// given websocket port, path /ws/rooms/{roomID}/.
func RoomSocketURL(baseURL string, wsPort int, roomID int64) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return fmt.Sprintf("%s://%s:%d/ws/rooms/%d/", scheme, u.Hostname(), wsPort, roomID), nil
}

// Channel is the live update stream for one room. It owns a single websocket
// connection and feeds decoded messages into the store; the REST client never
// writes through it. One Channel serves one room for its whole lifetime.
type Channel struct {
	store    *Store
	logger   Logger
	recorder Recorder

	mu      sync.Mutex
	conn    *websocket.Conn
	state   ChannelState
	closed  bool
	done    chan struct{}
	onState func(ChannelState)
}

// NewChannel creates an idle channel feeding the given store.
func NewChannel(store *Store, logger Logger) *Channel {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Channel{
		store:    store,
		logger:   logger,
		recorder: noopRecorder{},
		state:    ChannelIdle,
	}
}

// SetRecorder attaches a telemetry recorder fed with every device state the
// channel applies. Must be called before Open.
func (c *Channel) SetRecorder(r Recorder) {
	if r == nil {
		r = noopRecorder{}
	}
	c.recorder = r
}

// SetOnStateChange registers a callback invoked on every state transition.
// Must be called before Open. The callback must not call back into the
// channel.
func (c *Channel) SetOnStateChange(fn func(ChannelState)) {
	c.mu.Lock()
	c.onState = fn
	c.mu.Unlock()
}

// State returns the current channel state.
func (c *Channel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// transition records a state change and fires the callback outside the lock.
func (c *Channel) transition(next ChannelState) {
	c.mu.Lock()
	if c.state == next {
		c.mu.Unlock()
		return
	}
	c.state = next
	fn := c.onState
	c.mu.Unlock()

	if fn != nil {
		fn(next)
	}
}

// Open dials the room socket and starts the read loop. A failed dial leaves
// the channel offline; REST data already rendered stays usable.
func (c *Channel) Open(ctx context.Context, socketURL string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChannelClosed
	}
	if c.conn != nil {
		c.mu.Unlock()
		return fmt.Errorf("roomview: channel already open")
	}
	c.mu.Unlock()

	c.transition(ChannelConnecting)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, socketURL, nil) //nolint:bodyclose // Hijacked by the websocket upgrade
	if err != nil {
		c.transition(ChannelOffline)
		return fmt.Errorf("dialing %s: %w", socketURL, err)
	}

	c.mu.Lock()
	c.conn = conn
	c.done = make(chan struct{})
	done := c.done
	c.mu.Unlock()

	c.transition(ChannelOnline)
	c.logger.Info("live channel online", "url", socketURL)
	go c.readLoop(conn, done)
	return nil
}

// readLoop consumes messages until the connection drops or Close is called.
func (c *Channel) readLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			intentional := c.closed
			c.conn = nil
			c.mu.Unlock()

			c.transition(ChannelOffline)
			if !intentional {
				c.logger.Warn("live channel dropped", "error", err)
			}
			return
		}
		c.dispatch(data)
	}
}

// dispatch decodes one envelope and applies it to the store. Malformed
// payloads are dropped without disturbing existing state.
func (c *Channel) dispatch(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Warn("dropping malformed channel message", "error", err)
		return
	}

	switch msg.Type {
	case MessageDeviceUpdate:
		if msg.Device == nil {
			c.logger.Warn("device_update without device payload")
			return
		}
		c.store.Upsert(*msg.Device)
		// Record the merged record, not the bare delta.
		if d, ok := c.store.Get(msg.Device.ID); ok {
			c.recorder.RecordDeviceState(d)
		}
	case MessageDevicesSnapshot:
		c.store.ReplaceAll(msg.Devices)
		for _, d := range msg.Devices {
			c.recorder.RecordDeviceState(d)
		}
	default:
		c.logger.Debug("ignoring channel message", "type", string(msg.Type))
	}
}

// Close tears the channel down and waits for the read loop to exit. The
// channel cannot be reused afterwards.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	done := c.done
	c.mu.Unlock()

	if conn != nil {
		//nolint:errcheck // Best-effort close handshake before teardown
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err := conn.Close(); err != nil {
			c.logger.Debug("closing channel connection", "error", err)
		}
	}
	if done != nil {
		<-done
	}

	c.transition(ChannelOffline)
	return nil
}
