package devserver

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/msohanifr/home-automation/internal/api"
)

// state is the in-memory dataset behind the stub. Everything lives in maps
// guarded by one mutex; ids are monotonic per entity. Data vanishes on
// restart, which is the point of a dev stub.
type state struct {
	mu sync.RWMutex

	users       map[int64]*userRecord
	usersByName map[string]int64
	tokens      map[string]int64 // opaque token -> user id

	rooms        map[int64]*roomRecord
	devices      map[int64]*deviceRecord
	integrations map[int64]*integrationRecord
	connectors   map[int64]*connectorRecord
	endpoints    map[int64]*endpointRecord

	nextUserID      int64
	nextRoomID      int64
	nextDeviceID    int64
	nextIntegration int64
	nextConnectorID int64
	nextEndpointID  int64
}

type userRecord struct {
	api.User
	password string
}

type roomRecord struct {
	api.Room
	ownerID int64
}

type deviceRecord struct {
	api.Device
	roomID int64
}

type integrationRecord struct {
	api.Integration
	ownerID int64
}

type connectorRecord struct {
	api.Connector
	ownerID int64
}

type endpointRecord struct {
	api.Endpoint
	connectorID int64
}

func newState() *state {
	return &state{
		users:        make(map[int64]*userRecord),
		usersByName:  make(map[string]int64),
		tokens:       make(map[string]int64),
		rooms:        make(map[int64]*roomRecord),
		devices:      make(map[int64]*deviceRecord),
		integrations: make(map[int64]*integrationRecord),
		connectors:   make(map[int64]*connectorRecord),
		endpoints:    make(map[int64]*endpointRecord),
	}
}

// createUser registers a user and mints their token. Callers hold no lock.
func (s *state) createUser(username, password string) (*userRecord, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByName[strings.ToLower(username)]; taken {
		return nil, "", false
	}

	s.nextUserID++
	u := &userRecord{
		User:     api.User{ID: s.nextUserID, Username: username},
		password: password,
	}
	s.users[u.ID] = u
	s.usersByName[strings.ToLower(username)] = u.ID

	token := s.mintTokenLocked(u.ID)
	return u, token, true
}

// authenticate checks credentials and returns the user's token.
func (s *state) authenticate(username, password string) (*userRecord, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.usersByName[strings.ToLower(username)]
	if !ok {
		return nil, "", false
	}
	u := s.users[id]
	if u.password != password {
		return nil, "", false
	}
	return u, s.mintTokenLocked(id), true
}

// mintTokenLocked reuses the user's existing token, or mints a fresh one.
// Mirrors token get_or_create semantics: one live token per user.
func (s *state) mintTokenLocked(userID int64) string {
	for token, id := range s.tokens {
		if id == userID {
			return token
		}
	}
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

// userForToken resolves a bearer token.
func (s *state) userForToken(token string) (*userRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tokens[token]
	if !ok {
		return nil, false
	}
	return s.users[id], true
}

// revokeToken drops a token at logout.
func (s *state) revokeToken(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// renderRoom produces the wire shape with the owner embedded.
func (s *state) renderRoomLocked(r *roomRecord) api.Room {
	out := r.Room
	if owner, ok := s.users[r.ownerID]; ok {
		u := owner.User
		out.Owner = &u
	}
	return out
}

// renderDeviceLocked produces the wire shape with room and endpoints embedded.
func (s *state) renderDeviceLocked(d *deviceRecord) api.Device {
	out := d.Device
	if room, ok := s.rooms[d.roomID]; ok {
		r := s.renderRoomLocked(room)
		out.Room = &r
	}
	out.Endpoints = nil
	for _, ep := range s.endpoints {
		if ep.Device == d.Device.ID {
			out.Endpoints = append(out.Endpoints, s.renderEndpointLocked(ep))
		}
	}
	return out
}

func (s *state) renderEndpointLocked(ep *endpointRecord) api.Endpoint {
	out := ep.Endpoint
	if conn, ok := s.connectors[ep.connectorID]; ok {
		c := conn.Connector
		out.Connector = &c
	}
	return out
}

// renderDevice is the lock-taking variant used by handlers.
func (s *state) renderDevice(d *deviceRecord) api.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renderDeviceLocked(d)
}

// touch stamps an updated_at on any record's behalf.
func touch() time.Time {
	return time.Now().UTC()
}
