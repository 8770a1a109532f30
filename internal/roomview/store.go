package roomview

import (
	"sync"

	"github.com/msohanifr/home-automation/internal/api"
)

// Logger is the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Observer is notified after every store mutation. Observers drive rendering
// of dependent views; they must not mutate the store re-entrantly.
type Observer func()

// Store is the in-memory, ordered device collection for the room currently
// open: the single source of truth for rendering. It holds no external
// connections and is owned by exactly one room view at a time.
//
// The live channel goroutine and controller calls mutate the store
// concurrently; all methods are safe for concurrent use. The only ordering
// guarantee across writers is per-field shallow-merge idempotence: the last
// write for a field wins by wall-clock arrival.
type Store struct {
	mu        sync.RWMutex
	devices   []api.Device
	index     map[int64]int // device id -> slice position
	observers []Observer
	logger    Logger
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		index:  make(map[int64]int),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
}

// Subscribe registers an observer invoked after every mutation.
func (s *Store) Subscribe(fn Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// ReplaceAll swaps in a full device set, discarding any ids not present in
// the new snapshot. Order follows the snapshot.
func (s *Store) ReplaceAll(devices []api.Device) {
	s.mu.Lock()
	s.devices = make([]api.Device, 0, len(devices))
	s.index = make(map[int64]int, len(devices))
	for _, d := range devices {
		if _, exists := s.index[d.ID]; exists {
			// Duplicate id in a snapshot: later record wins.
			s.devices[s.index[d.ID]] = clampPosition(d)
			continue
		}
		s.index[d.ID] = len(s.devices)
		s.devices = append(s.devices, clampPosition(d))
	}
	s.mu.Unlock()

	s.notify()
}

// Upsert merges a partial record into the device with the patch's id,
// appending a new device when the id is absent. Present fields overwrite,
// absent fields are retained; id uniqueness is guaranteed by these
// semantics alone.
func (s *Store) Upsert(patch api.DevicePatch) {
	s.mu.Lock()
	if pos, ok := s.index[patch.ID]; ok {
		d := s.devices[pos]
		patch.Apply(&d)
		s.devices[pos] = clampPosition(d)
	} else {
		d := api.Device{ID: patch.ID}
		patch.Apply(&d)
		s.index[patch.ID] = len(s.devices)
		s.devices = append(s.devices, clampPosition(d))
	}
	s.mu.Unlock()

	s.notify()
}

// Patch merges partial fields into an existing device. Unlike Upsert it
// never appends; it reports whether the id was found.
func (s *Store) Patch(id int64, patch api.DevicePatch) bool {
	s.mu.Lock()
	pos, ok := s.index[id]
	if ok {
		d := s.devices[pos]
		patch.Apply(&d)
		s.devices[pos] = clampPosition(d)
	}
	s.mu.Unlock()

	if ok {
		s.notify()
	}
	return ok
}

// Get returns a copy of the device with the given id.
func (s *Store) Get(id int64) (api.Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return api.Device{}, false
	}
	return s.devices[pos], true
}

// Devices returns a copy of the ordered device list.
func (s *Store) Devices() []api.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Device, len(s.devices))
	copy(out, s.devices)
	return out
}

// Len returns the number of devices in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.devices)
}

// notify invokes observers outside the store lock so they can read back.
func (s *Store) notify() {
	s.mu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, fn := range observers {
		fn()
	}
}

// clampPosition enforces the canvas invariant: position coordinates are
// always within [0,100].
func clampPosition(d api.Device) api.Device {
	d.PositionX = clampPercent(d.PositionX)
	d.PositionY = clampPercent(d.PositionY)
	return d
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
