package roomview

import (
	"testing"

	"github.com/msohanifr/home-automation/internal/api"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }
func boolPtr(b bool) *bool      { return &b }

func testDevice(id int64, name string) api.Device {
	return api.Device{
		ID:         id,
		Name:       name,
		DeviceType: api.DeviceTypeLight,
		DeviceKind: api.DeviceKindActuator,
		SignalType: api.SignalDigital,
	}
}

func TestStore_UpsertMergesPresentFields(t *testing.T) {
	s := NewStore()
	d := testDevice(1, "Lamp")
	d.IsOn = false
	d.Location = "corner"
	s.ReplaceAll([]api.Device{d})

	s.Upsert(api.DevicePatch{ID: 1, IsOn: boolPtr(true), LastValue: f64Ptr(21.5)})

	got, ok := s.Get(1)
	if !ok {
		t.Fatal("device 1 missing after upsert")
	}
	if !got.IsOn {
		t.Error("IsOn not overwritten by patch")
	}
	if got.LastValue == nil || *got.LastValue != 21.5 {
		t.Errorf("LastValue = %v, want 21.5", got.LastValue)
	}
	if got.Location != "corner" {
		t.Errorf("absent field overwritten: Location = %q, want %q", got.Location, "corner")
	}
	if got.Name != "Lamp" {
		t.Errorf("absent field overwritten: Name = %q, want %q", got.Name, "Lamp")
	}
}

func TestStore_UpsertUnknownIDAppends(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]api.Device{testDevice(1, "Lamp")})

	s.Upsert(api.DevicePatch{ID: 9, Name: strPtr("New Sensor"), IsOn: boolPtr(true)})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	devices := s.Devices()
	if devices[1].ID != 9 {
		t.Errorf("appended device should keep arrival order, got id %d at tail", devices[1].ID)
	}
	if devices[1].Name != "New Sensor" {
		t.Errorf("Name = %q, want %q", devices[1].Name, "New Sensor")
	}
}

func TestStore_UpsertSequenceEqualsLeftToRightMerge(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]api.Device{testDevice(1, "Lamp")})

	patches := []api.DevicePatch{
		{ID: 1, IsOn: boolPtr(true)},
		{ID: 1, LastValue: f64Ptr(3)},
		{ID: 1, IsOn: boolPtr(false), Location: strPtr("desk")},
	}
	for _, p := range patches {
		s.Upsert(p)
	}

	got, _ := s.Get(1)
	if got.IsOn {
		t.Error("IsOn should reflect the last patch that carried it")
	}
	if got.LastValue == nil || *got.LastValue != 3 {
		t.Errorf("LastValue = %v, want 3", got.LastValue)
	}
	if got.Location != "desk" {
		t.Errorf("Location = %q, want %q", got.Location, "desk")
	}
}

func TestStore_ReplaceAllDiscardsAbsentIDs(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]api.Device{testDevice(1, "Lamp"), testDevice(2, "Fan")})

	s.ReplaceAll([]api.Device{testDevice(2, "Fan"), testDevice(3, "Heater")})

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if _, ok := s.Get(1); ok {
		t.Error("device 1 should be discarded by the snapshot")
	}
	if _, ok := s.Get(3); !ok {
		t.Error("device 3 should be present after the snapshot")
	}
	if devices := s.Devices(); devices[0].ID != 2 || devices[1].ID != 3 {
		t.Errorf("order should follow the snapshot, got %d,%d", devices[0].ID, devices[1].ID)
	}
}

func TestStore_PositionsClamped(t *testing.T) {
	s := NewStore()
	d := testDevice(1, "Lamp")
	d.PositionX = -5
	d.PositionY = 140
	s.ReplaceAll([]api.Device{d})

	got, _ := s.Get(1)
	if got.PositionX != 0 || got.PositionY != 100 {
		t.Errorf("positions = (%v, %v), want (0, 100)", got.PositionX, got.PositionY)
	}

	s.Upsert(api.DevicePatch{ID: 1, PositionX: f64Ptr(250), PositionY: f64Ptr(-1)})
	got, _ = s.Get(1)
	if got.PositionX != 100 || got.PositionY != 0 {
		t.Errorf("positions = (%v, %v), want (100, 0)", got.PositionX, got.PositionY)
	}
}

func TestStore_PatchUnknownIDDoesNotAppend(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]api.Device{testDevice(1, "Lamp")})

	if s.Patch(42, api.DevicePatch{IsOn: boolPtr(true)}) {
		t.Error("Patch() = true for unknown id")
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_ObserverFiresOnMutation(t *testing.T) {
	s := NewStore()
	var calls int
	s.Subscribe(func() { calls++ })

	s.ReplaceAll([]api.Device{testDevice(1, "Lamp")})
	s.Upsert(api.DevicePatch{ID: 1, IsOn: boolPtr(true)})
	s.Patch(1, api.DevicePatch{IsOn: boolPtr(false)})
	s.Patch(42, api.DevicePatch{IsOn: boolPtr(true)}) // miss: no notify

	if calls != 3 {
		t.Errorf("observer calls = %d, want 3", calls)
	}
}
