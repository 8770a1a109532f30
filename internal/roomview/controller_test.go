package roomview

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/msohanifr/home-automation/internal/api"
)

// fakeClient is an in-memory CommandClient for controller tests.
type fakeClient struct {
	rooms   []api.Room
	devices []api.Device

	listErr     error
	toggleErr   error
	toggleOut   *api.Device
	createErr   error
	positionErr error

	// listEnter, when set, makes ListDevices signal entry and then block
	// until the caller's context is cancelled.
	listEnter chan struct{}

	created   []api.CreateDeviceInput
	toggles   []bool
	positions [][2]float64
	listCalls int
}

func (f *fakeClient) ListRooms(context.Context) ([]api.Room, error) {
	return f.rooms, nil
}

func (f *fakeClient) ListDevices(ctx context.Context, _ int64) ([]api.Device, error) {
	f.listCalls++
	if f.listEnter != nil {
		close(f.listEnter)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.devices, nil
}

func (f *fakeClient) ToggleDevice(_ context.Context, _ int64, desiredOn bool) (*api.Device, error) {
	f.toggles = append(f.toggles, desiredOn)
	if f.toggleErr != nil {
		return nil, f.toggleErr
	}
	return f.toggleOut, nil
}

func (f *fakeClient) CommandDevice(_ context.Context, _ int64, _ api.CommandInput) (*api.Device, error) {
	return f.toggleOut, f.toggleErr
}

func (f *fakeClient) CreateDevice(_ context.Context, input api.CreateDeviceInput) (*api.Device, error) {
	f.created = append(f.created, input)
	if f.createErr != nil {
		return nil, f.createErr
	}
	d := testDevice(99, input.Name)
	return &d, nil
}

func (f *fakeClient) UpdateDevicePosition(_ context.Context, _ int64, x, y float64) error {
	f.positions = append(f.positions, [2]float64{x, y})
	return f.positionErr
}

func TestController_LoadInstallsRoomAndDevices(t *testing.T) {
	client := &fakeClient{
		rooms:   []api.Room{{ID: 1, Name: "Kitchen"}, {ID: 2, Name: "Lounge"}},
		devices: []api.Device{testDevice(1, "Lamp"), testDevice(2, "Fan")},
	}
	store := NewStore()
	c := NewController(context.Background(), 2, client, store)
	defer c.Close()

	if err := c.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Room().Name != "Lounge" {
		t.Errorf("Room().Name = %q, want %q", c.Room().Name, "Lounge")
	}
	if store.Len() != 2 {
		t.Errorf("store.Len() = %d, want 2", store.Len())
	}
}

func TestController_LoadUnknownRoomStillRendersDevices(t *testing.T) {
	client := &fakeClient{
		rooms:   []api.Room{{ID: 1, Name: "Kitchen"}},
		devices: []api.Device{testDevice(1, "Lamp")},
	}
	store := NewStore()
	c := NewController(context.Background(), 7, client, store)
	defer c.Close()

	err := c.Load()
	if !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("Load() error = %v, want ErrRoomNotFound", err)
	}
	if store.Len() != 1 {
		t.Errorf("devices should render despite missing room, Len() = %d", store.Len())
	}
}

func TestController_ToggleOptimisticThenConfirmed(t *testing.T) {
	confirmed := testDevice(1, "Lamp")
	confirmed.IsOn = true
	client := &fakeClient{toggleOut: &confirmed}

	store := NewStore()
	store.ReplaceAll([]api.Device{testDevice(1, "Lamp")})

	var observed []bool
	store.Subscribe(func() {
		d, _ := store.Get(1)
		observed = append(observed, d.IsOn)
	})

	c := NewController(context.Background(), 1, client, store,
		WithReloadOnToggle(false))
	defer c.Close()

	if err := c.Toggle(1); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	if len(client.toggles) != 1 || !client.toggles[0] {
		t.Errorf("toggles = %v, want one desired-on command", client.toggles)
	}
	// First notification is the optimistic flip, before the command returns.
	if len(observed) == 0 || !observed[0] {
		t.Errorf("optimistic flip not observed first: %v", observed)
	}
	d, _ := store.Get(1)
	if !d.IsOn {
		t.Error("device should be on after confirmation")
	}
}

func TestController_ToggleRollsBackOnFailure(t *testing.T) {
	client := &fakeClient{
		toggleErr: &api.Error{Kind: api.KindAPI, Status: http.StatusBadGateway},
	}
	store := NewStore()
	on := testDevice(1, "Lamp")
	on.IsOn = true
	store.ReplaceAll([]api.Device{on})

	var errMsg string
	c := NewController(context.Background(), 1, client, store,
		WithReloadOnToggle(false),
		WithOnError(func(m string) { errMsg = m }))
	defer c.Close()

	if err := c.Toggle(1); err == nil {
		t.Fatal("Toggle() should return the command failure")
	}

	d, _ := store.Get(1)
	if !d.IsOn {
		t.Error("optimistic flip should be rolled back to prior state")
	}
	if errMsg == "" {
		t.Error("failure should surface a user-facing message")
	}
}

func TestController_ToggleUnauthorizedRedirects(t *testing.T) {
	client := &fakeClient{
		toggleErr: &api.Error{Kind: api.KindAPI, Status: http.StatusUnauthorized},
	}
	store := NewStore()
	store.ReplaceAll([]api.Device{testDevice(1, "Lamp")})

	var redirected bool
	var errMsg string
	c := NewController(context.Background(), 1, client, store,
		WithReloadOnToggle(false),
		WithOnError(func(m string) { errMsg = m }),
		WithOnUnauthorized(func() { redirected = true }))
	defer c.Close()

	if err := c.Toggle(1); err == nil {
		t.Fatal("Toggle() should fail")
	}
	if !redirected {
		t.Error("401 should hit the login boundary")
	}
	if errMsg != "" {
		t.Errorf("auth rejection should not render an inline error, got %q", errMsg)
	}
}

func TestController_ToggleReloadsWhenConfigured(t *testing.T) {
	fresh := testDevice(1, "Lamp")
	fresh.IsOn = true
	client := &fakeClient{
		toggleOut: &fresh,
		devices:   []api.Device{fresh},
	}
	store := NewStore()
	store.ReplaceAll([]api.Device{testDevice(1, "Lamp")})

	c := NewController(context.Background(), 1, client, store,
		WithReloadOnToggle(true))
	defer c.Close()

	if err := c.Toggle(1); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if client.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1 reload after toggle", client.listCalls)
	}
}

func TestController_CreateDeviceDefaults(t *testing.T) {
	tests := []struct {
		deviceType api.DeviceType
		wantKind   api.DeviceKind
		wantSignal api.SignalType
	}{
		{api.DeviceTypeLight, api.DeviceKindActuator, api.SignalDigital},
		{api.DeviceTypeSwitch, api.DeviceKindActuator, api.SignalDigital},
		{api.DeviceTypeThermostat, api.DeviceKindHybrid, api.SignalAnalog},
		{api.DeviceTypeSensor, api.DeviceKindSensor, api.SignalAnalog},
		{api.DeviceTypeCamera, api.DeviceKindSensor, api.SignalString},
	}

	for _, tt := range tests {
		t.Run(string(tt.deviceType), func(t *testing.T) {
			client := &fakeClient{}
			c := NewController(context.Background(), 3, client, NewStore())
			defer c.Close()

			if err := c.CreateDevice("Thing", tt.deviceType); err != nil {
				t.Fatalf("CreateDevice() error = %v", err)
			}
			if len(client.created) != 1 {
				t.Fatalf("created %d devices, want 1", len(client.created))
			}
			got := client.created[0]
			if got.RoomID != 3 {
				t.Errorf("RoomID = %d, want 3", got.RoomID)
			}
			if got.DeviceKind != tt.wantKind {
				t.Errorf("DeviceKind = %q, want %q", got.DeviceKind, tt.wantKind)
			}
			if got.SignalType != tt.wantSignal {
				t.Errorf("SignalType = %q, want %q", got.SignalType, tt.wantSignal)
			}
			if got.IsOn {
				t.Error("new devices should default to off")
			}
		})
	}
}

func TestController_CreateDeviceBlankNameRejectedLocally(t *testing.T) {
	client := &fakeClient{}
	var errMsg string
	c := NewController(context.Background(), 1, client, NewStore(),
		WithOnError(func(m string) { errMsg = m }))
	defer c.Close()

	err := c.CreateDevice("   ", api.DeviceTypeLight)
	if !errors.Is(err, ErrNameRequired) {
		t.Errorf("CreateDevice() error = %v, want ErrNameRequired", err)
	}
	if len(client.created) != 0 {
		t.Error("no network call should be made for a blank name")
	}
	if errMsg == "" {
		t.Error("blank name should surface a message")
	}
}

func TestController_CommitPositionPersists(t *testing.T) {
	client := &fakeClient{}
	store := NewStore()
	store.ReplaceAll([]api.Device{testDevice(1, "Lamp")})

	c := NewController(context.Background(), 1, client, store)
	defer c.Close()

	if err := c.CommitPosition(1, 42.5, 120); err != nil {
		t.Fatalf("CommitPosition() error = %v", err)
	}
	if len(client.positions) != 1 {
		t.Fatalf("positions persisted = %d, want 1", len(client.positions))
	}
	if client.positions[0] != [2]float64{42.5, 100} {
		t.Errorf("persisted position = %v, want clamped [42.5 100]", client.positions[0])
	}
}

func TestController_CommitPositionFailureKeepsVisualPosition(t *testing.T) {
	client := &fakeClient{
		positionErr: &api.Error{Kind: api.KindNetwork, Err: errors.New("refused")},
	}
	store := NewStore()
	store.ReplaceAll([]api.Device{testDevice(1, "Lamp")})

	c := NewController(context.Background(), 1, client, store)
	defer c.Close()

	if err := c.CommitPosition(1, 30, 60); err == nil {
		t.Fatal("CommitPosition() should report the persistence failure")
	}
	d, _ := store.Get(1)
	if d.PositionX != 30 || d.PositionY != 60 {
		t.Errorf("visual position rolled back to (%v, %v); it must stick", d.PositionX, d.PositionY)
	}
}

func TestController_CloseSuppressesStaleLoad(t *testing.T) {
	entered := make(chan struct{})
	client := &fakeClient{
		rooms:     []api.Room{{ID: 1, Name: "Kitchen"}},
		devices:   []api.Device{testDevice(1, "Lamp")},
		listEnter: entered,
	}
	store := NewStore()
	c := NewController(context.Background(), 1, client, store)

	done := make(chan error, 1)
	go func() { done <- c.Load() }()

	// Close while the device fetch is in flight: the late completion must
	// not write into the store.
	<-entered
	c.Close()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Load() after Close() error = %v, want context.Canceled", err)
	}
	if store.Len() != 0 {
		t.Errorf("store mutated by a cancelled load, Len() = %d", store.Len())
	}
}

func TestController_ToggleUnknownDevice(t *testing.T) {
	c := NewController(context.Background(), 1, &fakeClient{}, NewStore())
	defer c.Close()

	if err := c.Toggle(404); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("Toggle() error = %v, want ErrUnknownDevice", err)
	}
}
