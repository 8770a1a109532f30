package devserver

import (
	"context"
	"errors"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/msohanifr/home-automation/internal/api"
	"github.com/msohanifr/home-automation/internal/infrastructure/config"
	"github.com/msohanifr/home-automation/internal/infrastructure/logging"
)

// testEnv is one stub server with an authenticated client against it.
type testEnv struct {
	srv    *httptest.Server
	client *api.Client
	token  string
}

type tokenHolder struct{ token string }

func (t *tokenHolder) Token() string { return t.token }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logging.Default()
	server, err := New(Deps{Config: config.DevServerConfig{}, Logger: logger})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(srv.Close)

	holder := &tokenHolder{}
	client := api.NewClient(srv.URL+"/api", api.WithTokenSource(holder))

	resp, err := client.Register(context.Background(), api.Credentials{
		Username: "alice",
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	holder.token = resp.Token

	return &testEnv{srv: srv, client: client, token: resp.Token}
}

func (e *testEnv) createRoom(t *testing.T, name string) *api.Room {
	t.Helper()
	room, err := e.client.CreateRoom(context.Background(), name, strings.ToLower(name))
	if err != nil {
		t.Fatalf("CreateRoom(%q) error = %v", name, err)
	}
	return room
}

func (e *testEnv) createDevice(t *testing.T, roomID int64, name string, st api.SignalType) *api.Device {
	t.Helper()
	device, err := e.client.CreateDevice(context.Background(), api.CreateDeviceInput{
		RoomID:     roomID,
		Name:       name,
		DeviceType: api.DeviceTypeLight,
		DeviceKind: api.DeviceKindActuator,
		SignalType: st,
	})
	if err != nil {
		t.Fatalf("CreateDevice(%q) error = %v", name, err)
	}
	return device
}

func (e *testEnv) createOutputEndpoint(t *testing.T, input api.CreateEndpointInput) *api.Endpoint {
	t.Helper()
	conn, err := e.client.CreateConnector(context.Background(), api.CreateConnectorInput{
		Name:          "broker",
		ConnectorType: "mqtt",
		Host:          "localhost",
	})
	if err != nil {
		t.Fatalf("CreateConnector() error = %v", err)
	}
	input.ConnectorID = conn.ID
	input.Direction = api.DirectionOutput
	ep, err := e.client.CreateEndpoint(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateEndpoint() error = %v", err)
	}
	return ep
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	me, err := env.client.Me(ctx)
	if err != nil {
		t.Fatalf("Me() error = %v", err)
	}
	if me.Username != "alice" {
		t.Errorf("Username = %q, want alice", me.Username)
	}

	if err := env.client.Logout(ctx); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := env.client.Me(ctx); !api.IsUnauthorized(err) {
		t.Errorf("Me() after logout should be unauthorized, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.client.Login(context.Background(), api.Credentials{
		Username: "alice",
		Password: "wrong",
	})
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != api.KindValidation {
		t.Fatalf("bad login error = %v, want validation error", err)
	}
	if api.Message(err) != "Unable to log in with provided credentials." {
		t.Errorf("Message() = %q", api.Message(err))
	}
}

func TestDigitalCommandFlow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	room := env.createRoom(t, "Kitchen")
	device := env.createDevice(t, room.ID, "Ceiling Light", api.SignalDigital)

	// No output endpoint yet: command must fail with the exact detail.
	_, err := env.client.ToggleDevice(ctx, device.ID, true)
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != 400 {
		t.Fatalf("toggle without endpoint = %v, want 400", err)
	}
	if api.Message(err) != "No output endpoint configured for this device." {
		t.Errorf("Message() = %q", api.Message(err))
	}

	env.createOutputEndpoint(t, api.CreateEndpointInput{
		DeviceID:   device.ID,
		Address:    "home/kitchen/light",
		TrueValue:  "ON",
		FalseValue: "OFF",
		IsPrimary:  true,
	})

	updated, err := env.client.ToggleDevice(ctx, device.ID, true)
	if err != nil {
		t.Fatalf("ToggleDevice() error = %v", err)
	}
	if !updated.IsOn {
		t.Error("device should be on after the command")
	}
	if updated.LastValueRaw != "ON" {
		t.Errorf("LastValueRaw = %q, want the endpoint's true_value", updated.LastValueRaw)
	}
	if updated.LastValue == nil || *updated.LastValue != 1 {
		t.Errorf("LastValue = %v, want 1", updated.LastValue)
	}
}

func TestAnalogCommandScaling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	room := env.createRoom(t, "Lounge")
	device := env.createDevice(t, room.ID, "Thermostat", api.SignalAnalog)
	env.createOutputEndpoint(t, api.CreateEndpointInput{
		DeviceID:  device.ID,
		Address:   "home/lounge/thermostat",
		Scale:     0.5,
		Offset:    10,
		IsPrimary: true,
	})

	target := 21.0
	updated, err := env.client.CommandDevice(ctx, device.ID, api.CommandInput{TargetValue: &target})
	if err != nil {
		t.Fatalf("CommandDevice() error = %v", err)
	}
	if updated.LastValue == nil || *updated.LastValue != 21 {
		t.Errorf("LastValue = %v, want engineering value 21", updated.LastValue)
	}
	// raw = (21 - 10) / 0.5
	if updated.LastValueRaw != "22" {
		t.Errorf("LastValueRaw = %q, want 22", updated.LastValueRaw)
	}
}

func TestAnalogCommandRequiresTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	room := env.createRoom(t, "Lounge")
	device := env.createDevice(t, room.ID, "Thermostat", api.SignalAnalog)
	env.createOutputEndpoint(t, api.CreateEndpointInput{
		DeviceID:  device.ID,
		Address:   "home/lounge/thermostat",
		IsPrimary: true,
	})

	_, err := env.client.CommandDevice(ctx, device.ID, api.CommandInput{State: "on"})
	if api.Message(err) != "target_value is required for non-digital devices." {
		t.Errorf("Message() = %q", api.Message(err))
	}
}

func TestRoomScopedDeviceList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	kitchen := env.createRoom(t, "Kitchen")
	lounge := env.createRoom(t, "Lounge")
	env.createDevice(t, kitchen.ID, "Kettle", api.SignalDigital)
	env.createDevice(t, lounge.ID, "TV", api.SignalDigital)

	devices, err := env.client.ListDevices(ctx, kitchen.ID)
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}
	if len(devices) != 1 || devices[0].Name != "Kettle" {
		t.Errorf("devices = %+v, want only the kitchen device", devices)
	}
}

func TestDashboardSummary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	room := env.createRoom(t, "Kitchen")
	env.createDevice(t, room.ID, "Kettle", api.SignalDigital)

	summary, err := env.client.GetDashboardSummary(ctx)
	if err != nil {
		t.Fatalf("GetDashboardSummary() error = %v", err)
	}
	if summary.Rooms != 1 || summary.Devices != 1 || summary.OnDevices != 0 {
		t.Errorf("summary = %+v", summary)
	}
}

func TestRoomSocketSnapshotAndBroadcast(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	room := env.createRoom(t, "Kitchen")
	device := env.createDevice(t, room.ID, "Ceiling Light", api.SignalDigital)
	env.createOutputEndpoint(t, api.CreateEndpointInput{
		DeviceID:  device.ID,
		Address:   "home/kitchen/light",
		IsPrimary: true,
	})

	wsBase := "ws" + strings.TrimPrefix(env.srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(
		wsBase+"/ws/rooms/"+strconv.FormatInt(room.ID, 10)+"/", nil)
	if err != nil {
		t.Fatalf("dialing room socket: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck // test deadline

	var snapshot wsEnvelope
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("reading snapshot: %v", err)
	}
	if snapshot.Type != "devices_snapshot" || len(snapshot.Devices) != 1 {
		t.Fatalf("snapshot = %+v", snapshot)
	}

	if _, err := env.client.ToggleDevice(ctx, device.ID, true); err != nil {
		t.Fatalf("ToggleDevice() error = %v", err)
	}

	var update wsEnvelope
	if err := conn.ReadJSON(&update); err != nil {
		t.Fatalf("reading update: %v", err)
	}
	if update.Type != "device_update" || update.Device == nil {
		t.Fatalf("update = %+v", update)
	}
	if update.Device.ID != device.ID || !update.Device.IsOn {
		t.Errorf("update.Device = %+v", update.Device)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	env := newTestEnv(t)
	room := env.createRoom(t, "Kitchen")
	env.createDevice(t, room.ID, "Kettle", api.SignalDigital)

	// Second account sees none of the first account's data.
	holder := &tokenHolder{}
	other := api.NewClient(env.srv.URL+"/api", api.WithTokenSource(holder))
	resp, err := other.Register(context.Background(), api.Credentials{
		Username: "bob",
		Password: "pw",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	holder.token = resp.Token

	rooms, err := other.ListRooms(context.Background())
	if err != nil {
		t.Fatalf("ListRooms() error = %v", err)
	}
	if len(rooms) != 0 {
		t.Errorf("bob sees %d of alice's rooms", len(rooms))
	}
}

