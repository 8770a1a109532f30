package roomview

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/msohanifr/home-automation/internal/api"
)

// CommandClient is the slice of the REST client the controller depends on.
// *api.Client satisfies it.
type CommandClient interface {
	ListRooms(ctx context.Context) ([]api.Room, error)
	ListDevices(ctx context.Context, roomID int64) ([]api.Device, error)
	ToggleDevice(ctx context.Context, id int64, desiredOn bool) (*api.Device, error)
	CommandDevice(ctx context.Context, id int64, input api.CommandInput) (*api.Device, error)
	CreateDevice(ctx context.Context, input api.CreateDeviceInput) (*api.Device, error)
	UpdateDevicePosition(ctx context.Context, id int64, x, y float64) error
}

// Controller drives the room view: it loads the room, reconciles user intent
// against the server, and keeps the store consistent with the outcome. The
// server is always authoritative; local mutations are optimistic previews
// that are confirmed or rolled back.
//
// A controller is bound to one room. Closing it cancels all in-flight work
// so a controller for a previously open room can never write into the store
// of the next one.
type Controller struct {
	roomID int64
	client CommandClient
	store  *Store
	logger Logger

	ctx    context.Context
	cancel context.CancelFunc

	room api.Room

	reloadOnToggle bool
	recorder       Recorder
	onError        func(message string)
	onUnauthorized func()
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithReloadOnToggle controls whether a successful toggle refetches the
// room's devices instead of trusting the command response alone.
func WithReloadOnToggle(enabled bool) ControllerOption {
	return func(c *Controller) { c.reloadOnToggle = enabled }
}

// WithRecorder attaches a telemetry recorder fed on every confirmed device
// state.
func WithRecorder(r Recorder) ControllerOption {
	return func(c *Controller) { c.recorder = r }
}

// WithOnError registers the surface that renders user-facing failure
// messages.
func WithOnError(fn func(message string)) ControllerOption {
	return func(c *Controller) { c.onError = fn }
}

// WithOnUnauthorized registers the login-boundary redirect, invoked when the
// server rejects the session.
func WithOnUnauthorized(fn func()) ControllerOption {
	return func(c *Controller) { c.onUnauthorized = fn }
}

// WithControllerLogger sets the controller logger.
func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) { c.logger = logger }
}

// NewController creates a controller for one room. Work started by the
// controller is bounded by parent and by Close.
func NewController(parent context.Context, roomID int64, client CommandClient, store *Store, opts ...ControllerOption) *Controller {
	ctx, cancel := context.WithCancel(parent)
	c := &Controller{
		roomID:         roomID,
		client:         client,
		store:          store,
		logger:         noopLogger{},
		ctx:            ctx,
		cancel:         cancel,
		reloadOnToggle: true,
		recorder:       noopRecorder{},
		onError:        func(string) {},
		onUnauthorized: func() {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Room returns the room record captured by the last successful Load.
func (c *Controller) Room() api.Room {
	return c.room
}

// Close cancels all in-flight and future work. Idempotent.
func (c *Controller) Close() {
	c.cancel()
}

// Load fetches the room list and the room's devices concurrently and
// installs the result in the store. When the room id is absent from the
// room list the devices still render, with ErrRoomNotFound reported so the
// view can degrade its header.
func (c *Controller) Load() error {
	var (
		rooms   []api.Room
		devices []api.Device
	)

	g, ctx := errgroup.WithContext(c.ctx)
	g.Go(func() error {
		var err error
		rooms, err = c.client.ListRooms(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		devices, err = c.client.ListDevices(ctx, c.roomID)
		return err
	})
	if err := g.Wait(); err != nil {
		return c.fail("loading room", err)
	}

	c.store.ReplaceAll(devices)
	for _, d := range devices {
		c.recorder.RecordDeviceState(d)
	}

	for _, r := range rooms {
		if r.ID == c.roomID {
			c.room = r
			return nil
		}
	}
	c.logger.Warn("room missing from room list", "room_id", c.roomID)
	return ErrRoomNotFound
}

// Reload refetches only the device list.
func (c *Controller) Reload() error {
	devices, err := c.client.ListDevices(c.ctx, c.roomID)
	if err != nil {
		return c.fail("reloading devices", err)
	}
	c.store.ReplaceAll(devices)
	return nil
}

// Toggle flips a digital device optimistically: the store is updated first
// so the UI responds instantly, then the command is sent. On failure the
// prior state is restored and the failure is surfaced; on success the
// server's record replaces the optimistic guess.
func (c *Controller) Toggle(id int64) error {
	prior, ok := c.store.Get(id)
	if !ok {
		return ErrUnknownDevice
	}

	desired := !prior.IsOn
	c.store.Patch(id, api.DevicePatch{IsOn: &desired})

	updated, err := c.client.ToggleDevice(c.ctx, id, desired)
	if err != nil {
		// Revert the optimistic flip before surfacing the failure.
		restored := prior.IsOn
		c.store.Patch(id, api.DevicePatch{IsOn: &restored})
		return c.fail("toggling device", err)
	}

	if c.reloadOnToggle {
		if err := c.Reload(); err != nil {
			return err
		}
	} else if updated != nil {
		c.store.Patch(id, devicePatchFrom(*updated))
	}

	if updated != nil {
		c.recorder.RecordDeviceState(*updated)
	}
	return nil
}

// Command sends a raw command (analog setpoint or explicit state) without
// optimistic preview; the store is updated from the server's response.
func (c *Controller) Command(id int64, input api.CommandInput) error {
	updated, err := c.client.CommandDevice(c.ctx, id, input)
	if err != nil {
		return c.fail("commanding device", err)
	}
	if updated != nil {
		c.store.Patch(id, devicePatchFrom(*updated))
		c.recorder.RecordDeviceState(*updated)
	}
	return nil
}

// CreateDevice creates a device with sensible defaults for its type and
// refreshes the room on success. A blank name is rejected locally.
func (c *Controller) CreateDevice(name string, deviceType api.DeviceType) error {
	if strings.TrimSpace(name) == "" {
		c.onError("Device name is required.")
		return ErrNameRequired
	}

	input := api.CreateDeviceInput{
		RoomID:     c.roomID,
		Name:       strings.TrimSpace(name),
		DeviceType: deviceType,
	}
	input.DeviceKind, input.SignalType = creationDefaults(deviceType)

	if _, err := c.client.CreateDevice(c.ctx, input); err != nil {
		return c.fail("creating device", err)
	}
	return c.Reload()
}

// creationDefaults maps a device type onto the kind and signal the server
// expects for it.
func creationDefaults(t api.DeviceType) (api.DeviceKind, api.SignalType) {
	switch t {
	case api.DeviceTypeLight, api.DeviceTypeSwitch:
		return api.DeviceKindActuator, api.SignalDigital
	case api.DeviceTypeThermostat:
		return api.DeviceKindHybrid, api.SignalAnalog
	case api.DeviceTypeSensor:
		return api.DeviceKindSensor, api.SignalAnalog
	case api.DeviceTypeCamera:
		return api.DeviceKindSensor, api.SignalString
	default:
		return api.DeviceKindActuator, api.SignalDigital
	}
}

// CommitPosition moves a device in the store and persists the new position.
// The visual move always sticks: a persistence failure is logged and
// reported but never rolled back, so the worst case is a stale position
// after the next full load.
func (c *Controller) CommitPosition(id int64, x, y float64) error {
	x = clampPercent(x)
	y = clampPercent(y)
	if !c.store.Patch(id, api.DevicePatch{PositionX: &x, PositionY: &y}) {
		return ErrUnknownDevice
	}

	if err := c.client.UpdateDevicePosition(c.ctx, id, x, y); err != nil {
		c.logger.Warn("persisting device position failed",
			"device_id", id, "error", err)
		if api.IsUnauthorized(err) {
			c.onUnauthorized()
		}
		return err
	}
	return nil
}

// fail normalizes an operation failure: auth rejections go to the login
// boundary, everything else to the error surface.
func (c *Controller) fail(op string, err error) error {
	if api.IsUnauthorized(err) {
		c.logger.Info("session rejected by server", "op", op)
		c.onUnauthorized()
		return err
	}
	c.logger.Warn(op+" failed", "room_id", c.roomID, "error", err)
	c.onError(api.Message(err))
	return err
}

// devicePatchFrom converts a full server record into a patch carrying the
// fields the room view renders.
func devicePatchFrom(d api.Device) api.DevicePatch {
	return api.DevicePatch{
		ID:            d.ID,
		Name:          &d.Name,
		DeviceType:    &d.DeviceType,
		DeviceKind:    &d.DeviceKind,
		SignalType:    &d.SignalType,
		Unit:          &d.Unit,
		LastValue:     d.LastValue,
		LastValueRaw:  &d.LastValueRaw,
		LastUpdatedAt: d.LastUpdatedAt,
		Location:      &d.Location,
		IsOn:          &d.IsOn,
		PositionX:     &d.PositionX,
		PositionY:     &d.PositionY,
		IsActive:      &d.IsActive,
	}
}
