// roomctl is a terminal client for the home automation backend.
//
// It drives the same REST and websocket surface the dashboard uses: log in,
// list rooms, toggle devices, move them on the canvas, and watch a room's
// live updates.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/msohanifr/home-automation/internal/api"
	"github.com/msohanifr/home-automation/internal/infrastructure/config"
	"github.com/msohanifr/home-automation/internal/infrastructure/database"
	"github.com/msohanifr/home-automation/internal/infrastructure/influxdb"
	"github.com/msohanifr/home-automation/internal/infrastructure/logging"
	"github.com/msohanifr/home-automation/internal/roomview"
	"github.com/msohanifr/home-automation/internal/session"
)

// Version information - set at build time via ldflags.
var version = "dev"

const usage = `Usage: roomctl [-config path] <command> [args]

Commands:
  login <username>              Log in and persist the session
  logout                        End the session
  rooms                         List rooms
  summary                       Show the dashboard summary
  devices <room-id>             List a room's devices
  create-device <room-id> <name> <type>
                                Create a device (light, switch, sensor,
                                thermostat, camera)
  toggle <device-id>            Toggle a digital device
  move <device-id> <x> <y>      Move a device on the canvas (percent)
  watch <room-id>               Stream live updates for a room
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app bundles the wired-up collaborators each command needs.
type app struct {
	cfg     *config.Config
	log     *logging.Logger
	client  *api.Client
	session *session.Session
	repo    *session.Repository
}

func run(ctx context.Context) error {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return errors.New("a command is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.Logging, version)

	db, err := database.Open(database.Config{
		Path:        cfg.Session.Path,
		WALMode:     cfg.Session.WALMode,
		BusyTimeout: cfg.Session.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening session database: %w", err)
	}
	defer db.Close() //nolint:errcheck // Best-effort close at exit

	repo, err := session.NewRepository(ctx, db)
	if err != nil {
		return fmt.Errorf("preparing session store: %w", err)
	}

	sess, err := repo.Load(ctx)
	if errors.Is(err, session.ErrNoSession) {
		sess = session.New()
	} else if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	client := api.NewClient(cfg.Server.BaseURL,
		api.WithTokenSource(sess),
		api.WithLogger(log),
	)

	a := &app{cfg: cfg, log: log, client: client, session: sess, repo: repo}

	switch cmd, rest := args[0], args[1:]; cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		return a.logout(ctx)
	case "rooms":
		return a.rooms(ctx)
	case "summary":
		return a.summary(ctx)
	case "devices":
		return a.devices(ctx, rest)
	case "create-device":
		return a.createDevice(ctx, rest)
	case "toggle":
		return a.toggle(ctx, rest)
	case "move":
		return a.move(ctx, rest)
	case "watch":
		return a.watch(ctx, rest)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: login <username>")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}

	resp, err := a.client.Login(ctx, api.Credentials{
		Username: args[0],
		Password: strings.TrimSpace(password),
	})
	if err != nil {
		return errors.New(api.Message(err))
	}

	a.session.Start(resp.Token, resp.User)
	if err := a.repo.Save(ctx, a.session); err != nil {
		return fmt.Errorf("persisting session: %w", err)
	}

	fmt.Printf("Logged in as %s\n", resp.User.Username)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if a.session.Authenticated() {
		if err := a.client.Logout(ctx); err != nil {
			// Server-side revocation is best-effort; the local session
			// still ends.
			a.log.Warn("server logout failed", "error", err)
		}
	}
	a.session.End()
	if err := a.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	fmt.Println("Logged out")
	return nil
}

func (a *app) rooms(ctx context.Context) error {
	rooms, err := a.client.ListRooms(ctx)
	if err != nil {
		return a.apiError(err)
	}
	for _, r := range rooms {
		fmt.Printf("%4d  %s\n", r.ID, r.Name)
	}
	return nil
}

func (a *app) summary(ctx context.Context) error {
	summary, err := a.client.GetDashboardSummary(ctx)
	if err != nil {
		return a.apiError(err)
	}
	fmt.Printf("rooms=%d devices=%d on=%d integrations=%d\n",
		summary.Rooms, summary.Devices, summary.OnDevices, summary.Integrations)
	return nil
}

func (a *app) devices(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: devices <room-id>")
	}
	roomID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid room id %q", args[0])
	}

	devices, err := a.client.ListDevices(ctx, roomID)
	if err != nil {
		return a.apiError(err)
	}
	for _, d := range devices {
		state := "off"
		if d.IsOn {
			state = "on"
		}
		fmt.Printf("%4d  %-20s %-10s %-3s (%.1f%%, %.1f%%)\n",
			d.ID, d.Name, d.DeviceType, state, d.PositionX, d.PositionY)
	}
	return nil
}

func (a *app) createDevice(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: create-device <room-id> <name> <type>")
	}
	roomID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid room id %q", args[0])
	}

	ctrl, store, _ := a.newController(ctx, roomID)
	defer ctrl.Close()

	if err := ctrl.CreateDevice(args[1], api.DeviceType(args[2])); err != nil {
		return a.apiError(err)
	}
	fmt.Printf("Created. Room now has %d devices.\n", store.Len())
	return nil
}

func (a *app) toggle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: toggle <device-id>")
	}
	deviceID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid device id %q", args[0])
	}

	device, err := a.client.GetDevice(ctx, deviceID)
	if err != nil {
		return a.apiError(err)
	}
	roomID := int64(0)
	if device.Room != nil {
		roomID = device.Room.ID
	}

	ctrl, store, _ := a.newController(ctx, roomID)
	defer ctrl.Close()
	store.ReplaceAll([]api.Device{*device})

	if err := ctrl.Toggle(deviceID); err != nil {
		return a.apiError(err)
	}

	updated, ok := store.Get(deviceID)
	if !ok {
		fmt.Println("Toggled")
		return nil
	}
	state := "off"
	if updated.IsOn {
		state = "on"
	}
	fmt.Printf("%s is now %s\n", updated.Name, state)
	return nil
}

func (a *app) move(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errors.New("usage: move <device-id> <x> <y>")
	}
	deviceID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid device id %q", args[0])
	}
	x, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid x %q", args[1])
	}
	y, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid y %q", args[2])
	}

	device, err := a.client.GetDevice(ctx, deviceID)
	if err != nil {
		return a.apiError(err)
	}
	roomID := int64(0)
	if device.Room != nil {
		roomID = device.Room.ID
	}

	ctrl, store, _ := a.newController(ctx, roomID)
	defer ctrl.Close()
	store.ReplaceAll([]api.Device{*device})

	if err := ctrl.CommitPosition(deviceID, x, y); err != nil {
		return a.apiError(err)
	}
	moved, _ := store.Get(deviceID)
	fmt.Printf("%s moved to (%.1f%%, %.1f%%)\n", moved.Name, moved.PositionX, moved.PositionY)
	return nil
}

// watch loads a room, opens its live channel, and prints every change until
// interrupted.
func (a *app) watch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: watch <room-id>")
	}
	roomID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid room id %q", args[0])
	}

	ctrl, store, recorder := a.newController(ctx, roomID)
	defer ctrl.Close()

	if err := ctrl.Load(); err != nil && !errors.Is(err, roomview.ErrRoomNotFound) {
		return a.apiError(err)
	}
	fmt.Printf("Watching %s (%d devices)\n", ctrl.Room().Name, store.Len())

	store.Subscribe(func() {
		for _, d := range store.Devices() {
			state := "off"
			if d.IsOn {
				state = "on"
			}
			value := ""
			if d.LastValue != nil {
				value = fmt.Sprintf(" %.1f%s", *d.LastValue, d.Unit)
			}
			fmt.Printf("  %4d %-20s %-3s%s\n", d.ID, d.Name, state, value)
		}
		fmt.Println()
	})

	socketURL, err := roomview.RoomSocketURL(a.cfg.Server.BaseURL, a.cfg.WebSocket.Port, roomID)
	if err != nil {
		return err
	}

	channel := roomview.NewChannel(store, a.log)
	if recorder != nil {
		channel.SetRecorder(recorder)
	}
	channel.SetOnStateChange(func(state roomview.ChannelState) {
		a.log.Info("live channel state", "state", state.String())
	})
	if err := channel.Open(ctx, socketURL); err != nil {
		return fmt.Errorf("opening live channel: %w", err)
	}
	defer channel.Close() //nolint:errcheck // Best-effort close at exit

	<-ctx.Done()
	return nil
}

// newController wires a room controller with the configured options,
// attaching the telemetry recorder when InfluxDB is enabled. The recorder is
// returned too so the live channel can share it.
func (a *app) newController(ctx context.Context, roomID int64) (*roomview.Controller, *roomview.Store, roomview.Recorder) {
	store := roomview.NewStore()
	store.SetLogger(a.log)

	opts := []roomview.ControllerOption{
		roomview.WithControllerLogger(a.log),
		roomview.WithReloadOnToggle(a.cfg.Room.ReloadOnToggle),
		roomview.WithOnError(func(msg string) {
			fmt.Fprintf(os.Stderr, "! %s\n", msg)
		}),
		roomview.WithOnUnauthorized(func() {
			fmt.Fprintln(os.Stderr, "Session expired. Run `roomctl login` again.")
		}),
	}

	var recorder roomview.Recorder
	if a.cfg.InfluxDB.Enabled {
		if influx, err := influxdb.Connect(a.cfg.InfluxDB); err != nil {
			a.log.Warn("telemetry disabled", "error", err)
		} else {
			recorder = roomview.NewInfluxRecorder(influx)
			opts = append(opts, roomview.WithRecorder(recorder))
		}
	}

	ctrl := roomview.NewController(ctx, roomID, a.client, store, opts...)
	return ctrl, store, recorder
}

// apiError maps a failed call to a user-facing message, preserving auth
// failures as their own hint.
func (a *app) apiError(err error) error {
	if api.IsUnauthorized(err) {
		return errors.New("not logged in (run `roomctl login <username>`)")
	}
	return errors.New(api.Message(err))
}
