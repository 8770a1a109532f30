package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/msohanifr/home-automation/internal/infrastructure/config"
	"github.com/msohanifr/home-automation/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the stub server.
type Deps struct {
	Config config.DevServerConfig
	Logger *logging.Logger
}

// Server is an in-memory stand-in for the real backend, close enough on the
// wire for the room client and its tests: token auth, the REST surface, the
// per-room live channel, and the command endpoint's scaling rules.
type Server struct {
	cfg    config.DevServerConfig
	logger *logging.Logger
	state  *state
	hub    *hub
	server *http.Server
	cancel context.CancelFunc
}

// New creates a stub server. It is not listening until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	s := &Server{
		cfg:    deps.Config,
		logger: deps.Logger,
		state:  newState(),
	}
	s.hub = newHub(deps.Logger)
	return s, nil
}

// Handler returns the HTTP handler without starting a listener. Tests mount
// it on httptest.Server.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start begins listening for HTTP connections in a background goroutine.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("devserver listener failed", "error", err)
		}
	}()

	s.logger.Info("devserver listening", "host", s.cfg.Host, "port", s.cfg.Port)
	return nil
}

// Close shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// buildRouter creates the HTTP router with all routes and middleware.
// Paths carry trailing slashes to match the backend's URL conventions.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register/", s.handleRegister)
		r.Post("/auth/login/", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Post("/auth/logout/", s.handleLogout)
			r.Get("/auth/me/", s.handleMe)

			r.Get("/dashboard/summary/", s.handleDashboardSummary)

			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", s.handleListRooms)
				r.Post("/", s.handleCreateRoom)
				r.Patch("/{id}/", s.handleUpdateRoom)
			})

			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/", s.handleCreateDevice)
				r.Get("/{id}/", s.handleGetDevice)
				r.Patch("/{id}/", s.handleUpdateDevice)
				r.Post("/{id}/command/", s.handleDeviceCommand)
			})

			r.Route("/integrations", func(r chi.Router) {
				r.Get("/", s.handleListIntegrations)
				r.Post("/", s.handleCreateIntegration)
			})

			r.Route("/connectors", func(r chi.Router) {
				r.Get("/", s.handleListConnectors)
				r.Post("/", s.handleCreateConnector)
			})

			r.Route("/endpoints", func(r chi.Router) {
				r.Post("/", s.handleCreateEndpoint)
				r.Patch("/{id}/", s.handleUpdateEndpoint)
				r.Delete("/{id}/", s.handleDeleteEndpoint)
			})
		})
	})

	// Live channel; auth is relaxed here the same way the backend's dev
	// websocket is.
	r.Get("/ws/rooms/{roomID}/", s.handleRoomSocket)

	return r
}
