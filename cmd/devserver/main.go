// devserver runs the in-memory backend stub for local development.
//
// It serves the REST API and per-room websocket channel the room client
// expects, with all state held in memory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/msohanifr/home-automation/internal/devserver"
	"github.com/msohanifr/home-automation/internal/infrastructure/config"
	"github.com/msohanifr/home-automation/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags.
var version = "dev"

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := logging.Default()

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("starting devserver", "version", version, "config", configPath)

	server, err := devserver.New(devserver.Deps{
		Config: cfg.DevServer,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("creating devserver: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting devserver: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing devserver", "error", closeErr)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	return nil
}

// getConfigPath returns the config file path from the environment, args, or
// the default.
func getConfigPath() string {
	if path := os.Getenv("HOMEAUTO_CONFIG"); path != "" {
		return path
	}
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return defaultConfigPath
}
