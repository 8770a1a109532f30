// mqttsim publishes fake sensor readings to an MQTT broker.
//
// It feeds the same topics the backend's MQTT worker listens on, so a local
// stack shows live sensor movement without any hardware.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msohanifr/home-automation/internal/infrastructure/config"
	"github.com/msohanifr/home-automation/internal/infrastructure/logging"
	"github.com/msohanifr/home-automation/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags.
var version = "dev"

const (
	defaultConfigPath = "configs/config.yaml"
	publishInterval   = 5 * time.Second
)

// sensor is one simulated reading source.
type sensor struct {
	topic string
	unit  string
	min   float64
	max   float64
	round int // decimal places; negative means integer
}

var sensors = []sensor{
	{topic: "sensors/living_room/temperature", unit: "°C", min: 20, max: 24, round: 1},
	{topic: "sensors/living_room/humidity", unit: "%", min: 30, max: 50, round: 1},
	{topic: "sensors/bedroom/co2", unit: "ppm", min: 400, max: 900, round: -1},
}

// reading is the wire payload the backend's MQTT worker expects.
type reading struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	TS    float64 `json:"ts"`
}

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
	log.Info("starting mqttsim",
		"version", version,
		"broker", cfg.MQTT.Broker.Host,
		"port", cfg.MQTT.Broker.Port,
	)

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to broker: %w", err)
	}
	client.SetLogger(log)
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing mqtt client", "error", closeErr)
		}
	}()

	ticker := time.NewTicker(publishInterval)
	defer ticker.Stop()

	for {
		publishAll(client, log)

		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return nil
		case <-ticker.C:
		}
	}
}

// publishAll emits one reading per sensor. Individual failures are logged
// and skipped; the loop keeps going.
func publishAll(client *mqtt.Client, log *logging.Logger) {
	now := float64(time.Now().UnixNano()) / float64(time.Second)

	for _, s := range sensors {
		msg := reading{
			Value: s.sample(),
			Unit:  s.unit,
			TS:    now,
		}

		data, err := json.Marshal(msg)
		if err != nil {
			log.Error("encoding reading", "topic", s.topic, "error", err)
			continue
		}
		if err := client.PublishJSON(s.topic, data); err != nil {
			log.Warn("publish failed", "topic", s.topic, "error", err)
			continue
		}
		log.Debug("published reading", "topic", s.topic, "value", msg.Value, "unit", msg.Unit)
	}
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

// sample draws a value in the sensor's range at its configured precision.
func (s sensor) sample() float64 {
	v := s.min + rand.Float64()*(s.max-s.min) //nolint:gosec // Simulated data, not crypto
	if s.round < 0 {
		return math.Round(v)
	}
	pow := math.Pow(10, float64(s.round))
	return math.Round(v*pow) / pow
}
