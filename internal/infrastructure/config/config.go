package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the room client and its
// companion tools. All configuration is loaded from YAML and can be
// overridden by environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Session   SessionConfig   `yaml:"session"`
	Room      RoomConfig      `yaml:"room"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	DevServer DevServerConfig `yaml:"devserver"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig points at the external CRUD/auth service.
type ServerConfig struct {
	// BaseURL is the REST API root, e.g. "http://localhost:8000/api".
	BaseURL string `yaml:"base_url"`
}

// WebSocketConfig contains live update channel settings.
// The scheme (ws/wss) mirrors the server base URL scheme; only the port
// differs from the REST endpoint.
type WebSocketConfig struct {
	Port int `yaml:"port"`
}

// SessionConfig contains the client-side session database settings.
type SessionConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// RoomConfig contains room view behaviour settings.
type RoomConfig struct {
	// ReloadOnToggle forces a full device reload after a successful toggle,
	// trading an extra round trip for authoritative state.
	ReloadOnToggle bool `yaml:"reload_on_toggle"`
}

// MQTTConfig contains MQTT broker connection settings for the simulator.
type MQTTConfig struct {
	Broker MQTTBrokerConfig `yaml:"broker"`
	Auth   MQTTAuthConfig   `yaml:"auth"`
	QoS    int              `yaml:"qos"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// InfluxDBConfig contains settings for the optional telemetry recorder.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// DevServerConfig contains listen settings for the in-memory stub server.
type DevServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable
// overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HOMEAUTO_SECTION_KEY
// For example: HOMEAUTO_SERVER_BASE_URL, HOMEAUTO_SESSION_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8000/api",
		},
		WebSocket: WebSocketConfig{
			Port: 8001,
		},
		Session: SessionConfig{
			Path:        "./data/session.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Room: RoomConfig{
			ReloadOnToggle: true,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "homeauto-sim",
			},
			QoS: 0,
		},
		DevServer: DevServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HOMEAUTO_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOMEAUTO_SERVER_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("HOMEAUTO_WEBSOCKET_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.WebSocket.Port = port
		}
	}
	if v := os.Getenv("HOMEAUTO_SESSION_PATH"); v != "" {
		cfg.Session.Path = v
	}
	if v := os.Getenv("HOMEAUTO_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOMEAUTO_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOMEAUTO_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}
	if v := os.Getenv("HOMEAUTO_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Server.BaseURL == "" {
		errs = append(errs, "server.base_url is required")
	} else if u, err := url.Parse(c.Server.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, "server.base_url must be an http(s) URL")
	}

	if c.WebSocket.Port < 1 || c.WebSocket.Port > 65535 {
		errs = append(errs, "websocket.port must be between 1 and 65535")
	}

	if c.Session.Path == "" {
		errs = append(errs, "session.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.DevServer.Port < 1 || c.DevServer.Port > 65535 {
		errs = append(errs, "devserver.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
