package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // display zones must resolve on minimal images

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the sensora dashboard.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	HTTP      HTTPConfig      `yaml:"http"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Query     QueryConfig     `yaml:"query"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Realtime  RealtimeConfig  `yaml:"realtime"`
	Display   DisplayConfig   `yaml:"display"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// SiteConfig identifies the installation shown in the dashboard header.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// HTTPConfig contains dashboard HTTP server settings.
type HTTPConfig struct {
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Timeouts HTTPTimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig        `yaml:"cors"`
	// AssetsDir serves dashboard assets from disk instead of the embedded copy.
	AssetsDir string `yaml:"assets_dir"`
}

// HTTPTimeoutConfig contains HTTP timeout settings in seconds.
type HTTPTimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains settings for the browser push hub.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// QueryConfig contains settings for the historical query channel.
type QueryConfig struct {
	// URL of the query server, e.g. ws://localhost:8765.
	URL string `yaml:"url"`
	// DialTimeout in seconds.
	DialTimeout    int    `yaml:"dial_timeout"`
	MaxMessageSize int    `yaml:"max_message_size"`
	DefaultRange   string `yaml:"default_range"`
	DefaultStep    string `yaml:"default_step"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
//
// Scheme is one of tcp, ssl, ws or wss. The realtime channel of the sensor
// stack is MQTT over WebSocket, so ws with path /mqtt is the default.
type MQTTBrokerConfig struct {
	Scheme   string `yaml:"scheme"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Path     string `yaml:"path"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
// Reconnection is off unless Enabled is set.
type MQTTReconnectConfig struct {
	Enabled      bool `yaml:"enabled"`
	InitialDelay int  `yaml:"initial_delay"`
	MaxDelay     int  `yaml:"max_delay"`
}

// RealtimeConfig contains the realtime topics and threshold rules.
type RealtimeConfig struct {
	DataTopic   string             `yaml:"data_topic"`
	PowerTopics map[string]string  `yaml:"power_topics"`
	Thresholds  map[string]float64 `yaml:"thresholds"`
}

// DisplayConfig controls how timestamps are rendered.
type DisplayConfig struct {
	Timezone string `yaml:"timezone"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SENSORA_SECTION_KEY
// For example: SENSORA_QUERY_URL, SENSORA_HTTP_PORT
func Load(path string) (*Config, error) {
	cfg := Default()

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

// Default returns a Config with the stack's well-known addresses and rules.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "site-001",
			Name: "Sensora",
		},
		HTTP: HTTPConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: HTTPTimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Query: QueryConfig{
			URL:            "ws://localhost:8765",
			DialTimeout:    5,
			MaxMessageSize: 32 << 20,
			DefaultRange:   "-1h",
			DefaultStep:    "30s",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Scheme:   "ws",
				Host:     "localhost",
				Port:     9001,
				Path:     "/mqtt",
				ClientID: "sensora-dashboard",
			},
			QoS: 0,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Realtime: RealtimeConfig{
			DataTopic: "sensors/data",
			PowerTopics: map[string]string{
				"temperature": "sensors/power/dht22",
				"pressure":    "sensors/power/bmp280",
				"light":       "sensors/power/ldr",
				"airquality":  "sensors/power/mq135",
			},
			Thresholds: map[string]float64{
				"temperature": 30,
				"humidity":    43,
				"heatindex":   35,
				"pressure":    1000,
				"light":       1000,
				"airquality":  1000,
			},
		},
		Display: DisplayConfig{
			Timezone: "Europe/Brussels",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SENSORA_HTTP_HOST"); v != "" {
		cfg.HTTP.Host = v
	}
	if v := os.Getenv("SENSORA_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = port
		}
	}

	if v := os.Getenv("SENSORA_QUERY_URL"); v != "" {
		cfg.Query.URL = v
	}

	if v := os.Getenv("SENSORA_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SENSORA_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SENSORA_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("SENSORA_DISPLAY_TIMEZONE"); v != "" {
		cfg.Display.Timezone = v
	}
	if v := os.Getenv("SENSORA_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, "http.port must be between 1 and 65535")
	}

	if c.Query.URL == "" {
		errs = append(errs, "query.url is required")
	} else if !strings.HasPrefix(c.Query.URL, "ws://") && !strings.HasPrefix(c.Query.URL, "wss://") {
		errs = append(errs, "query.url must use the ws:// or wss:// scheme")
	}
	if c.Query.DefaultRange == "" || c.Query.DefaultStep == "" {
		errs = append(errs, "query.default_range and query.default_step are required")
	}

	switch c.MQTT.Broker.Scheme {
	case "tcp", "ssl", "ws", "wss":
	default:
		errs = append(errs, "mqtt.broker.scheme must be tcp, ssl, ws or wss")
	}
	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Realtime.DataTopic == "" {
		errs = append(errs, "realtime.data_topic is required")
	}

	if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
		errs = append(errs, fmt.Sprintf("display.timezone %q is not a valid IANA zone", c.Display.Timezone))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// Location returns the display timezone. Validate guarantees it loads;
// UTC is returned if called on an unvalidated config with a bad zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetReadTimeout returns the HTTP read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.HTTP.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the HTTP write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.HTTP.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the HTTP idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.HTTP.Timeouts.Idle) * time.Second
}
