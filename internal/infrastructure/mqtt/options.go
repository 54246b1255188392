package mqtt

import (
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/HugoHonorez/sensora/internal/infrastructure/config"
)

// Connection constants.
const (
	// defaultConnectTimeout is the maximum time to wait for initial connection.
	defaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout is the maximum time to wait for publish acknowledgment.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectQuiesce is the time to wait for pending operations on disconnect.
	defaultDisconnectQuiesce = 250 // milliseconds

	// defaultKeepAlive is the keepalive interval for the connection.
	defaultKeepAlive = 60 * time.Second

	// maxQoS is the maximum QoS level supported.
	maxQoS = 2

	// tlsMinVersion is the minimum TLS version for secure connections.
	tlsMinVersion = tls.VersionTLS12

	// clientIDSuffixLen is how many characters of a UUID are appended to the client ID.
	clientIDSuffixLen = 8
)

// BrokerURL builds the paho broker URL from config.
//
// Examples:
//
//	ws://localhost:9001/mqtt
//	tcp://127.0.0.1:1883
func BrokerURL(cfg config.MQTTConfig) string {
	scheme := cfg.Broker.Scheme
	if scheme == "" {
		scheme = "tcp"
	}
	url := fmt.Sprintf("%s://%s:%d", scheme, cfg.Broker.Host, cfg.Broker.Port)

	if isWebSocket(scheme) {
		path := cfg.Broker.Path
		if path != "" && !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		url += path
	}
	return url
}

// uniqueClientID appends a random suffix so several dashboards can share a broker.
func uniqueClientID(base string) string {
	if base == "" {
		base = "sensora"
	}
	return base + "-" + uuid.NewString()[:clientIDSuffixLen]
}

func isWebSocket(scheme string) bool {
	return scheme == "ws" || scheme == "wss"
}

func isSecure(scheme string) bool {
	return scheme == "ssl" || scheme == "wss"
}

// buildClientOptions creates paho MQTT options from sensora config.
//
// This configures:
//   - Broker URL (tcp, ssl, ws or wss)
//   - Client ID with a random suffix
//   - Authentication credentials (if provided)
//   - Auto-reconnect, only when enabled in config
//   - TLS configuration for ssl and wss
//   - Clean session mode
func buildClientOptions(cfg config.MQTTConfig, clientID string) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions()

	opts.AddBroker(BrokerURL(cfg))
	opts.SetClientID(clientID)

	// Authentication (if credentials provided)
	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	// Clean session - start fresh on connect (no persistent session on broker)
	opts.SetCleanSession(true)

	// A lost connection stays lost unless reconnect is explicitly enabled.
	opts.SetAutoReconnect(cfg.Reconnect.Enabled)
	opts.SetConnectRetry(false)
	if cfg.Reconnect.Enabled {
		opts.SetConnectRetryInterval(time.Duration(cfg.Reconnect.InitialDelay) * time.Second)
		opts.SetMaxReconnectInterval(time.Duration(cfg.Reconnect.MaxDelay) * time.Second)
	}

	// Connection timeout
	opts.SetConnectTimeout(defaultConnectTimeout)

	// Keepalive - broker sends PINGs to detect dead connections
	opts.SetKeepAlive(defaultKeepAlive)

	if isSecure(cfg.Broker.Scheme) {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tlsMinVersion,
		})
	}

	return opts
}
