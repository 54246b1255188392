// Package mqtttest runs an in-process MQTT broker for tests.
package mqtttest

import (
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"testing"

	mqttbroker "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"

	"github.com/HugoHonorez/sensora/internal/infrastructure/config"
)

// Broker is a mochi broker listening on a loopback TCP port.
type Broker struct {
	server    *mqttbroker.Server
	closeOnce sync.Once
	Host      string
	Port      int
}

// Start launches a broker that accepts every client and stops it when the test ends.
func Start(t testing.TB) *Broker {
	t.Helper()

	port := FreePort(t)
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))

	server := mqttbroker.New(&mqttbroker.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	tcp := listeners.NewTCP(listeners.Config{ID: "tcp", Address: addr})
	if err := server.AddListener(tcp); err != nil {
		t.Fatalf("mqtttest: add listener: %v", err)
	}
	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		t.Fatalf("mqtttest: add auth hook: %v", err)
	}

	go func() {
		if err := server.Serve(); err != nil {
			t.Logf("mqtttest: broker stopped: %v", err)
		}
	}()

	b := &Broker{server: server, Host: "127.0.0.1", Port: port}
	t.Cleanup(b.Close)
	return b
}

// Config returns an MQTT config pointing at the broker over plain TCP.
func (b *Broker) Config() config.MQTTConfig {
	cfg := config.Default().MQTT
	cfg.Broker.Scheme = "tcp"
	cfg.Broker.Host = b.Host
	cfg.Broker.Port = b.Port
	cfg.Broker.Path = ""
	cfg.Broker.ClientID = "sensora-test"
	return cfg
}

// Close stops the broker and drops every client connection. Safe to call twice.
func (b *Broker) Close() {
	b.closeOnce.Do(func() {
		_ = b.server.Close()
	})
}

// FreePort returns a loopback TCP port that was free a moment ago.
func FreePort(t testing.TB) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("mqtttest: reserve port: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	_ = l.Close()
	return port
}
