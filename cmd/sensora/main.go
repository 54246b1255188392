// Sensora - environmental telemetry dashboard
//
// This is the main entry point for the sensora dashboard. It owns both
// upstream channels of the sensor stack:
//   - the historical query server (WebSocket, bulk responses into charts)
//   - the MQTT broker (live readings in, power commands out)
//
// and serves the dashboard page, JSON API, exports and metrics over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/HugoHonorez/sensora/internal/api"
	"github.com/HugoHonorez/sensora/internal/chart"
	"github.com/HugoHonorez/sensora/internal/infrastructure/config"
	"github.com/HugoHonorez/sensora/internal/infrastructure/logging"
	"github.com/HugoHonorez/sensora/internal/infrastructure/metrics"
	"github.com/HugoHonorez/sensora/internal/infrastructure/mqtt"
	"github.com/HugoHonorez/sensora/internal/query"
	"github.com/HugoHonorez/sensora/internal/realtime"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Only an invalid configuration or a failed HTTP bind is returned as an
// error. Upstream channels that cannot be reached are logged and left
// down; the dashboard keeps serving.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting sensora",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded",
		"path", configPath,
		"level", cfg.Logging.Level,
		"timezone", cfg.Display.Timezone,
	)

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	loc := cfg.Location()
	charts := chart.NewRegistry()

	queryLog := log.Component("query")
	queryClient := query.NewClient(cfg.Query, charts, queryLog)
	queries := query.NewController(queryClient, query.Filter{
		Range: cfg.Query.DefaultRange,
		Step:  cfg.Query.DefaultStep,
	}, loc, queryLog)
	queryClient.SetOnOpen(queries.SendCurrent)

	live, err := realtime.NewService(cfg.Realtime, loc, log.Component("realtime"))
	if err != nil {
		return fmt.Errorf("configuring realtime: %w", err)
	}

	deps := api.Deps{
		Config:       cfg,
		Logger:       log.Component("http"),
		Charts:       charts,
		Queries:      queries,
		Realtime:     live,
		QueryChannel: queryClient,
		Version:      version,
	}

	if mqttClient := connectMQTT(cfg, live, log); mqttClient != nil {
		defer func() {
			log.Info("disconnecting from MQTT")
			if detachErr := live.Detach(); detachErr != nil {
				log.Warn("realtime unsubscribe failed", "error", detachErr)
			}
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		deps.Broker = mqttClient
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating http server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting http server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing http server", "error", closeErr)
		}
	}()

	if err := queryClient.Connect(ctx); err != nil {
		queryLog.Warn("query channel unavailable; history disabled until restart",
			"url", cfg.Query.URL,
			"error", err,
		)
	} else {
		defer func() {
			if closeErr := queryClient.Close(); closeErr != nil {
				queryLog.Error("error closing query channel", "error", closeErr)
			}
		}()
	}

	log.Info("initialisation complete, waiting for shutdown signal", "address", server.Addr())

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// connectMQTT connects to the broker and attaches the realtime service.
// It returns nil when the broker cannot be reached.
func connectMQTT(cfg *config.Config, live *realtime.Service, log *logging.Logger) *mqtt.Client {
	mqttLog := log.Component("mqtt")

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		metrics.SetChannelUp(metrics.ChannelMQTT, false)
		mqttLog.Warn("MQTT unavailable; live readings disabled",
			"broker", mqtt.BrokerURL(cfg.MQTT),
			"error", err,
		)
		return nil
	}
	client.SetLogger(mqttLog)
	client.SetOnConnect(func() {
		metrics.SetChannelUp(metrics.ChannelMQTT, true)
		mqttLog.Info("MQTT reconnected")
	})
	client.SetOnDisconnect(func(err error) {
		metrics.SetChannelUp(metrics.ChannelMQTT, false)
		mqttLog.Warn("MQTT disconnected", "error", err)
	})
	metrics.SetChannelUp(metrics.ChannelMQTT, true)
	mqttLog.Info("MQTT connected",
		"broker", mqtt.BrokerURL(cfg.MQTT),
		"client_id", client.ClientID(),
	)

	if err := live.Attach(client); err != nil {
		mqttLog.Warn("realtime subscription failed", "error", err)
	}
	return client
}

// getConfigPath returns the config file path from SENSORA_CONFIG or the default.
func getConfigPath() string {
	if path := os.Getenv("SENSORA_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
