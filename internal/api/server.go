package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/HugoHonorez/sensora/internal/chart"
	"github.com/HugoHonorez/sensora/internal/export"
	"github.com/HugoHonorez/sensora/internal/infrastructure/config"
	"github.com/HugoHonorez/sensora/internal/infrastructure/logging"
	"github.com/HugoHonorez/sensora/internal/panel"
	"github.com/HugoHonorez/sensora/internal/query"
	"github.com/HugoHonorez/sensora/internal/realtime"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Push hub channels.
const (
	ChannelCharts  = "charts.updated"
	ChannelReadout = "readout.updated"
)

// ChannelStatus reports whether the historical query channel is open.
// *query.Client satisfies it.
type ChannelStatus interface {
	IsOpen() bool
}

// BrokerStatus reports on the realtime broker connection.
// *mqtt.Client satisfies it.
type BrokerStatus interface {
	HealthCheck(ctx context.Context) error
	SubscriptionCount() int
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       *config.Config
	Logger       *logging.Logger
	Charts       *chart.Registry
	Queries      *query.Controller
	Realtime     *realtime.Service
	QueryChannel ChannelStatus // optional
	Broker       BrokerStatus  // optional
	Assets       http.Handler  // optional; defaults to the embedded dashboard
	Version      string
}

// Server is the dashboard's HTTP server.
//
// It serves the page, the JSON API, exports, metrics and the push hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg          *config.Config
	logger       *logging.Logger
	charts       *chart.Registry
	queries      *query.Controller
	realtime     *realtime.Service
	queryChannel ChannelStatus
	broker       BrokerStatus
	exporter     *export.Exporter
	assets       http.Handler
	version      string
	startTime    time.Time
	hub          *Hub

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
	cancel   context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new server with the given dependencies.
//
// The hub is created immediately and fed by chart renders and readout
// updates; nothing listens until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Charts == nil {
		return nil, fmt.Errorf("chart registry is required")
	}
	if deps.Queries == nil {
		return nil, fmt.Errorf("query controller is required")
	}
	if deps.Realtime == nil {
		return nil, fmt.Errorf("realtime service is required")
	}

	assets := deps.Assets
	if assets == nil {
		assets = panel.Handler(deps.Config.HTTP.AssetsDir)
	}

	s := &Server{
		cfg:          deps.Config,
		logger:       deps.Logger,
		charts:       deps.Charts,
		queries:      deps.Queries,
		realtime:     deps.Realtime,
		queryChannel: deps.QueryChannel,
		broker:       deps.Broker,
		exporter:     export.New(deps.Charts, deps.Config.Location(), deps.Config.Site.Name),
		assets:       assets,
		version:      deps.Version,
		startTime:    time.Now(),
		hub:          NewHub(deps.Config.WebSocket, deps.Logger),
	}

	s.hub.SetInitial(ChannelCharts, func() (any, bool) {
		return s.charts.Snapshot(), true
	})
	s.hub.SetInitial(ChannelReadout, func() (any, bool) {
		v, ok := s.realtime.Current()
		return v, ok
	})

	s.charts.OnRender(func(snap chart.Snapshot) {
		s.hub.Broadcast(ChannelCharts, snap)
	})
	s.realtime.OnUpdate(func(v realtime.View) {
		s.hub.Broadcast(ChannelReadout, v)
	})

	return s, nil
}

// Hub returns the push hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start binds the listener and serves in a background goroutine.
//
// A bind failure is returned; the caller treats it as fatal.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("api server already started")
	}

	addr := net.JoinHostPort(s.cfg.HTTP.Host, fmt.Sprintf("%d", s.cfg.HTTP.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding %s: %w", addr, err)
	}

	// Create internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.listener = ln
	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	s.logger.Info("http server starting", "address", ln.Addr().String())

	srv := s.server
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	s.mu.Lock()
	srv := s.server
	cancel := s.cancel
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	// Cancel background goroutines (hub)
	if cancel != nil {
		cancel()
	}

	ctx, done := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer done()

	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	return nil
}
