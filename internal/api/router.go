package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/HugoHonorez/sensora/internal/infrastructure/metrics"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	if s.cfg.Metrics.Enabled {
		r.Handle(s.cfg.Metrics.Path, metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		r.Get("/charts", s.handleGetCharts)
		r.Get("/readout", s.handleGetReadout)

		r.Get("/filter", s.handleGetFilter)
		r.Post("/query", s.handleQuery)
		r.Post("/query/reset", s.handleQueryReset)

		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", s.handleListSensors)
			r.Post("/{sensor}/power", s.handleSensorPower)
		})

		r.Get("/export/{filename}", s.handleExport)

		r.Get("/ws", s.handleWebSocket)

		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeNotFound(w, "no such endpoint")
		})
	})

	// Dashboard page and assets
	r.Handle("/*", s.assets)

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"site":    s.cfg.Site.Name,
	})
}
