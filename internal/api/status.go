package api

import (
	"net/http"
	"runtime"
	"time"
)

// SystemStatus is the body of GET /status.
type SystemStatus struct {
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	Site          string         `json:"site"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Runtime       RuntimeMetrics `json:"runtime"`
	WebSocket     WSMetrics      `json:"websocket"`
	Channels      ChannelMetrics `json:"channels"`
	Charts        ChartMetrics   `json:"charts"`
	Readout       ReadoutMetrics `json:"readout"`
}

// RuntimeMetrics contains Go runtime statistics.
type RuntimeMetrics struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemoryTotalMB float64 `json:"memory_total_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WSMetrics contains push hub statistics.
type WSMetrics struct {
	ConnectedClients int `json:"connected_clients"`
}

// ChannelMetrics reports the two upstream channels.
type ChannelMetrics struct {
	QueryOpen         bool   `json:"query_open"`
	MQTTConnected     bool   `json:"mqtt_connected"`
	MQTTSubscriptions int    `json:"mqtt_subscriptions"`
	MQTTError         string `json:"mqtt_error,omitempty"`
}

// ChartMetrics summarises the chart registry.
type ChartMetrics struct {
	Revision uint64 `json:"revision"`
	Points   int    `json:"points"`
}

// ReadoutMetrics reports the last live reading.
type ReadoutMetrics struct {
	Available bool   `json:"available"`
	Timestamp string `json:"timestamp,omitempty"`
}

// handleStatus returns runtime and channel status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snap := s.charts.Snapshot()
	points := 0
	for _, c := range snap.Charts {
		for _, ds := range c.Datasets {
			points += len(ds.Data)
		}
	}

	status := SystemStatus{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		Site:          s.cfg.Site.Name,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeMetrics{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(memStats.Alloc) / 1024 / 1024,
			MemoryTotalMB: float64(memStats.TotalAlloc) / 1024 / 1024,
			NumGC:         memStats.NumGC,
		},
		WebSocket: WSMetrics{
			ConnectedClients: s.hub.ClientCount(),
		},
		Charts: ChartMetrics{
			Revision: snap.Revision,
			Points:   points,
		},
	}

	if s.queryChannel != nil {
		status.Channels.QueryOpen = s.queryChannel.IsOpen()
	}
	if s.broker != nil {
		status.Channels.MQTTSubscriptions = s.broker.SubscriptionCount()
		if err := s.broker.HealthCheck(r.Context()); err != nil {
			status.Channels.MQTTError = err.Error()
		} else {
			status.Channels.MQTTConnected = true
		}
	}

	if view, ok := s.realtime.Current(); ok {
		status.Readout = ReadoutMetrics{Available: true, Timestamp: view.Timestamp}
	}

	writeJSON(w, http.StatusOK, status)
}
