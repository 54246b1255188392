package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "sensora_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	queryMessages *prometheus.CounterVec
	querySends    *prometheus.CounterVec

	chartPoints  *prometheus.CounterVec
	chartRenders prometheus.Counter

	realtimeMessages *prometheus.CounterVec
	powerCommands    *prometheus.CounterVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec

	hubClients   prometheus.Gauge
	channelState *prometheus.GaugeVec
)

// Init registers the dashboard metrics with the default Prometheus registry.
// Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		queryMessages = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "query_messages_total",
				Help: "Messages received on the query channel by kind",
			},
			[]string{"kind"},
		)
		querySends = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "query_requests_total",
				Help: "Query requests by result",
			},
			[]string{"result"},
		)

		chartPoints = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "chart_points_total",
				Help: "Telemetry points handled by the series router by outcome",
			},
			[]string{"outcome"},
		)
		chartRenders = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "chart_renders_total",
				Help: "Chart registry render passes",
			},
		)

		realtimeMessages = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "realtime_messages_total",
				Help: "Realtime sensor messages by result",
			},
			[]string{"result"},
		)
		powerCommands = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "power_commands_total",
				Help: "Sensor power commands by sensor, state and result",
			},
			[]string{"sensor", "state", "result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Data exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Data export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		)

		hubClients = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "hub_clients",
				Help: "Browser clients connected to the push hub",
			},
		)
		channelState = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "channel_up",
				Help: "Upstream channel state (1 open, 0 closed)",
			},
			[]string{"channel"},
		)

		prometheus.MustRegister(
			queryMessages,
			querySends,
			chartPoints,
			chartRenders,
			realtimeMessages,
			powerCommands,
			exportTotal,
			exportLatency,
			hubClients,
			channelState,
		)
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// IncQueryMessage counts a message received on the query channel.
// kind is bulk, ignored or malformed.
func IncQueryMessage(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	if queryMessages != nil {
		queryMessages.WithLabelValues(kind).Inc()
	}
}

// IncQuerySend counts a query request. result is sent, dropped or error.
func IncQuerySend(result string) {
	if result == "" {
		result = resultSuccess
	}
	if querySends != nil {
		querySends.WithLabelValues(result).Inc()
	}
}

// AddChartPoints adds routed and dropped point counts from one bulk.
func AddChartPoints(routed, dropped int) {
	if chartPoints == nil {
		return
	}
	if routed > 0 {
		chartPoints.WithLabelValues(OutcomeRouted).Add(float64(routed))
	}
	if dropped > 0 {
		chartPoints.WithLabelValues(OutcomeDropped).Add(float64(dropped))
	}
}

// IncChartRender counts a registry render pass.
func IncChartRender() {
	if chartRenders != nil {
		chartRenders.Inc()
	}
}

// IncRealtimeMessage counts a realtime message by result.
func IncRealtimeMessage(result string) {
	if result == "" {
		result = resultSuccess
	}
	if realtimeMessages != nil {
		realtimeMessages.WithLabelValues(result).Inc()
	}
}

// IncPowerCommand counts a published (or rejected) power command.
func IncPowerCommand(sensor, state, result string) {
	if sensor == "" {
		sensor = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if powerCommands != nil {
		powerCommands.WithLabelValues(sensor, state, result).Inc()
	}
}

// ObserveExport records export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format).Observe(duration.Seconds())
	}
}

// SetHubClients sets the number of connected push-hub clients.
func SetHubClients(n int) {
	if hubClients != nil {
		hubClients.Set(float64(n))
	}
}

// SetChannelUp records whether an upstream channel is open.
func SetChannelUp(channel string, up bool) {
	if channelState == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	channelState.WithLabelValues(channel).Set(v)
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	OutcomeRouted  = "routed"
	OutcomeDropped = "dropped"

	QueryKindBulk      = "bulk"
	QueryKindIgnored   = "ignored"
	QueryKindMalformed = "malformed"

	QuerySent    = "sent"
	QueryDropped = "dropped"

	RealtimeRendered = "rendered"
	RealtimeDropped  = "dropped"

	ChannelQuery = "query"
	ChannelMQTT  = "mqtt"
)
