package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions   prometheus.Gauge
	SessionEvents    *prometheus.CounterVec
	WSMessages       *prometheus.CounterVec
	GatewayCalls     *prometheus.CounterVec
	GatewayTokens    *prometheus.CounterVec
	Extractions      *prometheus.CounterVec
	StageLatency     *prometheus.HistogramVec
	HistoryEvictions prometheus.Counter
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of active chat sessions.",
		}),
		SessionEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session events by type.",
		}, []string{"event"}),
		WSMessages: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		GatewayCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Model gateway calls by stage and outcome.",
		}, []string{"stage", "outcome"}),
		GatewayTokens: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_tokens_total",
			Help:      "Token usage reported by the model, by direction.",
		}, []string{"direction"}),
		Extractions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Structured extraction outcomes by stage and quality.",
		}, []string{"stage", "quality"}),
		StageLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_seconds",
			Help:      "Latency of one pipeline stage including the model call.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"stage"}),
		HistoryEvictions: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_evictions_total",
			Help:      "Turns evicted from the gateway context window.",
		}),
	}
}

// Observe helpers are nil-safe so components can run without metrics in tests.

func (m *Metrics) ObserveGatewayCall(stage, outcome string) {
	if m == nil {
		return
	}
	m.GatewayCalls.WithLabelValues(stage, outcome).Inc()
}

func (m *Metrics) ObserveTokens(input, output int) {
	if m == nil {
		return
	}
	m.GatewayTokens.WithLabelValues("input").Add(float64(input))
	m.GatewayTokens.WithLabelValues("output").Add(float64(output))
}

func (m *Metrics) ObserveExtraction(stage, quality string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(stage, quality).Inc()
}

func (m *Metrics) ObserveStageLatency(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageLatency.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) ObserveSessionEvent(event string) {
	if m == nil {
		return
	}
	m.SessionEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) ObserveWSMessage(direction, kind string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, kind).Inc()
}

func (m *Metrics) ObserveHistoryEviction(turns int) {
	if m == nil || turns <= 0 {
		return
	}
	m.HistoryEvictions.Add(float64(turns))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
