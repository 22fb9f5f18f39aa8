package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "relay"

// Join results recorded on the joins counter.
const (
	JoinOK       = "ok"
	JoinNotFound = "not_found"
	JoinFull     = "full"
	JoinInvalid  = "invalid"
)

// Transports recorded on the active streams gauge.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
)

// Metrics holds the relay collectors. Each instance owns its registry so
// tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	roomsCreated       prometheus.Counter
	joins              *prometheus.CounterVec
	messages           prometheus.Counter
	deliveryFailures   prometheus.Counter
	activeStreams      *prometheus.GaugeVec
	httpRequestLatency *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		roomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Number of rooms created.",
		}),
		joins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "joins_total",
			Help:      "Join attempts by result.",
		}, []string{"result"}),
		messages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Messages accepted across all rooms.",
		}),
		deliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Subscribers dropped because a delivery failed.",
		}),
		activeStreams: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_streams",
			Help:      "Open push streams by transport.",
		}, []string{"transport"}),
		httpRequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of non-streaming HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.roomsCreated,
		m.joins,
		m.messages,
		m.deliveryFailures,
		m.activeStreams,
		m.httpRequestLatency,
	)

	return m
}

func (m *Metrics) RoomCreated() { m.roomsCreated.Inc() }

func (m *Metrics) Join(result string) { m.joins.WithLabelValues(result).Inc() }

func (m *Metrics) MessageSent() { m.messages.Inc() }

func (m *Metrics) DeliveryFailures(n int) {
	if n > 0 {
		m.deliveryFailures.Add(float64(n))
	}
}

// StreamOpened bumps the gauge and returns the matching decrement.
func (m *Metrics) StreamOpened(transport string) func() {
	g := m.activeStreams.WithLabelValues(transport)
	g.Inc()
	return g.Dec
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	m.httpRequestLatency.WithLabelValues(method, route, status).Observe(seconds)
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
