package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns its registry so scopes in tests never collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	Messages         *prometheus.CounterVec
	DecodeErrors     *prometheus.CounterVec
	ConnectionErrors *prometheus.CounterVec
	Connections      *prometheus.GaugeVec
	StateValue       *prometheus.GaugeVec
	RenderErrors     *prometheus.CounterVec
	Sends            *prometheus.CounterVec
}

const namespace = "bridge"

func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,

		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Lines received and accepted, by peer.",
		}, []string{"peer"}),

		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Lines dropped because they were not valid UTF-8.",
		}, []string{"peer"}),

		ConnectionErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connection_errors_total",
			Help:      "Connections ended by an error, by peer and kind.",
		}, []string{"peer", "kind"}),

		Connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_connections",
			Help:      "Currently open connections, by peer.",
		}, []string{"peer"}),

		StateValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_value",
			Help:      "Current value of each state scalar.",
		}, []string{"field"}),

		RenderErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_errors_total",
			Help:      "Status report render failures, by renderer.",
		}, []string{"renderer"}),

		Sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_total",
			Help:      "Outbound sends, by peer and result.",
		}, []string{"peer", "result"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Messages,
		m.DecodeErrors,
		m.ConnectionErrors,
		m.Connections,
		m.StateValue,
		m.RenderErrors,
		m.Sends,
	)

	return m
}

func (Module) Metrics() *Metrics {
	return New()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	})
}
