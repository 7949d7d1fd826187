package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors shared by the connection, router and server packages.
type Metrics struct {
	Connections              prometheus.Gauge
	AuthenticatedConnections prometheus.Gauge
	MessagesSent             *prometheus.CounterVec
	SendFailures             prometheus.Counter
	DroppedMessages          prometheus.Counter
	Evictions                prometheus.Counter
	InboundErrors            prometheus.Counter
	EventsDispatched         *prometheus.CounterVec
	DispatchRecipients       prometheus.Histogram
}

// New creates the collectors and registers them with reg.
// A nil reg yields working collectors that are not exported anywhere.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		Connections: f.NewGauge(prometheus.GaugeOpts{
			Name: "bell24h_ws_connections",
			Help: "Number of live WebSocket connections.",
		}),
		AuthenticatedConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "bell24h_ws_authenticated_connections",
			Help: "Number of live WebSocket connections bound to a user.",
		}),
		MessagesSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bell24h_ws_messages_sent_total",
			Help: "Envelopes written to sockets, labelled by envelope type.",
		}, []string{"type"}),
		SendFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "bell24h_ws_send_failures_total",
			Help: "Socket writes that returned an error.",
		}),
		DroppedMessages: f.NewCounter(prometheus.CounterOpts{
			Name: "bell24h_ws_dropped_messages_total",
			Help: "Envelopes dropped because the connection was closed or its queue was full.",
		}),
		Evictions: f.NewCounter(prometheus.CounterOpts{
			Name: "bell24h_ws_evictions_total",
			Help: "Connections terminated by the heartbeat sweep.",
		}),
		InboundErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "bell24h_ws_inbound_errors_total",
			Help: "Inbound frames that could not be decoded.",
		}),
		EventsDispatched: f.NewCounterVec(prometheus.CounterOpts{
			Name: "bell24h_events_dispatched_total",
			Help: "Domain events routed to connections, labelled by envelope type.",
		}, []string{"event"}),
		DispatchRecipients: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bell24h_ws_dispatch_recipients",
			Help:    "Connections selected per dispatched event.",
			Buckets: []float64{0, 1, 2, 5, 10, 50, 100, 500, 1000, 5000},
		}),
	}
}
