package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is the Prometheus surface described in SPEC_FULL.md §4.11,
// grounded on the teacher's prometheus.go (promauto-registered
// CounterVec/GaugeVec collectors, served over a plain net/http mux on
// its own goroutine — the one thing in this daemon that is not
// reactor-driven, exactly as the teacher runs its HTTP server apart from
// its session bookkeeping).
type Metrics struct {
	commandsSent     *prometheus.CounterVec
	messagesReceived *prometheus.CounterVec
	queueDepth       *prometheus.GaugeVec
	connections      prometheus.Gauge
	broadcasts       prometheus.Counter
	invalidCommands  prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		commandsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onkyocontrol_commands_sent_total",
			Help: "Receiver codes written to the serial link, per receiver.",
		}, []string{"receiver"}),
		messagesReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onkyocontrol_messages_received_total",
			Help: "Replies/events parsed from the serial link, per receiver.",
		}, []string{"receiver"}),
		queueDepth: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "onkyocontrol_queue_depth",
			Help: "Pending commands on a receiver's queue.",
		}, []string{"receiver"}),
		connections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "onkyocontrol_connections",
			Help: "Live client connections.",
		}),
		broadcasts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onkyocontrol_broadcasts_total",
			Help: "Event lines fanned out to clients.",
		}),
		invalidCommands: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onkyocontrol_invalid_commands_total",
			Help: "Client command lines rejected by the translator.",
		}),
	}
}

// serveMetrics starts the optional /metrics HTTP endpoint; it never
// touches Receiver/Connection/Listener state, so it needs no
// synchronization with the reactor (SPEC_FULL.md §5).
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go http.ListenAndServe(addr, mux)
}
