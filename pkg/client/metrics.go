package client

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsParams struct {
	// Default: "multiplayer"
	Namespace string
	// Default: "client"
	Subsystem string
	// Default: a private registry, so several clients can coexist in one process.
	Registry prometheus.Registerer
}

type Metrics struct {
	commandsSent     *prometheus.CounterVec
	commandsReceived *prometheus.CounterVec
	commandsDropped  *prometheus.CounterVec
	decodeErrors     prometheus.Counter
	sendFailures     prometheus.Counter
	stateTransitions *prometheus.CounterVec
}

func CreateMetrics(params MetricsParams) *Metrics {
	if params.Namespace == "" {
		params.Namespace = "multiplayer"
	}
	if params.Subsystem == "" {
		params.Subsystem = "client"
	}
	if params.Registry == nil {
		params.Registry = prometheus.NewRegistry()
	}

	factory := promauto.With(params.Registry)

	return &Metrics{
		commandsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: params.Namespace,
			Subsystem: params.Subsystem,
			Name:      "commands_sent_total",
			Help:      "Commands handed to the transport, by command type",
		}, []string{"type"}),
		commandsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: params.Namespace,
			Subsystem: params.Subsystem,
			Name:      "commands_received_total",
			Help:      "Commands delivered to CommandReceived observers, by command type",
		}, []string{"type"}),
		commandsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: params.Namespace,
			Subsystem: params.Subsystem,
			Name:      "commands_dropped_total",
			Help:      "Commands dropped without being sent or delivered, by reason",
		}, []string{"reason"}),
		decodeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: params.Namespace,
			Subsystem: params.Subsystem,
			Name:      "decode_errors_total",
			Help:      "Incoming frames that could not be decoded",
		}),
		sendFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: params.Namespace,
			Subsystem: params.Subsystem,
			Name:      "send_failures_total",
			Help:      "Commands that failed to encode or write",
		}),
		stateTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: params.Namespace,
			Subsystem: params.Subsystem,
			Name:      "state_transitions_total",
			Help:      "Connection state transitions, by new state",
		}, []string{"state"}),
	}
}
