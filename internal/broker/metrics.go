package broker

import (
	"github.com/prometheus/client_golang/prometheus"

	"chatbroker/internal/health"
)

var (
	providerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brokerd",
			Subsystem: "provider",
			Name:      "calls_total",
			Help:      "Provider outcomes by result (success, failure kind or skip reason)",
		},
		[]string{"provider", "result"},
	)

	providerCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "brokerd",
			Subsystem: "provider",
			Name:      "call_duration_seconds",
			Help:      "Duration of upstream provider calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brokerd",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by result (hit, miss)",
		},
		[]string{"provider", "result"},
	)

	circuitTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brokerd",
			Subsystem: "circuit",
			Name:      "transitions_total",
			Help:      "Circuit state transitions by target state",
		},
		[]string{"provider", "to"},
	)

	circuitState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "brokerd",
			Subsystem: "circuit",
			Name:      "state",
			Help:      "Circuit state per provider (0 closed, 1 half-open, 2 open)",
		},
		[]string{"provider"},
	)
)

func init() {
	prometheus.MustRegister(providerCalls, providerCallDuration, cacheLookups, circuitTransitions, circuitState)
}

func stateValue(s health.State) float64 {
	switch s {
	case health.StateHalfOpen:
		return 1
	case health.StateOpen:
		return 2
	default:
		return 0
	}
}
