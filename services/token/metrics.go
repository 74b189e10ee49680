package token

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// prometheusTokenIssue counts issuance attempts
	prometheusTokenIssue prometheus.Counter

	// prometheusTokenAborted counts issuances aborted at any stage
	prometheusTokenAborted prometheus.Counter
)

var prometheusMetricsInitOnce sync.Once

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusTokenIssue = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "txforge",
			Subsystem: "token",
			Name:      "issue",
			Help:      "Number of token issuance attempts",
		},
	)

	prometheusTokenAborted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "txforge",
			Subsystem: "token",
			Name:      "aborted",
			Help:      "Number of token issuances aborted before completion",
		},
	)
}
