package broadcast

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// prometheusBroadcastSubmit counts submissions
	prometheusBroadcastSubmit prometheus.Counter

	// prometheusBroadcastDuplicate counts submissions short-circuited as already known
	prometheusBroadcastDuplicate prometheus.Counter

	// prometheusBroadcastRejected counts submissions that failed admission
	prometheusBroadcastRejected prometheus.Counter

	// prometheusBroadcastRelayed counts successful relay deliveries
	prometheusBroadcastRelayed prometheus.Counter
)

var prometheusMetricsInitOnce sync.Once

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusBroadcastSubmit = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "txforge",
			Subsystem: "broadcast",
			Name:      "submit",
			Help:      "Number of transactions submitted",
		},
	)

	prometheusBroadcastDuplicate = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "txforge",
			Subsystem: "broadcast",
			Name:      "duplicate",
			Help:      "Number of submissions already pending or recently seen",
		},
	)

	prometheusBroadcastRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "txforge",
			Subsystem: "broadcast",
			Name:      "rejected",
			Help:      "Number of submissions that failed admission",
		},
	)

	prometheusBroadcastRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "txforge",
			Subsystem: "broadcast",
			Name:      "relayed",
			Help:      "Number of successful relay deliveries",
		},
	)
}
