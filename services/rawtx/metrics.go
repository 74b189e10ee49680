package rawtx

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bsv-blockchain/txforge/util"
)

var (
	// prometheusRawTxBuild counts unsigned transactions assembled
	prometheusRawTxBuild prometheus.Counter

	// prometheusRawTxSign counts signing passes
	prometheusRawTxSign prometheus.Counter

	// prometheusRawTxSignIncomplete counts signing passes that ended incomplete
	prometheusRawTxSignIncomplete prometheus.Counter

	// prometheusRawTxCombine counts unlocking script merges
	prometheusRawTxCombine prometheus.Counter

	// prometheusRawTxSignDuration measures whole signing passes
	prometheusRawTxSignDuration prometheus.Histogram
)

var prometheusMetricsInitOnce sync.Once

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusRawTxBuild = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "txforge",
			Subsystem: "rawtx",
			Name:      "build",
			Help:      "Number of unsigned transactions assembled",
		},
	)

	prometheusRawTxSign = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "txforge",
			Subsystem: "rawtx",
			Name:      "sign",
			Help:      "Number of signing passes",
		},
	)

	prometheusRawTxSignIncomplete = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "txforge",
			Subsystem: "rawtx",
			Name:      "sign_incomplete",
			Help:      "Number of signing passes that left at least one input unsatisfied",
		},
	)

	prometheusRawTxCombine = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "txforge",
			Subsystem: "rawtx",
			Name:      "combine",
			Help:      "Number of unlocking script merges",
		},
	)

	prometheusRawTxSignDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "txforge",
			Subsystem: "rawtx",
			Name:      "sign_duration",
			Help:      "Histogram of signing pass duration",
			Buckets:   util.MetricsBucketsMicroSeconds,
		},
	)
}
