package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "inventory_source_fetch_duration_seconds",
			Help:    "Duration of inventory collection per source",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"source"},
	)

	fetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_source_fetch_failures_total",
			Help: "Total number of failed inventory collections",
		},
		[]string{"source", "kind"}, // kind: authentication, lookup, transport, partial_result, unknown
	)

	devicesCollected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_source_devices",
			Help: "Number of raw hostnames returned by the last collection of a source",
		},
		[]string{"source"},
	)

	comparisonMissing = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "inventory_comparison_missing",
			Help: "Number of hosts reported missing by the last complete comparison",
		},
		[]string{"comparison"},
	)

	comparisonIndeterminate = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inventory_comparison_indeterminate_total",
			Help: "Total number of comparisons that could not be computed",
		},
		[]string{"comparison"},
	)
)

// observeResult records the comparison outcome metrics of a run.
func observeResult(result *Result) {
	for _, c := range result.Comparisons {
		if c.Status == StatusIndeterminate {
			comparisonIndeterminate.WithLabelValues(c.Name).Inc()
			continue
		}
		comparisonMissing.WithLabelValues(c.Name).Set(float64(len(c.Missing)))
	}
}
