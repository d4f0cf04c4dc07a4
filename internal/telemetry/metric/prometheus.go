package metric

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mirrorcheck"

// Registry holds all validation metrics.
type Registry struct {
	registry *prometheus.Registry

	TablesScanned    prometheus.Gauge
	PairsTotal       prometheus.Counter
	MismatchesTotal  prometheus.Counter
	CompareErrors    prometheus.Counter
	RowsCompared     *prometheus.CounterVec
	CompareDuration  prometheus.Histogram
	LastRunTimestamp prometheus.Gauge
	LastRunSuccess   prometheus.Gauge
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		TablesScanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tables_scanned",
			Help:      "User tables found in the catalog",
		}),
		PairsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_total",
			Help:      "Mirror pairs validated",
		}),
		MismatchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mismatches_total",
			Help:      "Mirror pairs whose contents differ",
		}),
		CompareErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compare_errors_total",
			Help:      "Comparisons that could not complete",
		}),
		RowsCompared: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_compared_total",
			Help:      "Records read during comparison",
		}, []string{"side"}),
		CompareDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compare_duration_seconds",
			Help:      "Time spent comparing one mirror pair",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last validation run finished",
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if every mirror pair matched in the last run",
		}),
	}

	r.registry.MustRegister(
		r.TablesScanned,
		r.PairsTotal,
		r.MismatchesTotal,
		r.CompareErrors,
		r.RowsCompared,
		r.CompareDuration,
		r.LastRunTimestamp,
		r.LastRunSuccess,
	)
	return r
}

// ObserveComparison records one completed comparison.
func (r *Registry) ObserveComparison(match bool, baseRows, mirrorRows int64, elapsed time.Duration) {
	r.PairsTotal.Inc()
	if !match {
		r.MismatchesTotal.Inc()
	}
	r.RowsCompared.WithLabelValues("base").Add(float64(baseRows))
	r.RowsCompared.WithLabelValues("mirror").Add(float64(mirrorRows))
	r.CompareDuration.Observe(elapsed.Seconds())
}

// ObserveCompareError records a comparison that failed to complete. The pair
// counts as a mismatch.
func (r *Registry) ObserveCompareError(elapsed time.Duration) {
	r.PairsTotal.Inc()
	r.MismatchesTotal.Inc()
	r.CompareErrors.Inc()
	r.CompareDuration.Observe(elapsed.Seconds())
}

// ObserveRun records the end of a validation run.
func (r *Registry) ObserveRun(success bool, finished time.Time) {
	r.LastRunTimestamp.Set(float64(finished.Unix()))
	if success {
		r.LastRunSuccess.Set(1)
	} else {
		r.LastRunSuccess.Set(0)
	}
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
