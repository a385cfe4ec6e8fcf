// Package metrics collects build metrics in a Prometheus registry that is
// written out as a node-exporter textfile at the end of a run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all mhdb metrics
const namespace = "mhdb"

// Metrics holds the collectors of one build
type Metrics struct {
	Registry *prometheus.Registry

	// BuildInfo is always 1, version information is in the labels
	BuildInfo *prometheus.GaugeVec

	PassDuration   *prometheus.HistogramVec
	PassFailures   *prometheus.CounterVec
	TriplesAdded   *prometheus.CounterVec
	Duplicates     *prometheus.CounterVec
	Dropped        *prometheus.CounterVec
	UnknownPrefix  *prometheus.CounterVec
	FetchRequests  *prometheus.CounterVec
	StoreTriples   prometheus.Gauge
	StoreSubjects  prometheus.Gauge
	DocumentBytes  prometheus.Gauge
	SnapshotCommit prometheus.Counter
}

// New creates a registry with every mhdb collector registered
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		BuildInfo: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build version information (always set to 1, version info in labels)",
		}, []string{"version", "run_id"}),
		PassDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of ingestion passes in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}, []string{"pass"}),
		PassFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pass_failures_total",
			Help:      "Ingestion passes that returned an error",
		}, []string{"pass"}),
		TriplesAdded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triples_added_total",
			Help:      "Statements added to the store by each pass",
		}, []string{"pass"}),
		Duplicates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triples_duplicate_total",
			Help:      "Merges of statements that were already present",
		}, []string{"pass"}),
		Dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "triples_dropped_total",
			Help:      "Merges dropped because a position was absent",
		}, []string{"pass"}),
		UnknownPrefix: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_prefix_total",
			Help:      "Labels dropped because their prefix is not registered",
		}, []string{"prefix"}),
		FetchRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Workbook download attempts by outcome",
		}, []string{"workbook", "outcome"}),
		StoreTriples: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_triples",
			Help:      "Statements in the store after the last pass",
		}),
		StoreSubjects: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_subjects",
			Help:      "Distinct subjects in the store after the last pass",
		}),
		DocumentBytes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_bytes",
			Help:      "Size of the rendered Turtle document",
		}),
		SnapshotCommit: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_commits_total",
			Help:      "Transactions committed while saving the snapshot",
		}),
	}
}

// RecordUnknownPrefixes adds resolver counts to UnknownPrefix
func (m *Metrics) RecordUnknownPrefixes(counts map[string]int) {
	for prefix, n := range counts {
		m.UnknownPrefix.WithLabelValues(prefix).Add(float64(n))
	}
}

// WriteTextfile writes every metric to path in the text exposition format
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
