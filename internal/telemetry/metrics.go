package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ArtifactsIngested counts scan artifacts accepted by the store
	ArtifactsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surfaceminder",
			Name:      "artifacts_ingested_total",
			Help:      "Total number of scan artifacts ingested",
		},
		[]string{"kind"},
	)

	// ObservationsIngested counts port observations written with those artifacts
	ObservationsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surfaceminder",
			Name:      "observations_ingested_total",
			Help:      "Total number of port observations ingested",
		},
		[]string{"kind"},
	)

	// IngestSkips counts artifacts skipped during an ingestion run
	IngestSkips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surfaceminder",
			Name:      "ingest_skips_total",
			Help:      "Total number of artifacts skipped (duplicate or parse_error)",
		},
		[]string{"reason"},
	)

	// ChecksTotal counts baseline comparison runs
	ChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surfaceminder",
			Name:      "checks_total",
			Help:      "Total number of baseline comparison runs",
		},
		[]string{"tenant"},
	)

	// DriftEntries counts individual drift findings by change type
	DriftEntries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "surfaceminder",
			Name:      "drift_entries_total",
			Help:      "Total number of drift entries reported",
		},
		[]string{"tenant", "change"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Safe to call more than once.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(ArtifactsIngested)
		prometheus.DefaultRegisterer.Register(ObservationsIngested)
		prometheus.DefaultRegisterer.Register(IngestSkips)
		prometheus.DefaultRegisterer.Register(ChecksTotal)
		prometheus.DefaultRegisterer.Register(DriftEntries)
	})
}
