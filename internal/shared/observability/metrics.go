package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shadowmap_parsing_seconds",
		Help:    "Time spent parsing a source file.",
		Buckets: prometheus.DefBuckets,
	})

	PassDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shadowmap_pass_seconds",
		Help:    "Time spent on one full resolution pass.",
		Buckets: prometheus.DefBuckets,
	})

	LookupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shadowmap_lookups_total",
		Help: "Total number of mapping provider lookups performed.",
	})

	ConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shadowmap_conflicts_total",
		Help: "Total number of mapping conflicts detected.",
	})

	MissingMappingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shadowmap_missing_mappings_total",
		Help: "Total number of lookups that returned no mapping in any environment.",
	})

	MappingTableSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shadowmap_mapping_table_entries",
		Help: "Number of accepted (environment, element) entries after the last pass.",
	})

	EnvironmentEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shadowmap_environment_entries",
		Help: "Number of mapping entries loaded per environment.",
	}, []string{"environment"})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shadowmap_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
