package storage

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSaves = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thesis_storage_saves_total",
		Help: "Successful collection writes.",
	})
	metricPrunes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thesis_storage_prunes_total",
		Help: "Writes that had to prune superseded version artifacts.",
	})
	metricQuotaFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thesis_storage_quota_failures_total",
		Help: "Writes rejected because the capacity ceiling was hit even after pruning.",
	})
	metricConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thesis_storage_conflicts_total",
		Help: "Saves rejected because the expected revision was stale.",
	})
	metricUsageBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "thesis_storage_usage_bytes",
		Help: "Serialized size of the two application collections after the last write.",
	})
)
