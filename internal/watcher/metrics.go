package watcher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricWatchedEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "treewatch",
		Subsystem: "tree",
		Name:      "watched_entries",
		Help:      "Number of entries currently in the watch table, per entry type (file/dir)",
	}, []string{"type"})

	metricEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "treewatch",
		Subsystem: "tree",
		Name:      "events_total",
		Help:      "Total number of events published, per kind (watch/unwatch/error)",
	}, []string{"kind"})

	metricRescans = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "treewatch",
		Subsystem: "tree",
		Name:      "rescans_total",
		Help:      "Total number of directory traversals (initial walks and one-level rescans)",
	})
	metricRescanSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "treewatch",
		Subsystem: "tree",
		Name:      "rescan_seconds_total",
		Help:      "Total time spent in directory traversals",
	})

	metricNotifications = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "treewatch",
		Subsystem: "notify",
		Name:      "notifications_total",
		Help:      "Total number of change notifications received from the backend",
	})
)

func entryType(isFile bool) string {
	if isFile {
		return "file"
	}
	return "dir"
}
