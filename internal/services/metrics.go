package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	votesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devflow",
			Name:      "votes_total",
			Help:      "Vote transitions applied, by item kind and resulting state.",
		},
		[]string{"kind", "state"},
	)

	reputationDelta = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devflow",
			Name:      "reputation_changes_total",
			Help:      "Reputation adjustments applied, by sign.",
		},
		[]string{"sign"},
	)
)

// Collectors returns the engine metrics for registration
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{votesTotal, reputationDelta}
}

func observeReputation(delta int64) {
	switch {
	case delta > 0:
		reputationDelta.WithLabelValues("positive").Inc()
	case delta < 0:
		reputationDelta.WithLabelValues("negative").Inc()
	}
}
