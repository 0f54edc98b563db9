// Package metrics holds the Prometheus collectors for the roster pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_upstream_requests_total",
			Help: "Upstream requests by operation and outcome (status code, \"transport\" or \"protocol\")",
		},
		[]string{"operation", "outcome"},
	)

	upstreamRequestSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "roster_upstream_request_seconds",
			Help:    "Latency of upstream requests (per operation)",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"operation"},
	)

	sessionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_session_cache_lookups_total",
			Help: "Upstream session token lookups by result (hit, miss, expired)",
		},
		[]string{"result"},
	)

	rosterPieces = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_pieces_total",
			Help: "Upstream order pieces seen during aggregation (per parse status)",
		},
		[]string{"status"},
	)
)

// ObserveUpstream records one upstream call.
func ObserveUpstream(operation, outcome string, elapsed time.Duration) {
	upstreamRequests.WithLabelValues(operation, outcome).Inc()
	upstreamRequestSeconds.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func SessionCacheLookup(result string) {
	sessionCacheLookups.WithLabelValues(result).Inc()
}

func Pieces(status string, n int) {
	if n <= 0 {
		return
	}
	rosterPieces.WithLabelValues(status).Add(float64(n))
}
