package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "discover"

// Outcome label values of DiscoverRequestsTotal.
const (
	OutcomeOK              = "ok"
	OutcomeValidationError = "validation_error"
	OutcomeFilterError     = "filter_error"
	OutcomeInternalError   = "internal_error"
)

// Discovery Prometheus metrics.
var (
	DiscoverRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of discover requests by outcome",
		},
		[]string{"outcome"},
	)

	DiscoverItemsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "items_returned",
			Help:      "Items returned per discover page",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)

	DiscoverStageItems = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_items",
			Help:      "Items surviving each discover pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"stage"},
	)
)

var discoveryMetricsRegistered bool

// RegisterDiscoveryMetrics registers Prometheus discovery metrics. Must be called once from main.
func RegisterDiscoveryMetrics() {
	if discoveryMetricsRegistered {
		return
	}
	prometheus.MustRegister(DiscoverRequestsTotal)
	prometheus.MustRegister(DiscoverItemsReturned)
	prometheus.MustRegister(DiscoverStageItems)
	discoveryMetricsRegistered = true
}
