// Package metrics exposes Prometheus instruments for upstream calls and
// aggregation requests.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "energy_explorer_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "upstream_requests_total",
			Help: "Upstream HTTP requests by provider and result",
		},
		[]string{"provider", "result"},
	)
	upstreamLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metricPrefix + "upstream_request_duration_seconds",
			Help:    "Upstream HTTP request latency by provider",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
	upstreamPages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "upstream_pages_total",
			Help: "Result pages drained from paginated upstream APIs",
		},
		[]string{"provider"},
	)
	aggregations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "aggregations_total",
			Help: "Aggregation requests by kind and period",
		},
		[]string{"kind", "period"},
	)
	weatherCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metricPrefix + "weather_cache_lookups_total",
			Help: "Weather cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)

// Register adds all collectors to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		upstreamRequests, upstreamLatency, upstreamPages, aggregations, weatherCacheLookups,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveUpstream records one upstream request.
func ObserveUpstream(provider string, err error, elapsed time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	upstreamRequests.WithLabelValues(provider, result).Inc()
	upstreamLatency.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// IncPages counts a drained result page.
func IncPages(provider string) {
	upstreamPages.WithLabelValues(provider).Inc()
}

// IncAggregation counts one aggregation of the given kind.
func IncAggregation(kind, period string) {
	aggregations.WithLabelValues(kind, period).Inc()
}

// IncCacheLookup counts a cache hit or miss.
func IncCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	weatherCacheLookups.WithLabelValues(outcome).Inc()
}
