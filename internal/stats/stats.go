// Package stats exposes quyc's operational counters via
// prometheus/client_golang — one of SPEC_FULL.md's ambient-stack
// components: the library emits structured observability the way the
// rest of the dependency pack does metrics, even though the distilled
// spec's Non-goals exclude an outer metrics surface.
package stats

import "github.com/prometheus/client_golang/prometheus"

// Collector bundles quyc's Prometheus counters and gauges. The Client
// updates cache hit/miss, retry attempts, and connection establishment
// outcomes; CacheEvictions, CircuitBreakerTrips, and ActiveStreams are
// registered but no package in this module updates them.
type Collector struct {
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheEvictions prometheus.Counter

	RetryAttempts prometheus.Counter

	ConnectionsEstablished *prometheus.CounterVec // labeled by protocol: h1, h2, h3
	ConnectionFailures     *prometheus.CounterVec

	CircuitBreakerTrips prometheus.Counter

	ActiveStreams prometheus.Gauge
}

// NewCollector builds a Collector and registers every metric on reg.
// Callers typically pass prometheus.NewRegistry() in tests to avoid
// polluting the global default registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quyc_cache_hits_total",
			Help: "Number of response cache lookups that hit.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quyc_cache_misses_total",
			Help: "Number of response cache lookups that missed.",
		}),
		CacheEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quyc_cache_evictions_total",
			Help: "Number of cache entries evicted by the LRU policy.",
		}),
		RetryAttempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quyc_retry_attempts_total",
			Help: "Number of request retry attempts made.",
		}),
		ConnectionsEstablished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quyc_connections_established_total",
			Help: "Number of connections successfully established, by protocol.",
		}, []string{"protocol"}),
		ConnectionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quyc_connection_failures_total",
			Help: "Number of connection attempts that failed, by protocol.",
		}, []string{"protocol"}),
		CircuitBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quyc_circuit_breaker_trips_total",
			Help: "Number of times the streaming deserializer's circuit breaker opened.",
		}),
		ActiveStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quyc_active_streams",
			Help: "Number of currently open response streams.",
		}),
	}

	reg.MustRegister(
		c.CacheHits, c.CacheMisses, c.CacheEvictions,
		c.RetryAttempts,
		c.ConnectionsEstablished, c.ConnectionFailures,
		c.CircuitBreakerTrips, c.ActiveStreams,
	)
	return c
}
