// Package observability holds the Prometheus metrics collector and the
// OpenTelemetry tracing setup.
package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Singleton guard to avoid duplicate registration in tests
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Publication pipeline metrics
	SyncRuns    *prometheus.CounterVec
	Resolutions *prometheus.CounterVec

	// Surface cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CachePurges *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	syncRuns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publication_sync_runs_total",
			Help:      "Publication sync runs by event and result",
		},
		[]string{"event", "result"},
	)

	resolutions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slug_resolutions_total",
			Help:      "Slug resolutions by tier",
		},
		[]string{"tier"},
	)

	cacheHits := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surface_cache_hits_total",
			Help:      "Surface cache reads served from a snapshot",
		},
	)

	cacheMisses := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surface_cache_misses_total",
			Help:      "Surface cache reads that required a live fetch",
		},
	)

	cachePurges := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "surface_cache_purges_total",
			Help:      "Corrupted surface cache entries purged, by signature",
		},
		[]string{"signature"},
	)

	registry.MustRegister(httpRequests, httpDuration, syncRuns, resolutions,
		cacheHits, cacheMisses, cachePurges)

	globalCollector = &Collector{
		registry:     registry,
		HTTPRequests: httpRequests,
		HTTPDuration: httpDuration,
		SyncRuns:     syncRuns,
		Resolutions:  resolutions,
		CacheHits:    cacheHits,
		CacheMisses:  cacheMisses,
		CachePurges:  cachePurges,
	}
	return globalCollector
}

// Handler exposes the collector's registry for the /metrics endpoint
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one HTTP request
func (c *Collector) ObserveHTTP(method, route string, status string, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, status).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSync records one publication sync run
func (c *Collector) RecordSync(event, result string) {
	c.SyncRuns.WithLabelValues(event, result).Inc()
}

// RecordResolution records which tier resolved a slug
func (c *Collector) RecordResolution(tier string) {
	c.Resolutions.WithLabelValues(tier).Inc()
}
