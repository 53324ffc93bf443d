package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DashboardMetrics records aggregation runs and cache behavior.
type DashboardMetrics struct {
	duration      *prometheus.HistogramVec
	ordersScanned *prometheus.CounterVec
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
}

// NewDashboardMetrics registers the dashboard metrics on the provided registerer.
func NewDashboardMetrics(reg prometheus.Registerer) *DashboardMetrics {
	if reg == nil {
		return &DashboardMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_aggregation_duration_seconds",
		Help:    "Duration of dashboard aggregation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"variant"})
	ordersScanned := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_orders_scanned_total",
		Help: "Orders folded into dashboard snapshots.",
	}, []string{"variant"})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_hits_total",
		Help: "Snapshot cache hits.",
	}, []string{"variant"})
	cacheMisses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_misses_total",
		Help: "Snapshot cache misses.",
	}, []string{"variant"})
	reg.MustRegister(duration, ordersScanned, cacheHits, cacheMisses)
	return &DashboardMetrics{
		duration:      duration,
		ordersScanned: ordersScanned,
		cacheHits:     cacheHits,
		cacheMisses:   cacheMisses,
	}
}

// ObserveDuration records the duration of one aggregation run.
func (d *DashboardMetrics) ObserveDuration(variant string, duration time.Duration) {
	if d == nil || d.duration == nil {
		return
	}
	d.duration.WithLabelValues(normalizeLabel(variant)).Observe(duration.Seconds())
}

// AddOrdersScanned counts how many orders an aggregation run folded.
func (d *DashboardMetrics) AddOrdersScanned(variant string, n int) {
	if d == nil || d.ordersScanned == nil || n <= 0 {
		return
	}
	d.ordersScanned.WithLabelValues(normalizeLabel(variant)).Add(float64(n))
}

// IncCacheHit increments the cache hit counter for the variant.
func (d *DashboardMetrics) IncCacheHit(variant string) {
	if d == nil || d.cacheHits == nil {
		return
	}
	d.cacheHits.WithLabelValues(normalizeLabel(variant)).Inc()
}

// IncCacheMiss increments the cache miss counter for the variant.
func (d *DashboardMetrics) IncCacheMiss(variant string) {
	if d == nil || d.cacheMisses == nil {
		return
	}
	d.cacheMisses.WithLabelValues(normalizeLabel(variant)).Inc()
}

func normalizeLabel(variant string) string {
	if variant == "" {
		return "unknown"
	}
	return variant
}
