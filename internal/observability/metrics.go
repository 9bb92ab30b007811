package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the RCI
// service.
type Metrics struct {
	Resolutions     *prometheus.CounterVec // labels: level={town,county,state,global_fallback}
	RCIRequests     *prometheus.CounterVec // labels: outcome={ok,invalid_zip,zip_not_found,error}
	RequestDuration *prometheus.HistogramVec

	// Snapshot lifecycle metrics.
	SnapshotBuilds        prometheus.Counter
	SnapshotBuildDuration prometheus.Histogram
	SnapshotRecords       prometheus.Gauge
	SnapshotReloadErrors  prometheus.Counter

	// ZIP geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rci",
			Name:      "hazard_resolutions_total",
			Help:      "Hazard coverage resolutions by fallback level.",
		}, []string{"level"}),
		RCIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rci",
			Name:      "requests_total",
			Help:      "RCI calculations by outcome.",
		}, []string{"outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rci",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests by endpoint.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}, []string{"endpoint"}),
		SnapshotBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rci",
			Name:      "snapshot_builds_total",
			Help:      "Total hazard snapshot builds, including reloads.",
		}),
		SnapshotBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rci",
			Name:      "snapshot_build_duration_seconds",
			Help:      "Duration of a complete snapshot build.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		SnapshotRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rci",
			Name:      "snapshot_records",
			Help:      "Deduplicated plan records in the published snapshot.",
		}),
		SnapshotReloadErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rci",
			Name:      "snapshot_reload_errors_total",
			Help:      "Failed snapshot rebuilds; the previous snapshot stays published.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rci",
			Name:      "geocode_requests_total",
			Help:      "ZIP geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rci",
			Name:      "geocode_cache_total",
			Help:      "ZIP geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rci",
			Name:      "geocode_api_duration_seconds",
			Help:      "Postal lookup API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rci",
			Name:      "geocode_enabled",
			Help:      "1 when ZIP geocoding is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.Resolutions,
		m.RCIRequests,
		m.RequestDuration,
		m.SnapshotBuilds,
		m.SnapshotBuildDuration,
		m.SnapshotRecords,
		m.SnapshotReloadErrors,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Resolutions:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "rci", Name: "hazard_resolutions_total"}, []string{"level"}),
		RCIRequests:           prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "rci", Name: "requests_total"}, []string{"outcome"}),
		RequestDuration:       prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "rci", Name: "request_duration_seconds"}, []string{"endpoint"}),
		SnapshotBuilds:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rci", Name: "snapshot_builds_total"}),
		SnapshotBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "rci", Name: "snapshot_build_duration_seconds"}),
		SnapshotRecords:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "rci", Name: "snapshot_records"}),
		SnapshotReloadErrors:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "rci", Name: "snapshot_reload_errors_total"}),
		GeocodeRequests:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "rci", Name: "geocode_requests_total"}, []string{"outcome"}),
		GeocodeCache:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "rci", Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "rci", Name: "geocode_api_duration_seconds"}),
		GeocodeEnabled:        prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "rci", Name: "geocode_enabled"}),
	}
}
