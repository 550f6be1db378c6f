package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// radar animation pipeline.
type Metrics struct {
	RunsTotal       *prometheus.CounterVec // labels: outcome={success,degraded,failed}
	RunDuration     prometheus.Histogram
	PipelineRunning prometheus.Gauge
	LastRunUnix     prometheus.Gauge

	// Time series discovery.
	DiscoveryTotal *prometheus.CounterVec // labels: source={capabilities,fallback}

	// Frame fetching.
	FramesFetched prometheus.Counter
	FramesFailed  prometheus.Counter
	FetchDuration prometheus.Histogram

	// Encoding.
	EncodeDuration prometheus.Histogram
	EncodeFailures prometheus.Counter

	// Geocoding enrichment.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.PipelineRunning,
		m.LastRunUnix,
		m.DiscoveryTotal,
		m.FramesFetched,
		m.FramesFailed,
		m.FetchDuration,
		m.EncodeDuration,
		m.EncodeFailures,
		m.GeocodeRequests,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radarloop",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "radarloop",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete discover-fetch-composite-encode run.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300},
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "radarloop",
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress.",
		}),
		LastRunUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "radarloop",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
		DiscoveryTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radarloop",
			Name:      "discovery_total",
			Help:      "Time series discoveries by source.",
		}, []string{"source"}),
		FramesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radarloop",
			Name:      "frames_fetched_total",
			Help:      "Radar frames fetched successfully.",
		}),
		FramesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radarloop",
			Name:      "frames_failed_total",
			Help:      "Radar frame fetches that returned no usable raster.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "radarloop",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one GetMap request.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		EncodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "radarloop",
			Name:      "encode_duration_seconds",
			Help:      "Duration of one external encoder invocation.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		EncodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "radarloop",
			Name:      "encode_failures_total",
			Help:      "Encoder invocations that produced no usable output.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "radarloop",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
	}
}
