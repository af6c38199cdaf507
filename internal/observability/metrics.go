package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the animation job.
type Metrics struct {
	FilesLoaded          prometheus.Counter
	ObservationsLoaded   prometheus.Counter
	MetadataDepthDropped prometheus.Counter
	WellsMissingDepth    prometheus.Counter
	PipelineRunning      prometheus.Gauge

	// Rendering metrics.
	FramesRendered     prometheus.Counter
	FramesPaused       prometheus.Counter
	StaticPlotsWritten prometheus.Counter
	StageDuration      *prometheus.HistogramVec // labels: stage={load,aggregate,export_csv,animate,static,atlas}
}

// NewMetrics creates and registers all job metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.FilesLoaded,
		m.ObservationsLoaded,
		m.MetadataDepthDropped,
		m.WellsMissingDepth,
		m.PipelineRunning,
		m.FramesRendered,
		m.FramesPaused,
		m.StaticPlotsWritten,
		m.StageDuration,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FilesLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gw_anim",
			Name:      "series_files_loaded_total",
			Help:      "Groundwater level files parsed.",
		}),
		ObservationsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gw_anim",
			Name:      "observations_loaded_total",
			Help:      "Observations read across all series files.",
		}),
		MetadataDepthDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gw_anim",
			Name:      "metadata_depth_dropped_total",
			Help:      "Metadata rows dropped because the depth did not parse.",
		}),
		WellsMissingDepth: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gw_anim",
			Name:      "wells_missing_depth_total",
			Help:      "Series files whose well has no depth in the metadata.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gw_anim",
			Name:      "pipeline_running",
			Help:      "1 while the pipeline is running, 0 otherwise.",
		}),
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gw_anim",
			Name:      "frames_rendered_total",
			Help:      "Animation frames that added a layer.",
		}),
		FramesPaused: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gw_anim",
			Name:      "frames_paused_total",
			Help:      "Animation frames consumed while paused.",
		}),
		StaticPlotsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gw_anim",
			Name:      "static_plots_written_total",
			Help:      "Per-well PNG plots written.",
		}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gw_anim",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
	}
}
