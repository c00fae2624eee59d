package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// forecasting pipeline and the validation engine.
type Metrics struct {
	AnalysesConsumed    prometheus.Counter
	PredictionsProduced prometheus.Counter
	ExtractErrors       prometheus.Counter
	PipelineRunning     prometheus.Gauge

	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Storm extraction metrics.
	StormsExtracted      prometheus.Counter
	StormSectionsSkipped prometheus.Counter

	// Spectral decomposition metrics.
	SpectralLinesParsed   prometheus.Counter
	SpectralParseFailures prometheus.Counter

	// Validation metrics.
	ValidationRuns         *prometheus.CounterVec // labels: outcome={completed,rejected}
	ValidationMatchedPairs prometheus.Histogram

	// Observation fetch metrics.
	ObservationFetchDuration prometheus.Histogram
	ObservationCache         *prometheus.CounterVec // labels: result={hit,miss}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.AnalysesConsumed,
		m.PredictionsProduced,
		m.ExtractErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.StormsExtracted,
		m.StormSectionsSkipped,
		m.SpectralLinesParsed,
		m.SpectralParseFailures,
		m.ValidationRuns,
		m.ValidationMatchedPairs,
		m.ObservationFetchDuration,
		m.ObservationCache,
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
		AnalysesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "analyses_consumed_total",
			Help:      "Total analysis documents read from the source topic.",
		}),
		PredictionsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "predictions_produced_total",
			Help:      "Total arrival predictions written to the sink topic.",
		}),
		ExtractErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "extract_errors_total",
			Help:      "Total analysis documents that failed transformation.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "surfcast",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "surfcast",
			Name:      "batch_size",
			Help:      "Number of analysis documents per extracted batch.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "surfcast",
			Name:      "batch_processing_duration_seconds",
			Help:      "End-to-end duration of one extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		StormsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "storms_extracted_total",
			Help:      "Total storm systems mined from analysis text.",
		}),
		StormSectionsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "storm_sections_skipped_total",
			Help:      "Total analysis documents that yielded no storms.",
		}),
		SpectralLinesParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "spectral_lines_parsed_total",
			Help:      "Total spectral summary lines decomposed successfully.",
		}),
		SpectralParseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "spectral_parse_failures_total",
			Help:      "Total spectral summary lines skipped as malformed.",
		}),
		ValidationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "validation_runs_total",
			Help:      "Validation runs by terminal outcome.",
		}, []string{"outcome"}),
		ValidationMatchedPairs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "surfcast",
			Name:      "validation_matched_pairs",
			Help:      "Matched prediction/observation pairs per validation run.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}),
		ObservationFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "surfcast",
			Name:      "observation_fetch_duration_seconds",
			Help:      "Duration of one shore's observation fetch.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ObservationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surfcast",
			Name:      "observation_cache_total",
			Help:      "Observation cache lookups by result.",
		}, []string{"result"}),
	}
}
