package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "signal_forge_analysis_duration_seconds",
			Help:    "Analysis processing duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"analysis_type"},
	)

	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_forge_analyses_total",
			Help: "Total number of analyses processed",
		},
		[]string{"analysis_type"},
	)

	DriftScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signal_forge_drift_score",
			Help:    "Observed drift scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	ResonanceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signal_forge_resonance_score",
			Help:    "Observed mission resonance scores",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	AlertsOpened = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_forge_alerts_opened_total",
			Help: "Total alerts opened",
		},
		[]string{"alert_type", "severity"},
	)

	DuplicatesSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signal_forge_duplicates_skipped_total",
			Help: "Total communications skipped as duplicate fingerprints",
		},
	)

	CommunicationsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_forge_communications_ingested_total",
			Help: "Total communications ingested",
		},
		[]string{"source_type"},
	)

	InterventionsGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_forge_interventions_generated_total",
			Help: "Total stabilization interventions generated",
		},
		[]string{"intervention_type"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_forge_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_forge_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	PersistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signal_forge_persistence_failures_total",
			Help: "Total write failures after retries",
		},
		[]string{"record_type"},
	)

	StreamSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "signal_forge_stream_subscribers",
			Help: "Current alert stream subscriber count",
		},
	)
)

func Init() {
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(DriftScore)
	prometheus.MustRegister(ResonanceScore)
	prometheus.MustRegister(AlertsOpened)
	prometheus.MustRegister(DuplicatesSkipped)
	prometheus.MustRegister(CommunicationsIngested)
	prometheus.MustRegister(InterventionsGenerated)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(PersistenceFailures)
	prometheus.MustRegister(StreamSubscribers)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
