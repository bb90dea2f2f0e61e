package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// model is "tool_guard" or "prompt_guard"
	modelLabels = []string{"model"}

	// Latency buckets in milliseconds. Classifier inference dominates, so
	// the range is tighter than a general-purpose proxy's.
	latencyBuckets = []float64{
		1, 2.5, 5, // cache hits
		10, 25, 50, // warm inference
		100, 250, 500, // cold or queued inference
		1000, 2500, 10000, // degraded sidecar
	}

	GuardRequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "triageguard_requests_total",
			Help: "Total number of guard scoring requests",
		},
		append(modelLabels, "method", "status"),
	)

	GuardRequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triageguard_latency_ms",
			Help:    "Guard request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		modelLabels,
	)

	GuardCompositeScore = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "triageguard_composite_scores_total",
			Help: "Tool guard verdicts by composite score class",
		},
		[]string{"score"},
	)

	GuardCacheHits = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "triageguard_cache_hits_total",
			Help: "Verdicts served from the result cache",
		},
		modelLabels,
	)

	ClassifierErrors = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "triageguard_classifier_errors_total",
			Help: "Failed classifier sidecar calls",
		},
		modelLabels,
	)
)

type MetricsConfig struct {
	EnableLatency bool // latency histograms
	EnableScores  bool // composite score distribution
	EnableCache   bool // cache hit counters
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency: true,
		EnableScores:  true,
		EnableCache:   true,
	}
}

var Config MetricsConfig

func Initialize(cfg MetricsConfig) {
	Config = cfg
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}
