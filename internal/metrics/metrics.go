// Package metrics provides the centralized Prometheus metrics registry
// for the analyzer.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	ReportsParsedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gbx_analyzer",
		Name:      "reports_parsed_total",
		Help:      "Total number of report files decoded successfully",
	})
	ParseFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gbx_analyzer",
		Name:      "parse_failures_total",
		Help:      "Total number of report files rejected by the decoder",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gbx_analyzer",
		Name:      "cache_hits_total",
		Help:      "Total number of reports served from the parse cache",
	})
	StrategiesPassedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gbx_analyzer",
		Name:      "strategies_passed_total",
		Help:      "Total number of strategies that passed the rule set",
	}, []string{"group"})
	StrategiesFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gbx_analyzer",
		Name:      "strategies_failed_total",
		Help:      "Total number of strategies that failed the rule set",
	}, []string{"group"})
	BatchRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gbx_analyzer",
		Name:      "batch_runs_total",
		Help:      "Total number of batch filter runs",
	})
)

// Gauge metrics
var (
	LastBatchStrategies = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gbx_analyzer",
		Name:      "last_batch_strategies",
		Help:      "Number of strategies processed in the last batch",
	})
	LastBatchPassRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gbx_analyzer",
		Name:      "last_batch_pass_rate",
		Help:      "Fraction of strategies that passed in the last batch",
	})
)

// Histogram metrics
var (
	ReportParseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gbx_analyzer",
		Name:      "report_parse_duration_seconds",
		Help:      "Duration of single report decoding in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gbx_analyzer",
		Name:      "batch_duration_seconds",
		Help:      "Duration of full batch runs in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(ReportsParsedTotal)
		registry.MustRegister(ParseFailuresTotal)
		registry.MustRegister(CacheHitsTotal)
		registry.MustRegister(StrategiesPassedTotal)
		registry.MustRegister(StrategiesFailedTotal)
		registry.MustRegister(BatchRunsTotal)

		registry.MustRegister(LastBatchStrategies)
		registry.MustRegister(LastBatchPassRate)

		registry.MustRegister(ReportParseDuration)
		registry.MustRegister(BatchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
