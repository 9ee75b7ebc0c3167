package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every collector this service exposes.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	scoreStartedTotal = factory.NewCounter(prometheus.CounterOpts{
		Name: "ats_score_started_total",
		Help: "Total score requests started",
	})
	scoreCompletedTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "ats_score_completed_total",
		Help: "Total score requests completed, by report source",
	}, []string{"source"})
	scoreFailedTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "ats_score_failed_total",
		Help: "Total score requests failed, by reason",
	}, []string{"reason"})
	scoreDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "ats_score_duration_seconds",
		Help:    "Time to produce a score report",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
	scoreValue = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "ats_score_value",
		Help:    "Distribution of overall ATS scores",
		Buckets: prometheus.LinearBuckets(10, 10, 10),
	})
	cacheRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "ats_cache_requests_total",
		Help: "Report cache lookups, by result",
	}, []string{"result"})
	extractTotal = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "ats_extract_total",
		Help: "Uploaded documents converted to text, by kind and outcome",
	}, []string{"kind", "outcome"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Report sources for IncScoreCompleted.
const (
	SourceEngine = "engine"
	SourceCache  = "cache"
)

// IncScoreStarted increments the started counter.
func IncScoreStarted() {
	scoreStartedTotal.Inc()
}

// IncScoreCompleted increments the completed counter for source.
func IncScoreCompleted(source string) {
	scoreCompletedTotal.WithLabelValues(source).Inc()
}

// IncScoreFailed increments the failed counter for reason.
func IncScoreFailed(reason string) {
	scoreFailedTotal.WithLabelValues(reason).Inc()
}

// ObserveScoreDuration records how long a score took.
func ObserveScoreDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	scoreDuration.Observe(d.Seconds())
}

// ObserveScore records an overall score.
func ObserveScore(score int) {
	scoreValue.Observe(float64(score))
}

// IncCacheHit counts a report cache hit.
func IncCacheHit() {
	cacheRequestsTotal.WithLabelValues("hit").Inc()
}

// IncCacheMiss counts a report cache miss.
func IncCacheMiss() {
	cacheRequestsTotal.WithLabelValues("miss").Inc()
}

// IncCacheError counts a cache lookup or write that failed.
func IncCacheError() {
	cacheRequestsTotal.WithLabelValues("error").Inc()
}

// IncExtract counts a document extraction attempt.
func IncExtract(kind, outcome string) {
	extractTotal.WithLabelValues(kind, outcome).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
