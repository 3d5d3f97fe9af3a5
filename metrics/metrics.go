package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "yt_notes"

var (
	metricsOnce               sync.Once
	transcriptFetchesTotal    *prometheus.CounterVec
	transcriptFetchSeconds    *prometheus.HistogramVec
	stageRunsTotal            *prometheus.CounterVec
	stageDurationSeconds      *prometheus.HistogramVec
	cacheLookupsTotal         *prometheus.CounterVec
	httpRequestsTotal         *prometheus.CounterVec
	httpRequestDurationSecond *prometheus.HistogramVec
)

func initMetrics() {
	metricsOnce.Do(func() {
		transcriptFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "transcript",
			Name:      "fetches_total",
			Help:      "Upstream transcript fetches by provider and outcome",
		}, []string{"provider", "status"})

		transcriptFetchSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "transcript",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of upstream transcript fetches, excluding the throttle pause",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"})

		stageRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_runs_total",
			Help:      "Pipeline stage executions by outcome",
		}, []string{"stage", "status"})

		stageDurationSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of model calls per stage",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		}, []string{"stage"})

		cacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Session cache lookups by kind and result",
		}, []string{"kind", "result"})

		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"method", "route", "code"})

		httpRequestDurationSecond = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"})
	})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func ObserveTranscriptFetch(provider string, d time.Duration, err error) {
	initMetrics()
	transcriptFetchesTotal.WithLabelValues(provider, status(err)).Inc()
	transcriptFetchSeconds.WithLabelValues(provider).Observe(d.Seconds())
}

func ObserveStage(stage string, d time.Duration, err error) {
	initMetrics()
	stageRunsTotal.WithLabelValues(stage, status(err)).Inc()
	stageDurationSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

func ObserveCacheLookup(kind string, hit bool) {
	initMetrics()
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

func ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	initMetrics()
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	httpRequestDurationSecond.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	initMetrics()
	return promhttp.Handler()
}
