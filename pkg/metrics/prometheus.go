// Package metrics provides Prometheus metrics for the ranker service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace string
	registry  prometheus.Registerer

	// Submission path
	submissionsTotal   prometheus.Counter
	personalBestsTotal prometheus.Counter
	submissionErrors   *prometheus.CounterVec

	// Ranking index
	indexUpdateLatency prometheus.Histogram
	indexQueryLatency  prometheus.Histogram
	rankedUsers        *prometheus.GaugeVec

	// Rebuild
	rebuildsTotal   prometheus.Counter
	rebuildDuration prometheus.Histogram
	rebuildLastUnix prometheus.Gauge

	// Deferred index update queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueTotal  prometheus.Counter
	queueDequeueTotal  prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Retry workers
	workerCount        prometheus.Gauge
	workerRetriesTotal prometheus.Counter
	workerErrorsTotal  prometheus.Counter
	workerLatency      prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Cross-cutting errors
	errorsByComponent *prometheus.CounterVec
}

// Global manager backed by a custom registry so the default Go collectors
// do not leak into /healthz output.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "ranker",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}

	factory := promauto.With(m.registry)

	m.submissionsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "score_submissions_total",
		Help:      "Total score submissions accepted into the score log.",
	})
	m.personalBestsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "personal_bests_total",
		Help:      "Submissions that beat the user's prior best for the game.",
	})
	m.submissionErrors = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "submission_errors_total",
		Help:      "Rejected or failed submissions by reason.",
	}, []string{"reason"})

	m.indexUpdateLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "index_update_latency_ms",
		Help:      "Latency of ranking index writes in milliseconds.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
	})
	m.indexQueryLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "index_query_latency_ms",
		Help:      "Latency of ranking index reads in milliseconds.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 10, 50, 100, 500},
	})
	m.rankedUsers = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "ranked_users",
		Help:      "Distinct ranked users per leaderboard keyspace.",
	}, []string{"board"})

	m.rebuildsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rebuilds_total",
		Help:      "Completed leaderboard rebuilds from the score log.",
	})
	m.rebuildDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "rebuild_duration_ms",
		Help:      "Duration of leaderboard rebuilds in milliseconds.",
		Buckets:   []float64{1, 10, 100, 1000, 10000, 60000},
	})
	m.rebuildLastUnix = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "rebuild_last_unix",
		Help:      "Unix timestamp of the last completed rebuild.",
	})

	m.queueSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "retry_queue_size",
		Help:      "Deferred index updates currently queued.",
	})
	m.queueCapacity = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "retry_queue_capacity",
		Help:      "Capacity of the deferred index update queue.",
	})
	m.queueUtilization = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "retry_queue_utilization",
		Help:      "Fill ratio of the deferred index update queue.",
	})
	m.queueEnqueueTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "retry_queue_enqueue_total",
		Help:      "Deferred index updates enqueued.",
	})
	m.queueDequeueTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "retry_queue_dequeue_total",
		Help:      "Deferred index updates dequeued by workers.",
	})
	m.queueEnqueueErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "retry_queue_enqueue_errors_total",
		Help:      "Deferred index updates dropped at enqueue time.",
	})

	m.workerCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "retry_workers",
		Help:      "Number of retry workers.",
	})
	m.workerRetriesTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "retry_attempts_total",
		Help:      "Re-attempts of deferred index updates.",
	})
	m.workerErrorsTotal = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "retry_errors_total",
		Help:      "Deferred index updates that exhausted their retry budget.",
	})
	m.workerLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "retry_processing_latency_ms",
		Help:      "Latency of deferred index update processing in milliseconds.",
		Buckets:   []float64{0.1, 1, 10, 100, 1000},
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000},
	}, []string{"endpoint", "method", "status"})

	m.errorsByComponent = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "errors_total",
		Help:      "Errors by component and type.",
	}, []string{"component", "type"})

	return m
}

// GetRegistry returns the custom registry served on /healthz.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers against the global manager.

func RecordSubmission()   { globalManager.submissionsTotal.Inc() }
func RecordPersonalBest() { globalManager.personalBestsTotal.Inc() }
func RecordSubmissionError(reason string) {
	globalManager.submissionErrors.WithLabelValues(reason).Inc()
}

func RecordIndexUpdateLatency(ms float64) { globalManager.indexUpdateLatency.Observe(ms) }
func RecordIndexQueryLatency(ms float64)  { globalManager.indexQueryLatency.Observe(ms) }
func UpdateRankedUsers(board string, n int64) {
	globalManager.rankedUsers.WithLabelValues(board).Set(float64(n))
}

func RecordRebuild(durationMs float64) {
	globalManager.rebuildsTotal.Inc()
	globalManager.rebuildDuration.Observe(durationMs)
}
func UpdateRebuildLastUnix(ts float64) { globalManager.rebuildLastUnix.Set(ts) }

func UpdateQueueSize(size int)             { globalManager.queueSize.Set(float64(size)) }
func UpdateQueueCapacity(capacity int)     { globalManager.queueCapacity.Set(float64(capacity)) }
func UpdateQueueUtilization(ratio float64) { globalManager.queueUtilization.Set(ratio) }
func RecordQueueEnqueue()                  { globalManager.queueEnqueueTotal.Inc() }
func RecordQueueDequeue()                  { globalManager.queueDequeueTotal.Inc() }
func RecordQueueEnqueueError()             { globalManager.queueEnqueueErrors.Inc() }

func UpdateWorkerCount(count int)              { globalManager.workerCount.Set(float64(count)) }
func RecordWorkerRetry()                       { globalManager.workerRetriesTotal.Inc() }
func RecordWorkerError()                       { globalManager.workerErrorsTotal.Inc() }
func RecordWorkerProcessingLatency(ms float64) { globalManager.workerLatency.Observe(ms) }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func RecordErrorByComponent(component, errType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errType).Inc()
}
