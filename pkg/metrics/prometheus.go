// Package metrics provides Prometheus metrics for the faceoff voting service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector exported by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Voting
	votesRecorded      prometheus.Counter
	votesRejected      *prometheus.CounterVec
	pairsServed        prometheus.Counter
	leaderboardBuilds  prometheus.Counter
	leaderboardLatency prometheus.Histogram

	// State size
	catalogItems prometheus.Gauge
	matchupCount prometheus.Gauge
	stateVersion prometheus.Gauge
	ratingSpread prometheus.Gauge

	// Persistence pipeline
	persistQueueSize     prometheus.Gauge
	persistQueueCapacity prometheus.Gauge
	persistDropped       prometheus.Counter
	persistWrites        prometheus.Counter
	persistSkipped       prometheus.Counter
	persistErrors        prometheus.Counter
	persistLatency       prometheus.Histogram
	persistLastSuccess   prometheus.Gauge
	persistWorkers       prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec
	errorsByComponent   *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry keeps default Go collectors out of /healthz.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "faceoff",
		subsystem:        "voting",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.votesRecorded = m.counter("votes_recorded_total", "Total number of votes applied to ratings and the matchup ledger")
	m.votesRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "votes_rejected_total",
		Help:      "Total number of rejected votes by reason",
	}, []string{"reason"})
	m.pairsServed = m.counter("pairs_served_total", "Total number of pairs handed out for voting")
	m.leaderboardBuilds = m.counter("leaderboard_builds_total", "Total number of leaderboard computations")
	m.leaderboardLatency = m.histogram("leaderboard_build_latency_milliseconds", "Leaderboard computation latency in milliseconds", m.histogramBuckets)

	m.catalogItems = m.gauge("catalog_items", "Number of votable items in the catalog")
	m.matchupCount = m.gauge("matchups", "Number of distinct pairs with at least one vote")
	m.stateVersion = m.gauge("state_version", "Monotonic version of the in-memory voting state")
	m.ratingSpread = m.gauge("rating_spread", "Difference between the highest and lowest rating")

	m.persistQueueSize = m.gauge("persist_queue_size", "Snapshots waiting to be written")
	m.persistQueueCapacity = m.gauge("persist_queue_capacity", "Maximum number of snapshots the persistence queue holds")
	m.persistDropped = m.counter("persist_dropped_total", "Snapshots dropped because the persistence queue was full or closed")
	m.persistWrites = m.counter("persist_writes_total", "Snapshots durably written")
	m.persistSkipped = m.counter("persist_skipped_total", "Snapshots skipped because a newer one was already written")
	m.persistErrors = m.counter("persist_errors_total", "Snapshot writes that failed")
	m.persistLatency = m.histogram("persist_latency_milliseconds", "Snapshot write latency in milliseconds", m.histogramBuckets)
	m.persistLastSuccess = m.gauge("persist_last_success_unix", "Unix timestamp of the last successful snapshot write")
	m.persistWorkers = m.gauge("persist_workers", "Number of persistence workers")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_endpoint_total",
		Help:      "Total number of error responses by endpoint",
	}, []string{"endpoint", "method", "error_type"})
	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by component",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "Average GC pause time in milliseconds", m.histogramBuckets)
}

// RecordVote increments the recorded votes counter.
func RecordVote() { globalManager.votesRecorded.Inc() }

// RecordVoteRejected increments the rejected votes counter for reason.
func RecordVoteRejected(reason string) { globalManager.votesRejected.WithLabelValues(reason).Inc() }

// RecordPairServed increments the served pairs counter.
func RecordPairServed() { globalManager.pairsServed.Inc() }

// RecordLeaderboardBuild counts one leaderboard computation and its latency.
func RecordLeaderboardBuild(latencyMs float64) {
	globalManager.leaderboardBuilds.Inc()
	globalManager.leaderboardLatency.Observe(latencyMs)
}

// UpdateCatalogItems sets the catalog size.
func UpdateCatalogItems(n int) { globalManager.catalogItems.Set(float64(n)) }

// UpdateMatchupCount sets the number of pair records.
func UpdateMatchupCount(n int) { globalManager.matchupCount.Set(float64(n)) }

// UpdateStateVersion sets the in-memory state version.
func UpdateStateVersion(v uint64) { globalManager.stateVersion.Set(float64(v)) }

// UpdateRatingSpread sets the max-min rating difference.
func UpdateRatingSpread(spread float64) { globalManager.ratingSpread.Set(spread) }

// UpdatePersistQueueSize sets the persistence backlog.
func UpdatePersistQueueSize(n int) { globalManager.persistQueueSize.Set(float64(n)) }

// UpdatePersistQueueCapacity sets the persistence queue bound.
func UpdatePersistQueueCapacity(n int) { globalManager.persistQueueCapacity.Set(float64(n)) }

// RecordPersistDropped counts a snapshot that never reached the queue.
func RecordPersistDropped() { globalManager.persistDropped.Inc() }

// RecordPersistWrite counts a successful snapshot write.
func RecordPersistWrite(latencyMs float64) {
	globalManager.persistWrites.Inc()
	globalManager.persistLatency.Observe(latencyMs)
	globalManager.persistLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordPersistSkipped counts a stale snapshot that was not written.
func RecordPersistSkipped() { globalManager.persistSkipped.Inc() }

// RecordPersistError counts a failed snapshot write.
func RecordPersistError() { globalManager.persistErrors.Inc() }

// UpdatePersistWorkers sets the persistence worker count.
func UpdatePersistWorkers(n int) { globalManager.persistWorkers.Set(float64(n)) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByEndpoint records an error response for an endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets heap allocation in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
