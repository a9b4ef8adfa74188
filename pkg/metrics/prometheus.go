// Package metrics provides Prometheus metrics for the pitwall coaching service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every pitwall collector.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Telemetry
	telemetryFrames *prometheus.CounterVec
	replayLoads     *prometheus.CounterVec
	replayFrames    prometheus.Gauge

	// Advisory pipeline
	nanoEvents          prometheus.Counter
	coachRequests       *prometheus.CounterVec
	coachLatency        prometheus.Histogram
	advisoriesByAgent   *prometheus.CounterVec
	advisoryQueueDrops  prometheus.Counter
	speechUtterances    *prometheus.CounterVec
	speechSuppressed    *prometheus.CounterVec
	debriefs            *prometheus.CounterVec
	debriefLatency      prometheus.Histogram
	sessionActive       prometheus.Gauge
	sessionsStarted     prometheus.Counter
	feedClients         prometheus.Gauge
	feedDroppedMessages prometheus.Counter
	advisoryQueueLength prometheus.Gauge

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpErrors          *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pitwall",
		subsystem:        "coach",
		histogramBuckets: []float64{10, 50, 100, 250, 500, 1000, 2000, 4000, 8000, 16000},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one block per collector
	auto := promauto.With(m.registry)

	m.telemetryFrames = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "telemetry_frames_total",
		Help:      "Telemetry frames produced, by source mode",
	}, []string{"mode"})

	m.replayLoads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_loads_total",
		Help:      "CSV replay ingestion attempts, by outcome",
	}, []string{"outcome"})

	m.replayFrames = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_frames",
		Help:      "Frames in the installed replay buffer (0 when synthetic)",
	})

	m.nanoEvents = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "nano_events_total",
		Help:      "Driving events emitted by the edge detector",
	})

	m.coachRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "coach_requests_total",
		Help:      "Coaching requests by outcome (live, mock, timeout, client_error, network_warning, skipped_busy, none)",
	}, []string{"outcome"})

	m.coachLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "coach_latency_milliseconds",
		Help:      "Time spent producing a coaching advisory",
		Buckets:   m.histogramBuckets,
	})

	m.advisoriesByAgent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "advisories_dispatched_total",
		Help:      "Advisories dispatched to the log, by agent and priority",
	}, []string{"agent", "priority"})

	m.advisoryQueueDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "advisory_queue_drops_total",
		Help:      "Advisories rejected because the dispatch queue was full or closed",
	})

	m.speechUtterances = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "speech_utterances_total",
		Help:      "Utterances handed to the speaker, by agent",
	}, []string{"agent"})

	m.speechSuppressed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "speech_suppressed_total",
		Help:      "Advisories not spoken, by reason",
	}, []string{"reason"})

	m.debriefs = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "debriefs_total",
		Help:      "Session debriefs by outcome (live, mock, failed, skipped)",
	}, []string{"outcome"})

	m.debriefLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "debrief_latency_milliseconds",
		Help:      "Time spent producing a session debrief",
		Buckets:   m.histogramBuckets,
	})

	m.sessionActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "session_active",
		Help:      "1 while a session is running",
	})

	m.sessionsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "sessions_started_total",
		Help:      "Sessions started",
	})

	m.feedClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_clients",
		Help:      "Connected websocket feed clients",
	})

	m.feedDroppedMessages = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "feed_dropped_messages_total",
		Help:      "Feed messages dropped for slow clients",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"endpoint", "method", "status_code"})

	m.advisoryQueueLength = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "advisory_queue_length",
		Help:      "Advisories waiting for the dispatcher",
	})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Average GC pause in milliseconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50},
	})

	m.httpErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_errors_total",
		Help:      "HTTP error responses by endpoint, type and severity",
	}, []string{"endpoint", "error_type", "severity"})
}

// RecordTelemetryFrame counts a produced frame for mode ("synthetic" or "replay").
func RecordTelemetryFrame(mode string) {
	globalManager.telemetryFrames.WithLabelValues(mode).Inc()
}

// RecordReplayLoad counts an ingestion attempt and sets the buffer gauge.
func RecordReplayLoad(ok bool, frames int) {
	if !ok {
		globalManager.replayLoads.WithLabelValues("failed").Inc()
		return
	}
	globalManager.replayLoads.WithLabelValues("ok").Inc()
	globalManager.replayFrames.Set(float64(frames))
}

// ClearReplayFrames resets the replay buffer gauge.
func ClearReplayFrames() {
	globalManager.replayFrames.Set(0)
}

// RecordNanoEvent counts an emitted edge event.
func RecordNanoEvent() {
	globalManager.nanoEvents.Inc()
}

// RecordCoachRequest counts a coaching request outcome.
func RecordCoachRequest(outcome string) {
	globalManager.coachRequests.WithLabelValues(outcome).Inc()
}

// RecordCoachLatency observes coaching latency in milliseconds.
func RecordCoachLatency(latencyMs float64) {
	globalManager.coachLatency.Observe(latencyMs)
}

// RecordAdvisoryDispatched counts an advisory appended to the log.
func RecordAdvisoryDispatched(agent, priority string) {
	globalManager.advisoriesByAgent.WithLabelValues(agent, priority).Inc()
}

// RecordAdvisoryQueueDrop counts an advisory that could not be queued.
func RecordAdvisoryQueueDrop() {
	globalManager.advisoryQueueDrops.Inc()
}

// RecordSpeechUtterance counts an utterance handed to the speaker.
func RecordSpeechUtterance(agent string) {
	globalManager.speechUtterances.WithLabelValues(agent).Inc()
}

// RecordSpeechSuppressed counts a suppressed utterance.
func RecordSpeechSuppressed(reason string) {
	globalManager.speechSuppressed.WithLabelValues(reason).Inc()
}

// RecordDebrief counts a debrief outcome and observes its latency.
func RecordDebrief(outcome string, latencyMs float64) {
	globalManager.debriefs.WithLabelValues(outcome).Inc()
	if latencyMs > 0 {
		globalManager.debriefLatency.Observe(latencyMs)
	}
}

// SetSessionActive flips the session gauge.
func SetSessionActive(active bool) {
	if active {
		globalManager.sessionActive.Set(1)
		globalManager.sessionsStarted.Inc()
		return
	}
	globalManager.sessionActive.Set(0)
}

// UpdateFeedClients sets the connected feed client count.
func UpdateFeedClients(count int) {
	globalManager.feedClients.Set(float64(count))
}

// RecordFeedDrop counts a message dropped for a slow feed client.
func RecordFeedDrop() {
	globalManager.feedDroppedMessages.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordHTTPError counts an error response.
func RecordHTTPError(endpoint, errorType, severity string) {
	globalManager.httpErrors.WithLabelValues(endpoint, errorType, severity).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// UpdateAdvisoryQueueLength sets the advisory queue depth.
func UpdateAdvisoryQueueLength(n int) {
	globalManager.advisoryQueueLength.Set(float64(n))
}

// UpdateSystemMemoryUsage sets the allocated heap size.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime observes an average GC pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}
