// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/BaSui01/onboardflow/types"
	"github.com/BaSui01/onboardflow/workflow"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 指标收集器。同时实现 store.Observer、extraction.Observer、
// extraction.CacheObserver、workflow.Observer 与 session.Observer。
type Collector struct {
	// HTTP 指标
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpResponseSize    *prometheus.HistogramVec

	// 抽取指标
	extractionRequests *prometheus.CounterVec
	extractionDuration prometheus.Histogram

	// 存储指标
	storeOperations *prometheus.CounterVec
	storeDuration   *prometheus.HistogramVec

	// 工作流指标
	workflowTransitions *prometheus.CounterVec
	recordsCommitted    prometheus.Counter

	// 会话指标
	sessionsActive prometheus.Gauge
	sessionEvents  *prometheus.CounterVec
	sessionLatency *prometheus.HistogramVec

	// 缓存指标
	cacheLookups *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器并注册到默认 Registry
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	return NewCollectorWith(prometheus.DefaultRegisterer, namespace, logger)
}

// NewCollectorWith 创建指标收集器并注册到 reg
func NewCollectorWith(reg prometheus.Registerer, namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	c.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	c.httpResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	c.extractionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_requests_total",
			Help:      "Total number of extraction calls by outcome",
		},
		[]string{"status"},
	)
	c.extractionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Extraction call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	c.storeOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of record store operations",
		},
		[]string{"backend", "op", "status"},
	)
	c.storeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Record store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	c.workflowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_transitions_total",
			Help:      "Total number of onboarding state transitions",
		},
		[]string{"from", "to"},
	)
	c.recordsCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_committed_total",
			Help:      "Total number of committed employee records",
		},
	)

	c.sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live sessions",
		},
	)
	c.sessionEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Total number of session events by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
	c.sessionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_event_duration_seconds",
			Help:      "Time spent handling one session event",
			Buckets:   []float64{0.005, 0.05, 0.25, 1, 5, 30},
		},
		[]string{"kind"},
	)

	c.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Total number of cache lookups by result",
		},
		[]string{"cache", "result"},
	)

	reg.MustRegister(
		c.httpRequestsTotal, c.httpRequestDuration, c.httpResponseSize,
		c.extractionRequests, c.extractionDuration,
		c.storeOperations, c.storeDuration,
		c.workflowTransitions, c.recordsCommitted,
		c.sessionsActive, c.sessionEvents, c.sessionLatency,
		c.cacheLookups,
	)

	c.logger.Info("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// =============================================================================
// 🎯 HTTP 指标记录
// =============================================================================

// RecordHTTPRequest 记录 HTTP 请求
func (c *Collector) RecordHTTPRequest(method, path string, status int, duration time.Duration, responseSize int64) {
	c.httpRequestsTotal.WithLabelValues(method, path, statusCode(status)).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	c.httpResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// =============================================================================
// 🧾 领域指标记录
// =============================================================================

// ObserveExtraction 实现 extraction.Observer
func (c *Collector) ObserveExtraction(outcome string, duration time.Duration) {
	c.extractionRequests.WithLabelValues(outcome).Inc()
	c.extractionDuration.Observe(duration.Seconds())
}

// ObserveStoreOp 实现 store.Observer
func (c *Collector) ObserveStoreOp(backend, op, status string, duration time.Duration) {
	c.storeOperations.WithLabelValues(backend, op, status).Inc()
	c.storeDuration.WithLabelValues(backend, op).Observe(duration.Seconds())
}

// ObserveCacheLookup 实现 extraction.CacheObserver
func (c *Collector) ObserveCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(cache, result).Inc()
}

// OnTransition 实现 workflow.Observer
func (c *Collector) OnTransition(_ context.Context, _ string, t workflow.Transition) {
	c.workflowTransitions.WithLabelValues(string(t.From.Kind), string(t.To.Kind)).Inc()
}

// OnCommit 实现 workflow.Observer
func (c *Collector) OnCommit(context.Context, string, types.EmployeeRecord) {
	c.recordsCommitted.Inc()
}

// SessionsActive 实现 session.Observer
func (c *Collector) SessionsActive(n int) {
	c.sessionsActive.Set(float64(n))
}

// ObserveEvent 实现 session.Observer
func (c *Collector) ObserveEvent(kind workflow.EventKind, outcome string, d time.Duration) {
	c.sessionEvents.WithLabelValues(string(kind), outcome).Inc()
	c.sessionLatency.WithLabelValues(string(kind)).Observe(d.Seconds())
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

// statusCode 将 HTTP 状态码转换为字符串
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
