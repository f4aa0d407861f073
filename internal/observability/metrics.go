package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	requestsTotal  *prometheus.CounterVec
	latencySeconds *prometheus.HistogramVec
	errorsTotal    *prometheus.CounterVec

	doubtsSubmittedTotal         prometheus.Counter
	doubtsResolvedTotal          *prometheus.CounterVec
	notificationsDispatched      *prometheus.CounterVec
	notificationTargets          prometheus.Histogram
	statsRecomputeTotal          *prometheus.CounterVec
	dispatchPublishFailuresTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manan_requests_total",
			Help: "Total number of faculty and admin API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "manan_latency_seconds",
			Help:    "Latency distribution for faculty and admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manan_errors_total",
			Help: "Total number of error responses returned by faculty and admin endpoints.",
		}, []string{"method", "route", "status"})

		doubtsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "doubts_submitted_total",
			Help: "Number of doubts raised by students.",
		})

		doubtsResolvedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "doubts_resolved_total",
			Help: "Resolve attempts partitioned by outcome.",
		}, []string{"outcome"})

		notificationsDispatched = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_dispatched_total",
			Help: "Notifications persisted, partitioned by source and type.",
		}, []string{"source", "type"})

		notificationTargets = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "notification_targets",
			Help:    "Recipient count of targeted notifications.",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		})

		statsRecomputeTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stats_recompute_total",
			Help: "Faculty stats reads and refreshes, partitioned by cache result.",
		}, []string{"cache"})

		dispatchPublishFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notification_publish_failures_total",
			Help: "Dispatch events that could not be handed to a broker.",
		}, []string{"broker"})

		prometheus.MustRegister(
			requestsTotal,
			latencySeconds,
			errorsTotal,
			doubtsSubmittedTotal,
			doubtsResolvedTotal,
			notificationsDispatched,
			notificationTargets,
			statsRecomputeTotal,
			dispatchPublishFailuresTotal,
		)
	})
}

// Requests exposes the request counter.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the request latency histogram.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the error response counter.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// DoubtsSubmitted counts new doubts.
func DoubtsSubmitted() prometheus.Counter {
	RegisterMetrics()
	return doubtsSubmittedTotal
}

// DoubtsResolved counts resolve attempts by outcome.
func DoubtsResolved() *prometheus.CounterVec {
	RegisterMetrics()
	return doubtsResolvedTotal
}

// NotificationsDispatched counts persisted notifications.
func NotificationsDispatched() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsDispatched
}

// NotificationTargets observes targeted audience sizes.
func NotificationTargets() prometheus.Histogram {
	RegisterMetrics()
	return notificationTargets
}

// StatsRecompute counts stats cache hits, misses and refreshes.
func StatsRecompute() *prometheus.CounterVec {
	RegisterMetrics()
	return statsRecomputeTotal
}

// DispatchPublishFailures counts broker hand-off failures.
func DispatchPublishFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return dispatchPublishFailuresTotal
}
