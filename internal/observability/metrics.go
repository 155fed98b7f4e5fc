package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	apiRequestsTotal        *prometheus.CounterVec
	apiLatencySeconds       *prometheus.HistogramVec
	apiErrorsTotal          *prometheus.CounterVec
	marksEntriesTotal       prometheus.Counter
	messagesSentTotal       prometheus.Counter
	notificationsTotal      *prometheus.CounterVec
	announcementCacheOps    *prometheus.CounterVec
	notificationStreamGauge prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		marksEntriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marks_entries_total",
			Help: "Total number of exam result rows written through marks entry.",
		})

		messagesSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "messages_sent_total",
			Help: "Total number of direct messages sent.",
		})

		notificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of notifications created, by type.",
		}, []string{"type"})

		announcementCacheOps = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "announcement_cache_ops_total",
			Help: "Announcement cache lookups, by outcome (hit or miss).",
		}, []string{"outcome"})

		notificationStreamGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notification_stream_clients",
			Help: "Number of currently connected notification stream subscribers.",
		})

		prometheus.MustRegister(
			apiRequestsTotal, apiLatencySeconds, apiErrorsTotal,
			marksEntriesTotal, messagesSentTotal, notificationsTotal,
			announcementCacheOps, notificationStreamGauge,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// MarksEntries exposes the counter for written exam result rows.
func MarksEntries() prometheus.Counter {
	RegisterMetrics()
	return marksEntriesTotal
}

// MessagesSent exposes the counter for sent messages.
func MessagesSent() prometheus.Counter {
	RegisterMetrics()
	return messagesSentTotal
}

// NotificationsPublished exposes the per-type notification counter.
func NotificationsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsTotal
}

// AnnouncementCache exposes the cache outcome counter.
func AnnouncementCache() *prometheus.CounterVec {
	RegisterMetrics()
	return announcementCacheOps
}

// NotificationStreamClients exposes the connected subscriber gauge.
func NotificationStreamClients() prometheus.Gauge {
	RegisterMetrics()
	return notificationStreamGauge
}
