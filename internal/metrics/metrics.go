// Package metrics - коллекторы Prometheus, общие для всех слоёв.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskflow_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// Toggles - переключения выполнения: kind = task|subtask, result = completed|undo
	Toggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_toggles_total",
			Help: "Completion toggles by kind and resulting state",
		},
		[]string{"kind", "result"},
	)

	// ActivityDropped - записи журнала, которые так и не попали в хранилище
	ActivityDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_activity_dropped_total",
			Help: "Activity log entries dropped by reason",
		},
		[]string{"reason"},
	)

	ActivityQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskflow_activity_queue_depth",
			Help: "Activity entries waiting to be written",
		},
	)

	// Insights - source = generated|cache|fallback
	Insights = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_insights_total",
			Help: "Insight responses by source",
		},
		[]string{"source"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskflow_store_errors_total",
			Help: "Storage failures swallowed by the service layer",
		},
		[]string{"operation"},
	)
)

const (
	DropQueueFull    = "queue_full"
	DropAppendFailed = "append_failed"
	DropClosed       = "closed"
)
