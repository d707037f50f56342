package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Booking metrics
	AppointmentsCreated   prometheus.Counter
	AppointmentsRejected  *prometheus.CounterVec
	AppointmentsCancelled prometheus.Counter
	NotificationFailures  prometheus.Counter
	EnqueueFailures       prometheus.Counter

	// Job metrics
	JobsProcessed     *prometheus.CounterVec
	JobsFailed        *prometheus.CounterVec
	JobsDeadLettered  *prometheus.CounterVec
	JobRetries        *prometheus.CounterVec
	JobProcessingTime *prometheus.HistogramVec
	QueueDepth        prometheus.Gauge
}

// NewMetrics creates and registers all application metrics on reg. A nil
// registerer yields unregistered collectors, which is what tests want.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		AppointmentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "created_total",
			Help:      "Total number of appointments booked",
		}),
		AppointmentsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "rejected_total",
			Help:      "Booking and cancellation attempts rejected by a business rule",
		}, []string{"reason"}),
		AppointmentsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "cancelled_total",
			Help:      "Total number of appointments cancelled",
		}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "notification_failures_total",
			Help:      "Provider notifications that could not be stored",
		}),
		EnqueueFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "appointments",
			Name:      "enqueue_failures_total",
			Help:      "Cancellation jobs that could not be queued",
		}),

		JobsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "processed_total",
			Help:      "Total number of successfully processed jobs",
		}, []string{"key"}),
		JobsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "failed_total",
			Help:      "Total number of failed job attempts",
		}, []string{"key"}),
		JobsDeadLettered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "dead_lettered_total",
			Help:      "Jobs moved to the dead letter list after exhausting retries",
		}, []string{"key"}),
		JobRetries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "retry_attempts_total",
			Help:      "Total number of retry attempts",
		}, []string{"key"}),
		JobProcessingTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "processing_duration_seconds",
			Help:      "Time spent processing jobs",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"key"}),
		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "queue_depth",
			Help:      "Current number of jobs waiting in the queue",
		}),
	}
}

// Nop returns unregistered metrics.
func Nop() *Metrics {
	return NewMetrics("booking", nil)
}
