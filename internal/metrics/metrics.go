package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	admissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innbook",
			Name:      "admissions_total",
			Help:      "Reservation admission decisions by outcome.",
		},
		[]string{"operation", "outcome"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innbook",
			Name:      "cache_lookups_total",
			Help:      "Read-through cache lookups by result.",
		},
		[]string{"result"},
	)

	notifyTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "innbook",
			Name:      "notify_tasks_total",
			Help:      "Notification dispatch outcomes.",
		},
		[]string{"status"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, admissions, cacheLookups, notifyTasks)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncAdmission records an admission decision, e.g. ("create", "overlap").
func IncAdmission(operation, outcome string) {
	admissions.WithLabelValues(operation, outcome).Inc()
}

// IncCache records a cache lookup result: "hit" or "miss".
func IncCache(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

// IncNotify records a notification task outcome.
func IncNotify(status string) {
	notifyTasks.WithLabelValues(status).Inc()
}
