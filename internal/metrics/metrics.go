package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "trailhead"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	contentWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_writes_total",
			Help:      "Successful catalog writes by entity and action.",
		},
		[]string{"entity", "action"},
	)

	decodeFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_fallbacks_total",
			Help:      "Stored JSON columns that were read back as empty.",
		},
		[]string{"entity", "field"},
	)

	backups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Database backups by result.",
		},
		[]string{"result"},
	)

	syncTasks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_tasks_total",
			Help:      "Sheets mirror tasks by outcome.",
		},
		[]string{"status"},
	)

	formActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_actions_total",
			Help:      "Admin form actions by name and result.",
		},
		[]string{"action", "result"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, contentWrites, decodeFallbacks, backups, syncTasks, formActions)
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(route string, code int, elapsed time.Duration) {
	httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func IncContentWrite(entity, action string) {
	contentWrites.WithLabelValues(entity, action).Inc()
}

func IncDecodeFallback(entity, field string) {
	decodeFallbacks.WithLabelValues(entity, field).Inc()
}

func IncBackup(result string) {
	backups.WithLabelValues(result).Inc()
}

func IncSyncTask(status string) {
	syncTasks.WithLabelValues(status).Inc()
}

func IncFormAction(action, result string) {
	formActions.WithLabelValues(action, result).Inc()
}
