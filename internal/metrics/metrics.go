// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request latency (seconds)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keepstreak_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Completion mutations by operation and outcome
	MutationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keepstreak_mutations_total",
			Help: "Total number of completion mutations",
		},
		[]string{"operation", "status"}, // operation: record, adjust, clear
	)

	// Achievement evaluation latency (seconds)
	EvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "keepstreak_evaluation_duration_seconds",
			Help:    "Achievement evaluation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"status"},
	)

	AchievementsUnlocked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keepstreak_achievements_unlocked_total",
			Help: "Total number of achievements unlocked",
		},
		[]string{"achievement_id"},
	)

	// Evaluation failures by stage: load, rule, persist, publish, async
	EvaluationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "keepstreak_evaluation_errors_total",
			Help: "Total number of achievement evaluation failures",
		},
		[]string{"stage"},
	)
)

// RecordHTTPRequestDuration records one served request
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementMutation counts a completion mutation
func IncrementMutation(operation string, err error) {
	MutationCount.WithLabelValues(operation, status(err)).Inc()
}

// RecordEvaluation records how long one evaluation pass took
func RecordEvaluation(duration time.Duration, err error) {
	EvaluationDuration.WithLabelValues(status(err)).Observe(duration.Seconds())
}

// IncrementUnlocked counts a newly created unlock
func IncrementUnlocked(achievementID string) {
	AchievementsUnlocked.WithLabelValues(achievementID).Inc()
}

// IncrementEvaluationError counts an isolated evaluation failure
func IncrementEvaluationError(stage string) {
	EvaluationErrors.WithLabelValues(stage).Inc()
}

func status(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}
