package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymrace_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// BackendWriteFailures counts best-effort writes that failed and were swallowed.
	BackendWriteFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymrace_backend_write_failures_total",
		Help: "Best-effort backend writes that failed, by operation",
	}, []string{"operation"})

	// ChallengesCompleted counts challenges that reached their target.
	ChallengesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gymrace_challenges_completed_total",
		Help: "Challenges that transitioned to COMPLETED",
	})

	// WorkoutTransitions counts workout state machine transitions by target state.
	WorkoutTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gymrace_workout_transitions_total",
		Help: "Workout session transitions by target state",
	}, []string{"state"})

	// ActiveWorkoutSessions is the number of live workout sessions.
	ActiveWorkoutSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gymrace_active_workout_sessions",
		Help: "Number of live workout sessions",
	})

	// ActiveChallengeStreams is the number of open challenge WebSocket streams.
	ActiveChallengeStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gymrace_active_challenge_streams",
		Help: "Number of open challenge WebSocket streams",
	})

	// CatalogMissingMedia is the number of exercises dropped for unresolved media at load.
	CatalogMissingMedia = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gymrace_catalog_missing_media",
		Help: "Exercises dropped from the catalog because their media did not resolve",
	})
)
