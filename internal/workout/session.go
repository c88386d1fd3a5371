// Package workout runs timed workout sessions over a routine's exercises.
package workout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gymrace/internal/observability"
)

// Timer bounds, in seconds.
const (
	MinSeconds     = 10
	MaxSeconds     = 120
	DefaultSeconds = 30
)

var (
	ErrInvalidTransition = errors.New("workout: invalid transition")
	ErrRoutineNotFound   = errors.New("workout: routine not found")
	ErrSessionNotFound   = errors.New("workout: session not found")
)

// State is a workout session state.
type State string

const (
	StateLoading          State = "loading"
	StateRunning          State = "running"
	StateExerciseComplete State = "exercise_complete"
	StateCompleted        State = "completed"
	StateError            State = "error"
	StateExited           State = "exited"
)

// Snapshot is a point-in-time view of a session for rendering.
type Snapshot struct {
	ID                   string    `json:"id"`
	RoutineID            string    `json:"routine_id"`
	RoutineName          string    `json:"routine_name,omitempty"`
	State                State     `json:"state"`
	Exercises            []string  `json:"exercises"`
	CurrentExerciseIndex int       `json:"current_exercise_index"`
	CurrentExercise      string    `json:"current_exercise,omitempty"`
	Series               int       `json:"series"`
	DurationSeconds      int       `json:"duration_seconds"`
	RemainingSeconds     int       `json:"remaining_seconds"`
	TimerRunning         bool      `json:"timer_running"`
	Error                string    `json:"error,omitempty"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Session is one run through a routine. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id        string
	userID    string
	routineID string
	loader    RoutineLoader

	state       State
	routineName string
	exercises   []string
	index       int
	series      int
	duration    int
	remaining   int
	running     bool
	lastErr     error
	updatedAt   time.Time

	timerStarted chan struct{}
}

// NewSession creates a session in the Loading state. defaultSeconds is
// clamped to the timer bounds.
func NewSession(id, userID, routineID string, loader RoutineLoader, defaultSeconds int) *Session {
	if defaultSeconds == 0 {
		defaultSeconds = DefaultSeconds
	}
	return &Session{
		id:        id,
		userID:    userID,
		routineID: routineID,
		loader:    loader,
		state:     StateLoading,
		duration:  clamp(defaultSeconds),
		updatedAt: time.Now(),

		timerStarted: make(chan struct{}, 1),
	}
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }

func clamp(seconds int) int {
	switch {
	case seconds < MinSeconds:
		return MinSeconds
	case seconds > MaxSeconds:
		return MaxSeconds
	}
	return seconds
}

func (s *Session) setState(next State) {
	s.state = next
	s.updatedAt = time.Now()
	observability.WorkoutTransitions.WithLabelValues(string(next)).Inc()
}

func (s *Session) invalid(op string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, op, s.state)
}

// Load fetches the routine and enters Running, or Error when the routine
// cannot be found or fetched. The loader runs without the session lock.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateLoading {
		defer s.mu.Unlock()
		return s.invalid("load")
	}
	s.mu.Unlock()

	routine, err := s.loader.Load(ctx, s.userID, s.routineID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		// Cancelled while fetching.
		return s.invalid("load")
	}
	if err == nil && (routine == nil || len(routine.ExerciseNames) == 0) {
		err = fmt.Errorf("%w: %s", ErrRoutineNotFound, s.routineID)
	}
	if err != nil {
		s.lastErr = err
		s.setState(StateError)
		return err
	}

	s.routineName = routine.Name
	s.exercises = append([]string(nil), routine.ExerciseNames...)
	s.index = 0
	s.series = 1
	s.remaining = s.duration
	s.running = false
	s.lastErr = nil
	s.setState(StateRunning)
	return nil
}

// Retry re-enters Loading from Error and loads again.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateError {
		defer s.mu.Unlock()
		return s.invalid("retry")
	}
	s.lastErr = nil
	s.setState(StateLoading)
	s.mu.Unlock()

	return s.Load(ctx)
}

// StartTimer starts the countdown. Starting a running timer is a no-op.
func (s *Session) StartTimer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return s.invalid("start timer")
	}
	if s.running {
		return nil
	}
	if s.remaining <= 0 {
		s.remaining = s.duration
	}
	s.running = true
	s.updatedAt = time.Now()
	select {
	case s.timerStarted <- struct{}{}:
	default:
	}
	return nil
}

// TimerStarted receives a value each time the countdown is started, so a
// ticker can count the first second from that moment.
func (s *Session) TimerStarted() <-chan struct{} {
	return s.timerStarted
}

func (s *Session) PauseTimer() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return s.invalid("pause timer")
	}
	s.running = false
	s.updatedAt = time.Now()
	return nil
}

// Tick advances the countdown by one second. It does nothing unless the
// timer is running; reaching zero completes the exercise. It reports
// whether the session changed.
func (s *Session) Tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning || !s.running {
		return false
	}
	s.remaining--
	s.updatedAt = time.Now()
	if s.remaining <= 0 {
		s.remaining = 0
		s.running = false
		s.setState(StateExerciseComplete)
	}
	return true
}

// AdjustTimer moves the duration by delta seconds within the bounds. The
// result becomes the duration for this and every later series.
func (s *Session) AdjustTimer(delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setDuration(s.duration+delta, "adjust timer")
}

// SetTimer sets the duration directly, clamped to the bounds.
func (s *Session) SetTimer(seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setDuration(seconds, "set timer")
}

func (s *Session) setDuration(seconds int, op string) error {
	if s.state != StateRunning && s.state != StateExerciseComplete {
		return s.invalid(op)
	}
	s.duration = clamp(seconds)
	s.remaining = s.duration
	s.updatedAt = time.Now()
	return nil
}

// MarkComplete ends the current exercise before the timer runs out.
func (s *Session) MarkComplete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateRunning {
		return s.invalid("mark complete")
	}
	s.running = false
	s.setState(StateExerciseComplete)
	return nil
}

// AnotherSeries repeats the current exercise.
func (s *Session) AnotherSeries() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateExerciseComplete {
		return s.invalid("another series")
	}
	s.series++
	s.remaining = s.duration
	s.running = false
	s.setState(StateRunning)
	return nil
}

// NextExercise moves to the next exercise, or to Completed after the last one.
func (s *Session) NextExercise() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateExerciseComplete {
		return s.invalid("next exercise")
	}
	if s.index+1 >= len(s.exercises) {
		s.running = false
		s.setState(StateCompleted)
		return nil
	}
	s.index++
	s.series = 1
	s.remaining = s.duration
	s.running = false
	s.setState(StateRunning)
	return nil
}

// Finish is NextExercise under the name the last exercise offers.
func (s *Session) Finish() error {
	return s.NextExercise()
}

// Cancel exits the session from any state. Nothing is persisted.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateExited {
		return
	}
	s.running = false
	s.setState(StateExited)
}

// Done reports whether the session reached a terminal state.
func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateCompleted || s.state == StateExited
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:                   s.id,
		RoutineID:            s.routineID,
		RoutineName:          s.routineName,
		State:                s.state,
		Exercises:            append([]string{}, s.exercises...),
		CurrentExerciseIndex: s.index,
		Series:               s.series,
		DurationSeconds:      s.duration,
		RemainingSeconds:     s.remaining,
		TimerRunning:         s.running,
		UpdatedAt:            s.updatedAt,
	}
	if s.index < len(s.exercises) {
		snap.CurrentExercise = s.exercises[s.index]
	}
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

func (s *Session) lastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}
