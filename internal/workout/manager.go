package workout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gymrace/internal/observability"

	"github.com/google/uuid"
)

// Config tunes a Manager.
type Config struct {
	DefaultSeconds int
	TickInterval   time.Duration
	IdleTTL        time.Duration
	ReapInterval   time.Duration
}

type liveSession struct {
	session *Session
	ticker  *Ticker
}

// Manager owns the live sessions of every user.
type Manager struct {
	loader RoutineLoader
	cfg    Config

	mu       sync.Mutex
	sessions map[string]*liveSession
}

func NewManager(loader RoutineLoader, cfg Config) *Manager {
	if cfg.DefaultSeconds == 0 {
		cfg.DefaultSeconds = DefaultSeconds
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 2 * time.Hour
	}
	if cfg.ReapInterval <= 0 {
		cfg.ReapInterval = time.Minute
	}
	return &Manager{
		loader:   loader,
		cfg:      cfg,
		sessions: make(map[string]*liveSession),
	}
}

// Start creates a session for routineID and loads it. A load failure
// leaves the session registered in the Error state so it can be retried;
// the error is returned alongside it.
func (m *Manager) Start(ctx context.Context, userID, routineID string) (*Session, error) {
	s := NewSession(uuid.NewString(), userID, routineID, m.loader, m.cfg.DefaultSeconds)
	ticker := NewTicker(s, m.cfg.TickInterval, nil)

	m.mu.Lock()
	m.sessions[s.ID()] = &liveSession{session: s, ticker: ticker}
	m.mu.Unlock()
	observability.ActiveWorkoutSessions.Inc()

	// The ticker outlives the request that created it.
	ticker.Start(context.Background())

	err := s.Load(ctx)
	if err != nil {
		observability.Logger.WarnContext(ctx, "workout routine load failed",
			slog.String("session_id", s.ID()),
			slog.String("routine_id", routineID),
			slog.String("error", err.Error()),
		)
	}
	return s, err
}

// Get returns the caller's session. Sessions of other users are reported
// as not found.
func (m *Manager) Get(userID, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	live, ok := m.sessions[id]
	if !ok || live.session.UserID() != userID {
		return nil, ErrSessionNotFound
	}
	return live.session, nil
}

// Cancel exits and discards the session.
func (m *Manager) Cancel(userID, id string) error {
	m.mu.Lock()
	live, ok := m.sessions[id]
	if !ok || live.session.UserID() != userID {
		m.mu.Unlock()
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	live.session.Cancel()
	live.ticker.Stop()
	observability.ActiveWorkoutSessions.Dec()
	return nil
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reap discards sessions idle for IdleTTL, and finished sessions idle for
// one ReapInterval. It returns how many were removed.
func (m *Manager) Reap(now time.Time) int {
	cutoff := now.Add(-m.cfg.IdleTTL)
	finishedCutoff := now.Add(-m.cfg.ReapInterval)

	m.mu.Lock()
	var stale []*liveSession
	for id, live := range m.sessions {
		last := live.session.lastActivity()
		if last.Before(cutoff) || (live.session.Done() && last.Before(finishedCutoff)) {
			stale = append(stale, live)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, live := range stale {
		live.session.Cancel()
		live.ticker.Stop()
		observability.ActiveWorkoutSessions.Dec()
	}
	return len(stale)
}

// Run reaps periodically until ctx is done, then stops every ticker.
func (m *Manager) Run(ctx context.Context) {
	tk := time.NewTicker(m.cfg.ReapInterval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			m.Close()
			return
		case now := <-tk.C:
			if n := m.Reap(now); n > 0 {
				observability.Logger.Debug("reaped workout sessions", slog.Int("count", n))
			}
		}
	}
}

// Close stops all tickers and forgets every session.
func (m *Manager) Close() {
	m.mu.Lock()
	live := m.sessions
	m.sessions = make(map[string]*liveSession)
	m.mu.Unlock()

	for _, l := range live {
		l.ticker.Stop()
		observability.ActiveWorkoutSessions.Dec()
	}
}
