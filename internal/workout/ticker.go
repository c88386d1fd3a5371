package workout

import (
	"context"
	"sync"
	"time"
)

// Ticker drives a session's countdown from its own goroutine. Each start
// of the timer restarts the schedule, so a full interval passes before the
// first decrement.
type Ticker struct {
	session  *Session
	interval time.Duration
	onTick   func(Snapshot)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTicker returns a stopped ticker for s. onTick, when set, receives a
// snapshot after every tick that changed the session.
func NewTicker(s *Session, interval time.Duration, onTick func(Snapshot)) *Ticker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Ticker{session: s, interval: interval, onTick: onTick}
}

// Start launches the goroutine. Calling Start on a started ticker is a no-op.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.run(ctx, t.done)
}

func (t *Ticker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.session.TimerStarted():
			tk.Reset(t.interval)
		case <-tk.C:
			if t.session.Tick() && t.onTick != nil {
				t.onTick(t.session.Snapshot())
			}
			if t.session.Done() {
				return
			}
		}
	}
}

// Stop cancels the goroutine and waits for it to exit.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed once the goroutine has exited. It is nil before Start.
func (t *Ticker) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}
