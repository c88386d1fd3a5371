// Package poll runs a fetch on a fixed interval with explicit start and stop.
package poll

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the refresh period of challenge views.
const DefaultInterval = 5 * time.Second

// Poller calls fetch immediately on Start and then every interval until
// Stop, handing each result to deliver. There is no backoff; a failed fetch
// is delivered and the next one runs on schedule.
type Poller[T any] struct {
	interval time.Duration
	fetch    func(context.Context) (T, error)
	deliver  func(T, error)

	trigger chan struct{}

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New[T any](interval time.Duration, fetch func(context.Context) (T, error), deliver func(T, error)) *Poller[T] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller[T]{
		interval: interval,
		fetch:    fetch,
		deliver:  deliver,
		trigger:  make(chan struct{}, 1),
	}
}

// Start begins polling under ctx. It is a no-op while already running.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, p.done)
}

// Stop ends polling and waits for an in-flight fetch to return. A stopped
// poller may be started again.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Trigger requests a fetch ahead of schedule. Requests made while one is
// already queued are merged.
func (p *Poller[T]) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Running reports whether the poller has been started and not stopped.
func (p *Poller[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller[T]) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	tk := time.NewTicker(p.interval)
	defer tk.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			p.poll(ctx)
		case <-p.trigger:
			p.poll(ctx)
			tk.Reset(p.interval)
		}
	}
}

func (p *Poller[T]) poll(ctx context.Context) {
	v, err := p.fetch(ctx)
	if ctx.Err() != nil {
		return
	}
	p.deliver(v, err)
}
