package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Defers function calls by a fixed delay without blocking the caller.
//
// Deferred functions run while holding `mu`, so they are serialised with
// any other code guarded by the same locker. Functions still waiting when
// the pacer is closed are dropped.
//
// `TimerPacer.Wait()` must not be called while holding `mu`.
type TimerPacer struct {
	delay   time.Duration
	mu      sync.Locker
	pending sync.WaitGroup
	done    chan struct{}
	closed  atomic.Bool
}

func NewTimerPacer(delay time.Duration, mu sync.Locker) *TimerPacer {
	return &TimerPacer{
		delay: delay,
		mu:    mu,
		done:  make(chan struct{}),
	}
}

func (p *TimerPacer) Defer(fn func()) {
	if p.closed.Load() {
		return
	}

	p.pending.Add(1)

	go func() {
		defer p.pending.Done()

		select {
		case <-time.After(p.delay):
		case <-p.done:
			return
		}

		p.mu.Lock()
		defer p.mu.Unlock()

		if p.closed.Load() {
			return
		}

		fn()
	}()
}

// Blocks until every deferred function has either run or been dropped.
func (p *TimerPacer) Wait() {
	p.pending.Wait()
}

func (p *TimerPacer) Close() {
	if !p.closed.Swap(true) {
		close(p.done)
	}
}

// Creates a pacer that is closed as soon as ctx is done.
func NewTimerPacerContext(ctx context.Context, delay time.Duration, mu sync.Locker) *TimerPacer {
	p := NewTimerPacer(delay, mu)

	go func() {
		select {
		case <-ctx.Done():
		case <-p.done:
		}
		p.Close()
	}()

	return p
}
