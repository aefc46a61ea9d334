// Package timer provides the time sources that pace the main loop. The
// real clock is used on the device; Manual makes animation, debounce and
// sleep timing deterministic under test.
package timer

import (
	"context"
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// Sleeper blocks for a pacing delay. Sleep returns early with ctx.Err()
// when the context is cancelled.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// Real is the wall clock.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time { return time.Now() }

// Sleep waits for d or until ctx is done.
func (Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Manual is a clock that only moves when told to. Sleep advances it
// instantly, so a loop paced by Manual runs at full speed in tests.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Sleep records d and advances the clock by it.
func (m *Manual) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slept = append(m.slept, d)
	m.now = m.now.Add(d)
	return nil
}

// Slept returns every delay passed to Sleep, in order.
func (m *Manual) Slept() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.slept))
	copy(out, m.slept)
	return out
}

// Gate lets an action through at most once per interval.
type Gate struct {
	interval time.Duration
	last     time.Time
	primed   bool
}

// NewGate creates a gate that opens at most once every interval.
func NewGate(interval time.Duration) *Gate {
	return &Gate{interval: interval}
}

// Ready reports whether interval has passed since the last time Ready
// returned true. The first call always returns true.
func (g *Gate) Ready(now time.Time) bool {
	if g.primed && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	g.primed = true
	return true
}
