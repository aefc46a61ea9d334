// Package activity decides when the player goes to sleep. Sleeping is the
// single source of truth for which screen is shown.
package activity

import (
	"time"

	"github.com/hammamikhairi/valplayer/internal/logger"
	"github.com/hammamikhairi/valplayer/internal/timer"
)

// DefaultTimeout is the idle time after which the player sleeps.
const DefaultTimeout = 300 * time.Second

// Option configures a Monitor.
type Option func(*Monitor)

// WithTimeout sets the idle timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		m.timeout = d
	}
}

// Monitor tracks the last user interaction.
type Monitor struct {
	clock   timer.Clock
	log     *logger.Logger
	timeout time.Duration

	lastActivity time.Time
	sleeping     bool
}

// New creates a monitor that is awake, with the idle timer starting now.
func New(clock timer.Clock, log *logger.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		clock:   clock,
		log:     log,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lastActivity = clock.Now()
	return m
}

// NoteActivity restarts the idle timer and wakes the player.
func (m *Monitor) NoteActivity() {
	m.lastActivity = m.clock.Now()
	if m.sleeping {
		m.log.Info("waking from sleep mode")
	}
	m.sleeping = false
}

// Tick enters sleep once the idle timeout has elapsed and reports whether
// the player is sleeping.
func (m *Monitor) Tick(now time.Time) bool {
	if !m.sleeping && now.Sub(m.lastActivity) > m.timeout {
		m.log.Info("idle for %s, entering sleep mode", m.timeout)
		m.sleeping = true
	}
	return m.sleeping
}

// ForceSleep enters sleep regardless of the idle timer.
func (m *Monitor) ForceSleep() {
	if !m.sleeping {
		m.log.Info("forcing sleep mode")
	}
	m.sleeping = true
}

// Sleeping reports whether the player is asleep.
func (m *Monitor) Sleeping() bool { return m.sleeping }

// LastActivity returns the time of the most recent interaction.
func (m *Monitor) LastActivity() time.Time { return m.lastActivity }
