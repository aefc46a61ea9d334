// Package engine runs the player's main loop: poll the buttons, resolve
// one command, update playback and sleep state, render, submit.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/hammamikhairi/valplayer/internal/activity"
	"github.com/hammamikhairi/valplayer/internal/domain"
	"github.com/hammamikhairi/valplayer/internal/input"
	"github.com/hammamikhairi/valplayer/internal/logger"
	"github.com/hammamikhairi/valplayer/internal/player"
	"github.com/hammamikhairi/valplayer/internal/render"
	"github.com/hammamikhairi/valplayer/internal/timer"
	"github.com/hammamikhairi/valplayer/internal/visualizer"
)

// Pacing defaults.
const (
	DefaultFastTick    = 50 * time.Millisecond
	DefaultIdleTick    = 100 * time.Millisecond
	DefaultDebounce    = 200 * time.Millisecond
	DefaultFinishCheck = time.Second
	DefaultVolumeStep  = 0.05
)

// Deps are the components the engine drives. Every field is required.
type Deps struct {
	Player     *player.Controller
	Backend    domain.AudioBackend
	Monitor    *activity.Monitor
	Visualizer *visualizer.Visualizer
	Composer   *render.Composer
	Buttons    domain.ButtonReader
	Sink       domain.DisplaySink
	Clock      timer.Clock
	Sleeper    timer.Sleeper
}

// Option configures the engine.
type Option func(*Engine)

// WithBindings replaces the default button layout.
func WithBindings(b input.Bindings) Option {
	return func(e *Engine) {
		e.bindings = b
	}
}

// WithPacing sets the loop delay while visualizing playback and while idle.
func WithPacing(fast, idle time.Duration) Option {
	return func(e *Engine) {
		e.fast, e.idle = fast, idle
	}
}

// WithDebounce sets the extra delay after every matched command.
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) {
		e.debounce = d
	}
}

// WithFinishCheck sets the minimum interval between end-of-track checks.
func WithFinishCheck(d time.Duration) Option {
	return func(e *Engine) {
		e.finish = timer.NewGate(d)
	}
}

// WithVolumeStep sets how much one volume command changes the volume.
func WithVolumeStep(step float64) Option {
	return func(e *Engine) {
		e.volumeStep = step
	}
}

// Engine is the single-threaded player loop. It is not safe for
// concurrent use; Run owns it.
type Engine struct {
	Deps
	log *logger.Logger

	bindings   input.Bindings
	fast       time.Duration
	idle       time.Duration
	debounce   time.Duration
	volumeStep float64
	finish     *timer.Gate

	lastIndex  int
	sleepShown bool

	// Set when sleep starts with the wake button held. Cleared once a poll
	// sees it released.
	wakeLatched bool
}

// New creates an engine over deps.
func New(deps Deps, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		Deps:       deps,
		log:        log,
		bindings:   input.DefaultBindings(),
		fast:       DefaultFastTick,
		idle:       DefaultIdleTick,
		debounce:   DefaultDebounce,
		volumeStep: DefaultVolumeStep,
		finish:     timer.NewGate(DefaultFinishCheck),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.lastIndex = e.Player.State().TrackIndex
	return e
}

// Start renders the first frame and begins playback if there is anything
// to play. A library that cannot be played is not fatal: the loop still
// runs and shows the state.
func (e *Engine) Start() error {
	if len(e.Player.Tracks()) > 0 {
		if err := e.Player.PlayCurrent(); err != nil {
			e.log.Warn("initial playback: %v", err)
		}
		e.lastIndex = e.Player.State().TrackIndex
	} else {
		e.log.Warn("library is empty")
	}
	return e.render()
}

// Run loops until ctx is cancelled or a hardware fault occurs. Other
// per-iteration errors are logged and the loop continues.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Info("main loop started")
	for ctx.Err() == nil {
		delay, err := e.Step(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrHardwareFault) {
				e.log.Error("hardware fault: %v", err)
				return err
			}
			e.log.Warn("tick: %v", err)
		}
		if err := e.Sleeper.Sleep(ctx, delay); err != nil {
			break
		}
	}
	e.log.Info("main loop stopped")
	return nil
}

// Step runs one loop iteration and returns how long to wait before the
// next one.
func (e *Engine) Step(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	held := input.Poll(e.Buttons)

	if e.Monitor.Sleeping() {
		return e.stepAsleep(held)
	}

	now := e.Clock.Now()
	if e.Monitor.Tick(now) {
		return e.idle, e.enterSleep(held)
	}

	var errs []error
	cmd := input.Resolve(held, false, e.bindings)
	if cmd != input.None {
		e.log.Debug("command %s", cmd)
		e.Monitor.NoteActivity()
		if err := e.apply(cmd); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cmd, err))
		}
		if e.Monitor.Sleeping() {
			errs = append(errs, e.enterSleep(held))
			return e.idle + e.debounce, errors.Join(errs...)
		}
	}

	if err := e.checkFinished(now); err != nil {
		errs = append(errs, err)
	}

	active := e.Player.Playing() && e.Backend.IsBusy()
	e.Visualizer.Advance(active)
	errs = append(errs, e.render())

	delay := e.idle
	if active {
		delay = e.fast
	}
	if cmd != input.None {
		delay += e.debounce
	}
	return delay, errors.Join(errs...)
}

// stepAsleep ignores every command except wake. Playback carries on while
// the screen sleeps, so finished tracks still advance. Wake needs a fresh
// press: a wake button still held from the sleep chord does not count.
func (e *Engine) stepAsleep(held input.State) (time.Duration, error) {
	finishErr := e.checkFinished(e.Clock.Now())
	if e.wakeLatched {
		if !held.Held(e.bindings.Wake) {
			e.wakeLatched = false
		}
		return e.idle, finishErr
	}
	if input.Resolve(held, true, e.bindings) != input.Wake {
		return e.idle, finishErr
	}
	e.log.Debug("command %s", input.Wake)
	e.Monitor.NoteActivity()
	e.sleepShown = false
	return e.idle + e.debounce, errors.Join(finishErr, e.render())
}

func (e *Engine) apply(cmd input.Command) error {
	switch cmd {
	case input.ForceSleep:
		e.Monitor.ForceSleep()
	case input.VolumeUp:
		e.Player.AdjustVolume(e.volumeStep)
	case input.VolumeDown:
		e.Player.AdjustVolume(-e.volumeStep)
	case input.Previous:
		return e.Player.Previous()
	case input.PlayPause:
		return e.Player.TogglePause()
	case input.Next:
		return e.Player.Next()
	}
	return nil
}

// checkFinished advances past a track that ended on its own. The backend
// stays idle until the next track starts, so a check skipped by the gate
// is picked up by a later one.
func (e *Engine) checkFinished(now time.Time) error {
	if !e.Player.Playing() || !e.finish.Ready(now) {
		return nil
	}
	return e.Player.OnTick(!e.Backend.IsBusy())
}

func (e *Engine) enterSleep(held input.State) error {
	e.wakeLatched = held.Held(e.bindings.Wake)
	if e.sleepShown {
		return nil
	}
	e.sleepShown = true
	return e.submit(e.Composer.SleepFrame())
}

// render draws and submits the awake screen.
func (e *Engine) render() error {
	st := e.Player.State()
	if st.TrackIndex != e.lastIndex {
		e.Composer.ResetScroll()
		e.lastIndex = st.TrackIndex
	}
	return e.submit(e.Composer.Compose(render.View{
		Tracks:  e.Player.Tracks(),
		Index:   st.TrackIndex,
		Playing: st.Playing,
		Volume:  st.Volume,
		Bars:    e.Visualizer.Snapshot(),
	}))
}

func (e *Engine) submit(frame *image.RGBA) error {
	if err := e.Sink.Submit(frame); err != nil {
		return fmt.Errorf("submit frame: %w", err)
	}
	return nil
}

// Shutdown shows the sleep screen and releases the audio backend and the
// display. Buttons are released by whoever opened them. It is safe to call after Run returns with a hardware fault.
func (e *Engine) Shutdown() error {
	e.log.Info("shutting down")
	var errs []error
	if err := e.Sink.Submit(e.Composer.SleepFrame()); err != nil {
		errs = append(errs, fmt.Errorf("final frame: %w", err))
	}
	if err := e.Backend.Close(); err != nil {
		errs = append(errs, fmt.Errorf("audio: %w", err))
	}
	if err := e.Sink.Close(); err != nil {
		errs = append(errs, fmt.Errorf("display: %w", err))
	}
	return errors.Join(errs...)
}
