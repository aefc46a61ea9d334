// Package player implements the playback state machine behind the
// transport buttons. It owns the PlaybackState and drives an
// AudioBackend; it never touches the display.
package player

import (
	"fmt"

	"github.com/hammamikhairi/valplayer/internal/domain"
	"github.com/hammamikhairi/valplayer/internal/logger"
)

// DefaultVolume is the volume at startup.
const DefaultVolume = 0.5

// Option configures the controller.
type Option func(*Controller)

// WithVolume sets the initial volume, clamped to [0, 1].
func WithVolume(v float64) Option {
	return func(c *Controller) {
		c.state.Volume = clamp01(v)
	}
}

// Controller executes transport commands against an audio backend.
type Controller struct {
	backend domain.AudioBackend
	tracks  []domain.Track
	log     *logger.Logger

	state  domain.PlaybackState
	loaded bool // backend holds the track at state.TrackIndex
}

// New creates a stopped controller positioned on the first track.
func New(backend domain.AudioBackend, tracks []domain.Track, log *logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		tracks:  tracks,
		log:     log,
		state:   domain.PlaybackState{Volume: DefaultVolume},
	}
	for _, opt := range opts {
		opt(c)
	}
	backend.SetVolume(c.state.Volume)
	return c
}

// State returns a copy of the playback state.
func (c *Controller) State() domain.PlaybackState { return c.state }

// Playing reports whether a track is playing.
func (c *Controller) Playing() bool { return c.state.Playing }

// Tracks returns the track list.
func (c *Controller) Tracks() []domain.Track { return c.tracks }

// Current returns the track at the current index. ok is false when the
// library is empty.
func (c *Controller) Current() (domain.Track, bool) {
	if len(c.tracks) == 0 {
		return domain.Track{}, false
	}
	return c.tracks[c.state.TrackIndex], true
}

// PlayCurrent starts the track at the current index. A track that fails to
// start is skipped; after one failed attempt per track the controller
// gives up, stops, and returns domain.ErrMediaUnavailable.
func (c *Controller) PlayCurrent() error {
	if len(c.tracks) == 0 {
		return domain.ErrMediaUnavailable
	}

	c.state.ConsecutiveFailures = 0
	for {
		track := c.tracks[c.state.TrackIndex]
		err := c.start(track)
		if err == nil {
			c.state.Playing = true
			c.state.ConsecutiveFailures = 0
			c.loaded = true
			c.log.Info("playing %q (%d/%d)", track.DisplayName, c.state.TrackIndex+1, len(c.tracks))
			return nil
		}

		c.loaded = false
		c.state.ConsecutiveFailures++
		c.log.Warn("cannot play %s: %v", track.Path, err)

		if c.state.ConsecutiveFailures >= len(c.tracks) {
			c.state.Playing = false
			c.log.Error("no playable tracks after %d attempts", c.state.ConsecutiveFailures)
			return fmt.Errorf("%d tracks failed: %w", c.state.ConsecutiveFailures, domain.ErrMediaUnavailable)
		}
		c.state.TrackIndex = c.wrap(c.state.TrackIndex + 1)
	}
}

func (c *Controller) start(track domain.Track) error {
	if err := c.backend.Load(track.Path); err != nil {
		return fmt.Errorf("loading: %w", err)
	}
	if err := c.backend.Play(); err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	c.backend.SetVolume(c.state.Volume)
	return nil
}

// Next moves to the following track, wrapping at the end.
func (c *Controller) Next() error {
	return c.step(1)
}

// Previous moves to the preceding track, wrapping at the start.
func (c *Controller) Previous() error {
	return c.step(-1)
}

func (c *Controller) step(delta int) error {
	if len(c.tracks) == 0 {
		return nil
	}
	c.state.TrackIndex = c.wrap(c.state.TrackIndex + delta)
	c.log.Debug("moved to track %d/%d", c.state.TrackIndex+1, len(c.tracks))
	if c.state.Playing {
		return c.PlayCurrent()
	}
	// The paused track no longer matches the index; the next play
	// starts fresh on the new one.
	c.loaded = false
	return nil
}

// TogglePause pauses a playing track, resumes a paused one, or starts the
// current track when nothing is loaded.
func (c *Controller) TogglePause() error {
	if len(c.tracks) == 0 {
		return nil
	}
	switch {
	case c.state.Playing:
		c.backend.Pause()
		c.state.Playing = false
		c.log.Info("paused")
		return nil
	case c.loaded:
		c.backend.Resume()
		c.state.Playing = true
		c.log.Info("resumed")
		return nil
	default:
		return c.PlayCurrent()
	}
}

// AdjustVolume changes the volume by delta, clamped to [0, 1].
func (c *Controller) AdjustVolume(delta float64) {
	c.state.Volume = clamp01(c.state.Volume + delta)
	c.backend.SetVolume(c.state.Volume)
	c.log.Debug("volume %d%%", int(c.state.Volume*100+0.5))
}

// OnTick advances to the next track when the current one has finished
// while playing.
func (c *Controller) OnTick(trackFinished bool) error {
	if !c.state.Playing || !trackFinished || len(c.tracks) == 0 {
		return nil
	}
	c.log.Debug("track %d finished", c.state.TrackIndex+1)
	c.state.TrackIndex = c.wrap(c.state.TrackIndex + 1)
	return c.PlayCurrent()
}

func (c *Controller) wrap(i int) int {
	n := len(c.tracks)
	return ((i % n) + n) % n
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
