// Package audio plays music files through the system audio device.
package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/faiface/beep"

	"github.com/hammamikhairi/valplayer/internal/domain"
	"github.com/hammamikhairi/valplayer/internal/logger"
)

// Output format.
const (
	DefaultSampleRate = 44100
	ChannelCount      = 2
)

var _ domain.AudioBackend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithSampleRate sets the output sample rate.
func WithSampleRate(rate int) Option {
	return func(b *Backend) {
		b.rate = rate
	}
}

// Backend decodes files with beep and plays them on an oto context.
// One track is loaded at a time.
type Backend struct {
	ctx  *oto.Context
	log  *logger.Logger
	rate int

	mu     sync.Mutex
	player *oto.Player
	src    *stream
	volume float64
}

// NewBackend initializes the audio device. Only one Backend may exist per
// process because oto allows a single context.
func NewBackend(log *logger.Logger, opts ...Option) (*Backend, error) {
	b := &Backend{log: log, rate: DefaultSampleRate, volume: 1}
	for _, opt := range opts {
		opt(b)
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   b.rate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("audio device: %w: %v", domain.ErrPlaybackFailure, err)
	}
	<-ready
	b.ctx = ctx

	log.Debug("audio backend initialized (rate=%d, channels=%d)", b.rate, ChannelCount)
	return b, nil
}

// Load decodes path and prepares it for playback, replacing any loaded
// track.
func (b *Backend) Load(path string) error {
	s, err := openStream(path, beep.SampleRate(b.rate))
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.unloadLocked()

	b.src = s
	b.player = b.ctx.NewPlayer(newPCMReader(s))
	b.player.SetVolume(b.volume)
	b.log.Debug("audio: loaded %s", path)
	return nil
}

// Play starts or resumes the loaded track.
func (b *Backend) Play() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player == nil {
		return fmt.Errorf("play: nothing loaded: %w", domain.ErrPlaybackFailure)
	}
	b.player.Play()
	if err := b.player.Err(); err != nil {
		return fmt.Errorf("play: %w: %v", domain.ErrPlaybackFailure, err)
	}
	return nil
}

// Pause halts output, keeping the position.
func (b *Backend) Pause() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.player != nil {
		b.player.Pause()
	}
}

// Resume continues a paused track.
func (b *Backend) Resume() {
	if err := b.Play(); err != nil {
		b.log.Warn("audio: resume: %v", err)
	}
}

// SetVolume sets the output gain in [0,1].
func (b *Backend) SetVolume(v float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.volume = v
	if b.player != nil {
		b.player.SetVolume(v)
	}
}

// IsBusy reports whether audio is currently being output. It turns false
// when the track ends or is paused.
func (b *Backend) IsBusy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.player != nil && b.player.IsPlaying()
}

// Close releases the loaded track.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unloadLocked()
}

func (b *Backend) unloadLocked() error {
	var err error
	if b.player != nil {
		b.player.Pause()
		err = b.player.Close()
		b.player = nil
	}
	if b.src != nil {
		if cerr := b.src.Close(); err == nil {
			err = cerr
		}
		b.src = nil
	}
	return err
}
