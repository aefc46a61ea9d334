package domain

import "image"

// AudioBackend decodes and plays a single track at a time. Implementations
// can drive a sound card, a headless sink, or a test fake.
type AudioBackend interface {
	Load(path string) error
	Play() error
	Pause()
	Resume()
	SetVolume(v float64)
	// IsBusy reports whether audio is currently being produced. It is false
	// while paused and after the loaded track has ended.
	IsBusy() bool
	Close() error
}

// DisplaySink receives fully composed frames. Submit blocks for a short,
// bounded time while the frame is transferred.
type DisplaySink interface {
	Submit(frame *image.RGBA) error
	Close() error
}

// ButtonReader reports the raw, undebounced state of a physical button.
// Pressed returns true while the button is held down.
type ButtonReader interface {
	Pressed(b Button) bool
}

// TrackSource lists playable tracks. The fallback directory is consulted
// only when the primary directory yields nothing.
type TrackSource interface {
	List(primary, fallback string) ([]Track, error)
}
