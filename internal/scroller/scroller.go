// Package scroller computes the horizontal position of text that may be
// wider than the space reserved for it.
package scroller

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Scrolling defaults, in pixels and ticks.
const (
	DefaultStep  = 2
	DefaultGap   = 20
	DefaultPause = 30
)

// MeasureFunc returns the rendered width of text in pixels.
type MeasureFunc func(text string) int

// FaceMeasure measures text with a font face.
func FaceMeasure(face font.Face) MeasureFunc {
	return func(text string) int {
		return font.MeasureString(face, text).Ceil()
	}
}

// Option configures a Scroller.
type Option func(*Scroller)

// WithMeasure sets the function used to measure text width.
func WithMeasure(m MeasureFunc) Option {
	return func(s *Scroller) {
		s.measure = m
	}
}

// WithStep sets how far the text moves per tick.
func WithStep(px int) Option {
	return func(s *Scroller) {
		s.step = px
	}
}

// WithPause sets how many ticks the text rests at the start of each pass.
func WithPause(ticks int) Option {
	return func(s *Scroller) {
		s.pauseLen = ticks
	}
}

// Scroller tracks the scroll position of one line of text. Reset must be
// called whenever the text being laid out changes.
type Scroller struct {
	measure  MeasureFunc
	step     int
	gap      int
	pauseLen int

	offset int
	pause  int
}

// New creates a scroller at rest.
func New(opts ...Option) *Scroller {
	s := &Scroller{
		measure:  FaceMeasure(basicfont.Face7x13),
		step:     DefaultStep,
		gap:      DefaultGap,
		pauseLen: DefaultPause,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Layout returns the x offset, relative to the viewport's left edge, at
// which text should be drawn this tick, and whether it is scrolling.
// Text that fits is centered and leaves the scroll state untouched.
func (s *Scroller) Layout(text string, viewport int) (int, bool) {
	width := s.measure(text)
	if width <= viewport {
		return (viewport - width) / 2, false
	}

	if s.pause > 0 {
		s.pause--
		return 0, true
	}

	x := -s.offset
	s.offset += s.step
	if s.offset > width+s.gap {
		s.offset = 0
		s.pause = s.pauseLen
	}
	return x, true
}

// Reset returns the scroller to its initial state.
func (s *Scroller) Reset() {
	s.offset = 0
	s.pause = 0
}

// State returns the current offset and remaining pause ticks.
func (s *Scroller) State() (offset, pause int) {
	return s.offset, s.pause
}
