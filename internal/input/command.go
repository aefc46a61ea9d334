// Package input turns raw button state into at most one logical command
// per loop iteration.
package input

import "github.com/hammamikhairi/valplayer/internal/domain"

// Command is a logical action resolved from the buttons.
type Command int

const (
	None Command = iota
	ForceSleep
	VolumeUp
	VolumeDown
	Previous
	PlayPause
	Next
	Wake
)

// String returns a human-readable command name.
func (c Command) String() string {
	switch c {
	case None:
		return "none"
	case ForceSleep:
		return "force-sleep"
	case VolumeUp:
		return "volume-up"
	case VolumeDown:
		return "volume-down"
	case Previous:
		return "previous"
	case PlayPause:
		return "play-pause"
	case Next:
		return "next"
	case Wake:
		return "wake"
	default:
		return "unknown"
	}
}

// State is the set of buttons held during one poll.
type State uint8

// With returns s with b marked as held.
func (s State) With(b domain.Button) State { return s | 1<<uint(b) }

// Held reports whether b is held.
func (s State) Held(b domain.Button) bool { return s&(1<<uint(b)) != 0 }

// Of builds a State from the given held buttons.
func Of(buttons ...domain.Button) State {
	var s State
	for _, b := range buttons {
		s = s.With(b)
	}
	return s
}

// Poll reads every button once.
func Poll(r domain.ButtonReader) State {
	var s State
	for _, b := range domain.Buttons {
		if r.Pressed(b) {
			s = s.With(b)
		}
	}
	return s
}

// Bindings maps buttons to commands. The sleep chord is Modifier held
// with PlayPause; volume chords are Modifier held with VolumeDown or
// VolumeUp.
type Bindings struct {
	Previous   domain.Button
	PlayPause  domain.Button
	Next       domain.Button
	Modifier   domain.Button
	VolumeDown domain.Button
	VolumeUp   domain.Button
	Wake       domain.Button
}

// DefaultBindings is the front-panel layout: A previous, B play/pause,
// X next, Y modifier. Y+A lowers the volume, Y+X raises it, Y+B sleeps,
// B wakes.
func DefaultBindings() Bindings {
	return Bindings{
		Previous:   domain.ButtonA,
		PlayPause:  domain.ButtonB,
		Next:       domain.ButtonX,
		Modifier:   domain.ButtonY,
		VolumeDown: domain.ButtonA,
		VolumeUp:   domain.ButtonX,
		Wake:       domain.ButtonB,
	}
}

// Resolve picks the single command for this iteration. While sleeping
// only the wake button is honoured. While awake the first match wins:
// sleep chord, volume chords, previous, play/pause, next. The modifier
// held on its own resolves to None.
func Resolve(s State, sleeping bool, b Bindings) Command {
	if sleeping {
		if s.Held(b.Wake) {
			return Wake
		}
		return None
	}

	if s.Held(b.Modifier) {
		switch {
		case s.Held(b.PlayPause):
			return ForceSleep
		case s.Held(b.VolumeDown):
			return VolumeDown
		case s.Held(b.VolumeUp):
			return VolumeUp
		default:
			return None
		}
	}

	switch {
	case s.Held(b.Previous):
		return Previous
	case s.Held(b.PlayPause):
		return PlayPause
	case s.Held(b.Next):
		return Next
	}
	return None
}
