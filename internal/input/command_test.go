package input

import (
	"testing"

	"github.com/hammamikhairi/valplayer/internal/domain"
)

type fakeButtons map[domain.Button]bool

func (f fakeButtons) Pressed(b domain.Button) bool { return f[b] }

func TestResolveAwake(t *testing.T) {
	a, b, x, y := domain.ButtonA, domain.ButtonB, domain.ButtonX, domain.ButtonY

	tests := []struct {
		name string
		held State
		want Command
	}{
		{"nothing", Of(), None},
		{"previous", Of(a), Previous},
		{"play pause", Of(b), PlayPause},
		{"next", Of(x), Next},
		{"modifier alone", Of(y), None},
		{"sleep chord", Of(y, b), ForceSleep},
		{"volume down", Of(y, a), VolumeDown},
		{"volume up", Of(y, x), VolumeUp},
		{"sleep chord beats volume", Of(y, b, a), ForceSleep},
		{"volume down beats volume up", Of(y, a, x), VolumeDown},
		{"everything", Of(a, b, x, y), ForceSleep},
		{"previous beats play", Of(a, b), Previous},
		{"previous beats next", Of(a, x), Previous},
		{"play beats next", Of(b, x), PlayPause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.held, false, DefaultBindings()); got != tt.want {
				t.Fatalf("Resolve = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveSleeping(t *testing.T) {
	a, b, x, y := domain.ButtonA, domain.ButtonB, domain.ButtonX, domain.ButtonY

	tests := []struct {
		name string
		held State
		want Command
	}{
		{"nothing", Of(), None},
		{"wake", Of(b), Wake},
		{"wake inside sleep chord", Of(y, b), Wake},
		{"previous ignored", Of(a), None},
		{"next ignored", Of(x), None},
		{"volume ignored", Of(y, x), None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.held, true, DefaultBindings()); got != tt.want {
				t.Fatalf("Resolve = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestPoll(t *testing.T) {
	s := Poll(fakeButtons{domain.ButtonA: true, domain.ButtonY: true})
	if !s.Held(domain.ButtonA) || !s.Held(domain.ButtonY) {
		t.Fatalf("expected A and Y held, got %08b", s)
	}
	if s.Held(domain.ButtonB) || s.Held(domain.ButtonX) {
		t.Fatalf("unexpected buttons held: %08b", s)
	}
	if s != Of(domain.ButtonY, domain.ButtonA) {
		t.Fatal("Poll and Of disagree")
	}
}

func TestCustomBindings(t *testing.T) {
	b := DefaultBindings()
	b.Modifier = domain.ButtonA
	b.VolumeDown = domain.ButtonX
	b.VolumeUp = domain.ButtonY
	b.Previous = domain.ButtonY

	if got := Resolve(Of(domain.ButtonA, domain.ButtonY), false, b); got != VolumeUp {
		t.Fatalf("expected volume-up with remapped modifier, got %s", got)
	}
	if got := Resolve(Of(domain.ButtonY), false, b); got != Previous {
		t.Fatalf("expected previous on remapped button, got %s", got)
	}
}
