package visualizer

import (
	"image/color"
	"math"
	"math/rand"
	"testing"
)

func TestHeightsStayBounded(t *testing.T) {
	v := New(12, rand.New(rand.NewSource(1)))

	for tick := 0; tick < 2000; tick++ {
		// Alternate long active and inactive stretches.
		v.Advance((tick/150)%2 == 0)
		for i, h := range v.Snapshot() {
			if h < 0 || h > 1 {
				t.Fatalf("tick %d bar %d: height %f out of [0,1]", tick, i, h)
			}
		}
		for i, b := range v.Bars() {
			if b.Target < 0 || b.Target > 1 {
				t.Fatalf("tick %d bar %d: target %f out of [0,1]", tick, i, b.Target)
			}
		}
	}
}

func TestLengthIsConstant(t *testing.T) {
	v := New(7, rand.New(rand.NewSource(2)))
	for i := 0; i < 50; i++ {
		v.Advance(i%3 != 0)
		if got := len(v.Snapshot()); got != 7 {
			t.Fatalf("expected 7 bars, got %d", got)
		}
	}
	if v.Len() != 7 {
		t.Fatalf("Len() = %d", v.Len())
	}
}

func TestInactiveDecaysToZero(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		v := New(12, rand.New(rand.NewSource(seed)))
		for i := 0; i < 40; i++ {
			v.Advance(true)
		}

		start := v.Snapshot()
		maxTicks := 0
		for _, h := range start {
			if n := int(math.Ceil(h / DecayStep)); n > maxTicks {
				maxTicks = n
			}
		}

		for tick := 1; tick <= maxTicks; tick++ {
			v.Advance(false)
			for i, h := range v.Snapshot() {
				if h < 0 {
					t.Fatalf("seed %d tick %d bar %d: negative height %f", seed, tick, i, h)
				}
				if want := int(math.Ceil(start[i] / DecayStep)); tick >= want && h != 0 {
					t.Fatalf("seed %d bar %d: height %f after %d ticks, want 0 (started at %f)",
						seed, i, h, tick, start[i])
				}
			}
		}

		for i, b := range v.Bars() {
			if b.Target != 0 {
				t.Fatalf("seed %d bar %d: inactive target %f, want 0", seed, i, b.Target)
			}
		}
	}
}

func TestActiveMovesTowardTarget(t *testing.T) {
	v := New(1, rand.New(rand.NewSource(3)))
	v.bars[0] = Bar{Height: 0, Target: 1}

	// Whether or not the bar retargets, one step covers 30% of the gap.
	v.Advance(true)
	h := v.Snapshot()[0]
	if h <= 0 || h > Smoothing+1e-9 {
		t.Fatalf("first active step moved to %f, want (0, %f]", h, Smoothing)
	}
}

func TestReproducibleWithSeed(t *testing.T) {
	a := New(12, rand.New(rand.NewSource(42)))
	b := New(12, rand.New(rand.NewSource(42)))
	for i := 0; i < 100; i++ {
		a.Advance(true)
		b.Advance(true)
	}
	sa, sb := a.Snapshot(), b.Snapshot()
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("bar %d diverged: %f vs %f", i, sa[i], sb[i])
		}
	}
}

func TestFireColor(t *testing.T) {
	tests := []struct {
		p    float64
		want color.NRGBA
	}{
		{0, color.NRGBA{0, 0, 0, 230}},
		{0.1, color.NRGBA{127, 0, 0, 230}},
		{0.2, color.NRGBA{255, 0, 0, 230}},
		{0.3, color.NRGBA{255, 127, 0, 230}},
		{0.5, color.NRGBA{255, 255, 127, 230}},
		{0.6, color.NRGBA{255, 255, 128, 230}},
		{1.0, color.NRGBA{255, 255, 255, 230}},
	}
	for _, tt := range tests {
		got := FireColor(tt.p)
		// Band edges are computed in floating point; allow one step of slack.
		if diff(got.R, tt.want.R) > 1 || diff(got.G, tt.want.G) > 1 || diff(got.B, tt.want.B) > 1 || got.A != tt.want.A {
			t.Fatalf("FireColor(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestFireColorWarmsUp(t *testing.T) {
	prev := FireColor(0)
	for i := 1; i <= 100; i++ {
		c := FireColor(float64(i) / 100)
		// Blue restarts at half intensity in the top band, so only red and
		// green are monotonic.
		if c.R < prev.R || c.G < prev.G {
			t.Fatalf("color went darker at %d%%: %v -> %v", i, prev, c)
		}
		prev = c
	}
}

func TestFlameTip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	flickers := 0
	const frames = 5000
	for i := 0; i < frames; i++ {
		rows := FlameTip(rng)
		if rows == nil {
			continue
		}
		flickers++
		for j, r := range rows {
			if r < 1 || r > FlickerMaxRows {
				t.Fatalf("row offset %d out of range", r)
			}
			if j > 0 && rows[j-1] >= r {
				t.Fatalf("rows not ascending: %v", rows)
			}
		}
	}
	ratio := float64(flickers) / frames
	if ratio < 0.25 || ratio > 0.35 {
		t.Fatalf("flicker ratio %f, want about %f", ratio, FlickerChance)
	}

	a := FlameTip(rand.New(rand.NewSource(99)))
	b := FlameTip(rand.New(rand.NewSource(99)))
	if len(a) != len(b) {
		t.Fatalf("same seed gave %v and %v", a, b)
	}
}

func diff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
