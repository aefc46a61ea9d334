// Package visualizer animates the fire bars shown under the track info.
// Bars flicker toward random targets while audio is playing and sink
// uniformly to rest when it stops.
package visualizer

import "math/rand"

// Animation constants.
const (
	RetargetChance = 0.3
	MinTarget      = 0.3
	MaxTarget      = 1.0
	Smoothing      = 0.3
	DecayStep      = 0.05
)

// snap absorbs float drift so a decaying bar lands exactly on zero.
const snap = 1e-9

// Bar is the animated state of one visualizer column. Both fields stay
// within [0, 1].
type Bar struct {
	Height float64
	Target float64
}

// Visualizer owns a fixed number of bars for the lifetime of the process.
type Visualizer struct {
	bars []Bar
	rng  *rand.Rand
}

// New creates a visualizer with count bars at rest. rng drives the target
// selection; pass a seeded source for reproducible animation.
func New(count int, rng *rand.Rand) *Visualizer {
	if count < 1 {
		count = 1
	}
	return &Visualizer{
		bars: make([]Bar, count),
		rng:  rng,
	}
}

// Len returns the number of bars.
func (v *Visualizer) Len() int { return len(v.bars) }

// Advance moves every bar one tick. Active bars chase random targets with
// exponential smoothing; inactive bars decay linearly to zero.
func (v *Visualizer) Advance(active bool) {
	for i := range v.bars {
		b := &v.bars[i]
		if !active {
			b.Target = 0
			b.Height -= DecayStep
			if b.Height < snap {
				b.Height = 0
			}
			continue
		}

		if v.rng.Float64() < RetargetChance {
			b.Target = MinTarget + v.rng.Float64()*(MaxTarget-MinTarget)
		}
		b.Height += (b.Target - b.Height) * Smoothing
		b.Height = clamp01(b.Height)
	}
}

// Snapshot returns the current bar heights in display order.
func (v *Visualizer) Snapshot() []float64 {
	out := make([]float64, len(v.bars))
	for i, b := range v.bars {
		out[i] = b.Height
	}
	return out
}

// Bars returns a copy of the full bar state.
func (v *Visualizer) Bars() []Bar {
	out := make([]Bar, len(v.bars))
	copy(out, v.bars)
	return out
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
