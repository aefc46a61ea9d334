package visualizer

import (
	"image/color"
	"math"
	"math/rand"
)

// Fire palette parameters.
const (
	FireAlpha = 230

	FlickerChance   = 0.3
	FlickerMinRows  = 2
	FlickerMaxRows  = 5
	FlickerRowKeep  = 0.7
	FlickerBrighten = 0.2
)

// FireColor maps a height fraction to a non-premultiplied flame color.
// The ramp runs black → red → yellow → white in four contiguous bands.
func FireColor(p float64) color.NRGBA {
	p = clamp01(p)
	switch {
	case p < 0.2:
		return color.NRGBA{R: ramp(p * 5), A: FireAlpha}
	case p < 0.4:
		return color.NRGBA{R: 255, G: ramp((p - 0.2) * 5), A: FireAlpha}
	case p < 0.6:
		return color.NRGBA{R: 255, G: 255, B: ramp((p - 0.4) * 5), A: FireAlpha}
	default:
		b := 128 + int((p-0.6)*2.5*255)
		if b > 255 {
			b = 255
		}
		return color.NRGBA{R: 255, G: 255, B: uint8(b), A: FireAlpha}
	}
}

// TipColor is the brighter color used for flame-tip rows above a bar whose
// top sits at height fraction p.
func TipColor(p float64) color.NRGBA {
	return FireColor(math.Min(1, p+FlickerBrighten))
}

// FlameTip decides the flicker drawn above a bar's top row. It returns the
// row offsets above the top (1 = directly above) that should be lit, or nil
// when this bar does not flicker this frame.
func FlameTip(rng *rand.Rand) []int {
	if rng.Float64() >= FlickerChance {
		return nil
	}
	n := FlickerMinRows + rng.Intn(FlickerMaxRows-FlickerMinRows+1)
	rows := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		if rng.Float64() < FlickerRowKeep {
			rows = append(rows, i)
		}
	}
	return rows
}

func ramp(f float64) uint8 {
	v := int(f * 255)
	if v > 255 {
		v = 255
	}
	if v < 0 {
		v = 0
	}
	return uint8(v)
}
