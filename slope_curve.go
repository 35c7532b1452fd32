// slope_curve.go - Phase curve shaping and per-cycle chaos source

package main

import (
	"math"
	"math/rand"
)

// applyCurve maps a stage-local phase in [0,1] to a shaped phase.
// curve < 0 bends toward logarithmic (slow start, snappy end), curve > 0
// toward a much snappier exponential (fast start, slow end), 0 is linear.
// Endpoints are preserved for every curvature: f(0)=0 and f(1)=1.
func applyCurve(phase, curve float64) float64 {
	if curve < 0 {
		shape := -curve
		return math.Pow(phase, 1.0+shape*CURVE_LOG_EXP_SPAN)
	}
	if curve > 0 {
		return 1.0 - math.Pow(1.0-phase, 1.0+curve*CURVE_EXP_EXP_SPAN)
	}
	return phase
}

// shapedValue computes the channel output for the current stage. The rise
// stage traverses 0 to 1 and the fall stage mirrors it back down, so the
// full cycle always spans 0-1-0 regardless of curvature.
func shapedValue(phase, curve float64, rising bool) float64 {
	p := phase
	if curve != 0 {
		p = applyCurve(phase, curve)
	}
	if rising {
		return p
	}
	return 1.0 - p
}

// ChaosSource hands out uniform seeds in [-1,1]. It wraps a single seeded
// generator so that every per-cycle redraw in the engine is reproducible
// from one seed value; redraws happen only at the defined cycle-start
// events, never ambiently.
type ChaosSource struct {
	rng *rand.Rand
}

func NewChaosSource(seed int64) *ChaosSource {
	return &ChaosSource{rng: rand.New(rand.NewSource(seed))}
}

// Draw returns the next seed value in [-1,1].
func (c *ChaosSource) Draw() float64 {
	return (c.rng.Float64() - 0.5) * 2.0
}

// chaosEffect combines the held per-cycle seed with the chaos amount knob.
// Zero amount disables perturbation no matter what the seed holds.
func chaosEffect(seed, amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return seed * amount
}
