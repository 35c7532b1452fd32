// slope_combiner.go - Stateless combination of the two channel outputs

package main

import "math"

// CombinerOutputs holds the four combined signals recomputed every tick
// from the latest channel values. All values are in the channels' 0-1
// domain before output scaling (sum may reach 2).
type CombinerOutputs struct {
	Mixed float64
	Min   float64
	Max   float64
	Sum   float64
}

// combine crossfades and combines the two channel values. mix=0 is all A,
// mix=1 is all B.
func combine(valueA, valueB, mix float64) CombinerOutputs {
	mix = clampf(mix, 0.0, 1.0)
	return CombinerOutputs{
		Mixed: valueA*(1.0-mix) + valueB*mix,
		Min:   math.Min(valueA, valueB),
		Max:   math.Max(valueA, valueB),
		Sum:   valueA + valueB,
	}
}
