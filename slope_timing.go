// slope_timing.go - Knob-to-seconds mapping and stage time conditioning

package main

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// stageSeconds maps a raw 0-1 knob position to a stage time in seconds.
// The first half of the travel is linear (0 to 1 second) for precise short
// slopes; the second half accelerates quadratically (1 to 5 seconds).
func stageSeconds(raw float64) float64 {
	raw = clampf(raw, 0.0, 1.0)
	if raw <= STAGE_KNOB_SPLIT {
		return raw * STAGE_LINEAR_SCALE
	}
	x := (raw - STAGE_KNOB_SPLIT) * 2.0
	return STAGE_QUAD_BASE + x*x*STAGE_QUAD_SCALE
}

// rateOffset converts the rate knob (noon = 0.5) and its CV into a seconds
// offset applied identically to both stage times.
func rateOffset(rate, rateCV float64) float64 {
	return (rate-0.5)*2.0 + rateCV*RATE_CV_SCALE
}

// stageTimes conditions both stage times for one tick: knob mapping, chaos
// scaling, rate offset, and the final safety clamp.
func stageTimes(riseRaw, fallRaw, chaosEffect, rate, rateCV float64) (rise, fall float64) {
	rise = stageSeconds(riseRaw)
	fall = stageSeconds(fallRaw)

	if chaosEffect != 0 {
		rise *= 1.0 + chaosEffect
		fall *= 1.0 + chaosEffect
	}

	off := rateOffset(rate, rateCV)
	rise = clampf(rise+off, MIN_STAGE_TIME, MAX_STAGE_TIME)
	fall = clampf(fall+off, MIN_STAGE_TIME, MAX_STAGE_TIME)
	return rise, fall
}

// syncScale returns the multiplicative rescale that makes one full
// rise+fall cycle complete in period seconds.
func syncScale(period, rise, fall float64) float64 {
	total := rise + fall
	if total <= 0 || period <= 0 {
		return 1.0
	}
	return period / total
}
