// slope_constants.go - Shared constants for the dual slope generation engine

package main

const (
	SAMPLE_RATE = 44100

	// Stage time bounds in seconds after all offsets are applied
	MIN_STAGE_TIME = 0.001
	MAX_STAGE_TIME = 20.0

	// Measured sync period bounds in seconds (10ms to 10 seconds)
	MIN_SYNC_PERIOD = 0.01
	MAX_SYNC_PERIOD = 10.0

	// Breakpoint is capped below 100% so the pulse always fires before
	// the cycle completes
	MAX_BREAKPOINT = 0.9999

	// Freeze CV threshold. Strictly above freezes, strictly below thaws,
	// exactly at the threshold the previous state is kept.
	FREEZE_CV_THRESHOLD = 2.0

	// Trigger and sync inputs register high above this level
	GATE_THRESHOLD = 0.5
)

const (
	// CV attenuation applied before parameter clamping
	PARAM_CV_SCALE = 0.1
	RATE_CV_SCALE  = 0.2

	// Chaos perturbs curvature at half strength relative to stage times
	CHAOS_CURVE_SCALE = 0.5
)

const (
	// Output scaling to the 10-unit bipolar range of the surrounding system
	SLOPE_OUT_SCALE    = 10.0
	PULSE_OUT_SCALE    = 10.0
	DERIV_OUT_SCALE    = 5.0
	INTEGRAL_OUT_SCALE = 2.0
)

const (
	// Knob-to-seconds mapping: first half of travel is linear 0-1s,
	// second half is quadratic 1-5s
	STAGE_KNOB_SPLIT    = 0.5
	STAGE_LINEAR_SCALE  = 2.0
	STAGE_QUAD_BASE     = 1.0
	STAGE_QUAD_SCALE    = 4.0
	CURVE_LOG_EXP_SPAN  = 2.0 // exponent range [1,3] toward logarithmic
	CURVE_EXP_EXP_SPAN  = 8.0 // exponent range [1,9] toward exponential
	DEFAULT_SYNC_PERIOD = 1.0
)

// TriggerMode gates how a trigger rising edge is accepted against the
// channel's current stage.
type TriggerMode int

const (
	TRIG_ALWAYS TriggerMode = iota
	TRIG_RISE_ONLY
	TRIG_FALL_ONLY
	TRIG_COMPLETE_ONLY
)

func (m TriggerMode) String() string {
	switch m {
	case TRIG_ALWAYS:
		return "always"
	case TRIG_RISE_ONLY:
		return "rise"
	case TRIG_FALL_ONLY:
		return "fall"
	case TRIG_COMPLETE_ONLY:
		return "complete"
	}
	return "unknown"
}

// ParseTriggerMode maps a patch/control string to a TriggerMode. Unknown
// strings fall back to TRIG_ALWAYS, matching the engine's clamp-don't-reject
// policy.
func ParseTriggerMode(s string) TriggerMode {
	switch s {
	case "rise":
		return TRIG_RISE_ONLY
	case "fall":
		return TRIG_FALL_ONLY
	case "complete":
		return TRIG_COMPLETE_ONLY
	}
	return TRIG_ALWAYS
}
