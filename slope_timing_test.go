// slope_timing_test.go - Knob mapping and stage time conditioning tests

package main

import (
	"math"
	"testing"
)

// TestStageSeconds_KnobMapping verifies the two-segment knob law: linear
// 0-1s over the first half of travel, quadratic 1-5s over the second.
func TestStageSeconds_KnobMapping(t *testing.T) {
	tests := []struct {
		raw  float64
		want float64
	}{
		{0.0, 0.0},
		{0.25, 0.5},
		{0.5, 1.0},
		{0.75, 2.0},
		{1.0, 5.0},
		{-0.2, 0.0}, // clamped
		{1.5, 5.0},  // clamped
	}

	for _, tt := range tests {
		if got := stageSeconds(tt.raw); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("stageSeconds(%g) = %g, want %g", tt.raw, got, tt.want)
		}
	}
}

// TestRateOffset verifies noon is neutral and the CV contributes at its
// own attenuation.
func TestRateOffset(t *testing.T) {
	if got := rateOffset(0.5, 0.0); got != 0.0 {
		t.Errorf("rateOffset(0.5, 0) = %g, want 0", got)
	}
	if got := rateOffset(1.0, 0.0); got != 1.0 {
		t.Errorf("rateOffset(1, 0) = %g, want 1", got)
	}
	if got := rateOffset(0.5, 1.0); math.Abs(got-RATE_CV_SCALE) > 1e-12 {
		t.Errorf("rateOffset(0.5, 1) = %g, want %g", got, RATE_CV_SCALE)
	}
}

// TestStageTimes_Conditioning verifies chaos scaling, the shared rate
// offset and the final clamp.
func TestStageTimes_Conditioning(t *testing.T) {
	tests := []struct {
		name                string
		riseRaw, fallRaw    float64
		chaos, rate, rateCV float64
		wantRise, wantFall  float64
	}{
		{"noon neutral", 0.5, 0.5, 0, 0.5, 0, 1.0, 1.0},
		{"chaos stretches", 0.5, 0.5, 0.5, 0.5, 0, 1.5, 1.5},
		{"chaos shrinks", 0.5, 0.5, -0.5, 0.5, 0, 0.5, 0.5},
		{"rate adds to both", 0.25, 0.5, 0, 1.0, 0, 1.5, 2.0},
		{"clamped low", 0.0, 0.0, 0, 0.0, 0, MIN_STAGE_TIME, MIN_STAGE_TIME},
		{"full stretch", 1.0, 1.0, 1.0, 1.0, 1.0, 11.2, 11.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rise, fall := stageTimes(tt.riseRaw, tt.fallRaw, tt.chaos, tt.rate, tt.rateCV)
			if math.Abs(rise-tt.wantRise) > 1e-9 || math.Abs(fall-tt.wantFall) > 1e-9 {
				t.Errorf("stageTimes = (%g, %g), want (%g, %g)", rise, fall, tt.wantRise, tt.wantFall)
			}
		})
	}
}

// TestSyncScale verifies the cycle is rescaled to fit the measured period
// and that degenerate inputs fall back to unity.
func TestSyncScale(t *testing.T) {
	if got := syncScale(2.0, 0.5, 0.5); got != 2.0 {
		t.Errorf("syncScale(2, 0.5, 0.5) = %g, want 2", got)
	}
	if got := syncScale(1.0, 1.0, 1.0); got != 0.5 {
		t.Errorf("syncScale(1, 1, 1) = %g, want 0.5", got)
	}
	if got := syncScale(0.0, 1.0, 1.0); got != 1.0 {
		t.Errorf("syncScale(0, 1, 1) = %g, want 1", got)
	}
	if got := syncScale(1.0, 0.0, 0.0); got != 1.0 {
		t.Errorf("syncScale(1, 0, 0) = %g, want 1", got)
	}
}
