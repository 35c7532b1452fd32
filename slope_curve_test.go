// slope_curve_test.go - Curve shaping and chaos source tests

package main

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestApplyCurve_EndpointsPreserved verifies that every curvature maps
// phase 0 to 0 and phase 1 to 1.
func TestApplyCurve_EndpointsPreserved(t *testing.T) {
	curves := []float64{-1.0, -0.5, -0.1, 0.0, 0.1, 0.5, 1.0}

	for _, curve := range curves {
		if got := applyCurve(0.0, curve); got != 0.0 {
			t.Errorf("applyCurve(0, %g) = %g, want 0", curve, got)
		}
		if got := applyCurve(1.0, curve); math.Abs(got-1.0) > 1e-12 {
			t.Errorf("applyCurve(1, %g) = %g, want 1", curve, got)
		}
	}
}

// TestApplyCurve_Direction verifies that negative curvature bends the
// midpoint below linear and positive curvature bends it above.
func TestApplyCurve_Direction(t *testing.T) {
	tests := []struct {
		name  string
		curve float64
		check func(mid float64) bool
	}{
		{"linear", 0.0, func(mid float64) bool { return mid == 0.5 }},
		{"logarithmic", -0.7, func(mid float64) bool { return mid < 0.5 }},
		{"exponential", 0.7, func(mid float64) bool { return mid > 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mid := applyCurve(0.5, tt.curve)
			if !tt.check(mid) {
				t.Errorf("applyCurve(0.5, %g) = %g, wrong side of linear", tt.curve, mid)
			}
		})
	}
}

// TestApplyCurve_Monotonic verifies the shaped phase never decreases as
// the raw phase advances, for any curvature.
func TestApplyCurve_Monotonic(t *testing.T) {
	for _, curve := range []float64{-1.0, -0.3, 0.0, 0.3, 1.0} {
		prev := applyCurve(0.0, curve)
		for p := 0.01; p <= 1.0; p += 0.01 {
			got := applyCurve(p, curve)
			if got < prev {
				t.Fatalf("applyCurve not monotonic at phase %g curve %g: %g < %g", p, curve, got, prev)
			}
			prev = got
		}
	}
}

// TestShapedValue_FallMirrorsRise verifies the fall stage traverses 1 to 0
// as its phase advances.
func TestShapedValue_FallMirrorsRise(t *testing.T) {
	if got := shapedValue(0.0, 0.0, false); got != 1.0 {
		t.Errorf("fall start = %g, want 1", got)
	}
	if got := shapedValue(1.0, 0.0, false); got != 0.0 {
		t.Errorf("fall end = %g, want 0", got)
	}
	if got := shapedValue(0.25, 0.0, false); got != 0.75 {
		t.Errorf("fall quarter = %g, want 0.75", got)
	}
}

// TestChaosEffect_ZeroAmount verifies a zero chaos amount disables the
// perturbation regardless of the held seed.
func TestChaosEffect_ZeroAmount(t *testing.T) {
	if got := chaosEffect(0.9, 0.0); got != 0.0 {
		t.Errorf("chaosEffect(0.9, 0) = %g, want 0", got)
	}
	if got := chaosEffect(0.5, 0.5); got != 0.25 {
		t.Errorf("chaosEffect(0.5, 0.5) = %g, want 0.25", got)
	}
}

// TestChaosSource_Deterministic verifies two sources with the same seed
// hand out identical sequences, and that draws stay within [-1,1].
func TestChaosSource_Deterministic(t *testing.T) {
	a := NewChaosSource(42)
	b := NewChaosSource(42)

	var seqA, seqB []float64
	for i := 0; i < 64; i++ {
		va, vb := a.Draw(), b.Draw()
		if va < -1.0 || va > 1.0 {
			t.Fatalf("draw %d out of range: %g", i, va)
		}
		seqA = append(seqA, va)
		seqB = append(seqB, vb)
	}

	if diff := cmp.Diff(seqA, seqB); diff != "" {
		t.Errorf("same-seed sequences differ (-a +b):\n%s", diff)
	}
}
