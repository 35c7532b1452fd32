// patch_config_test.go - YAML patch loading tests

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writePatch(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "patch.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write patch: %v", err)
	}
	return path
}

// TestLoadPatchFile verifies YAML fields land in the patch and absent
// sections keep their defaults.
func TestLoadPatchFile(t *testing.T) {
	path := writePatch(t, `
a:
  rise: 0.25
  fall: 0.75
  cycle: true
  mode: complete
mix: 0.8
windows:
  - shift: 1.0
    size: 2.0
  - shift: -1.0
    size: 0.5
  - {}
  - {}
`)

	patch, err := LoadPatchFile(path)
	if err != nil {
		t.Fatalf("LoadPatchFile: %v", err)
	}

	// Breakpoint and rate stay at their noon defaults.
	wantA := ChannelPatch{Rise: 0.25, Fall: 0.75, Breakpoint: 0.5, Rate: 0.5, Cycle: true, Mode: "complete"}
	if diff := cmp.Diff(wantA, patch.A); diff != "" {
		t.Errorf("channel A mismatch (-want +got):\n%s", diff)
	}
	if patch.B.Rise != 0.5 || patch.B.Cycle {
		t.Errorf("channel B should keep defaults, got %+v", patch.B)
	}
	if patch.Mix != 0.8 {
		t.Errorf("mix = %g, want 0.8", patch.Mix)
	}
	if patch.Windows[0].Shift != 1.0 || patch.Windows[1].Size != 0.5 {
		t.Errorf("windows mismatch: %+v", patch.Windows)
	}
}

// TestLoadPatchFile_Errors verifies unknown fields, missing files and an
// empty path are rejected.
func TestLoadPatchFile_Errors(t *testing.T) {
	if _, err := LoadPatchFile(""); err == nil {
		t.Errorf("empty path should error")
	}
	if _, err := LoadPatchFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("missing file should error")
	}

	path := writePatch(t, "bogus_field: 1\n")
	if _, err := LoadPatchFile(path); err == nil {
		t.Errorf("unknown field should error")
	}
}

// TestChannelPatch_Conversion verifies the YAML representation maps onto
// the engine configuration, including the trigger mode names.
func TestChannelPatch_Conversion(t *testing.T) {
	tests := []struct {
		mode string
		want TriggerMode
	}{
		{"", TRIG_ALWAYS},
		{"always", TRIG_ALWAYS},
		{"rise", TRIG_RISE_ONLY},
		{"fall", TRIG_FALL_ONLY},
		{"complete", TRIG_COMPLETE_ONLY},
		{"garbage", TRIG_ALWAYS},
	}

	for _, tt := range tests {
		p := ChannelPatch{Rise: 0.3, Fall: 0.7, Chaos: 0.2, Cycle: true, Mode: tt.mode}
		cfg := p.channelConfig()
		if cfg.TrigMode != tt.want {
			t.Errorf("mode %q = %v, want %v", tt.mode, cfg.TrigMode, tt.want)
		}
		if cfg.RiseTime != 0.3 || cfg.FallTime != 0.7 || cfg.ChaosAmount != 0.2 || !cfg.Cycle {
			t.Errorf("conversion mismatch: %+v", cfg)
		}
	}
}

// TestPatchConfig_Apply verifies the patch lands in the engine and the
// comparator.
func TestPatchConfig_Apply(t *testing.T) {
	e := newTestEngine(t)
	c := NewComparatorEngine()

	patch := DefaultPatch()
	patch.A.Rise = 0.9
	patch.B.Mode = "fall"
	patch.Mix = 0.25
	patch.Windows[2] = WindowPatch{Shift: 3.0, Size: 0.5}
	patch.Apply(e, c)

	if got := e.channels[CHANNEL_A].Config().RiseTime; got != 0.9 {
		t.Errorf("engine rise = %g, want 0.9", got)
	}
	if got := e.channels[CHANNEL_B].Config().TrigMode; got != TRIG_FALL_ONLY {
		t.Errorf("engine mode = %v, want fall-only", got)
	}
	if e.mix != 0.25 {
		t.Errorf("engine mix = %g, want 0.25", e.mix)
	}
	if c.channels[2].cfg.Shift != 3.0 {
		t.Errorf("comparator window not applied: %+v", c.channels[2].cfg)
	}
}
