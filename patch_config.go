// patch_config.go - YAML patch files
//
// A patch file is the user-facing way to set up both channels, the mix
// knob and the comparator windows before the engine starts. Flags stay
// for small overrides; the patch file is the primary surface.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChannelPatch is one slope channel's knob settings as represented in
// YAML. Knob values use the same 0..1 range as the panel; Mode takes the
// trigger mode names ("always", "rise", "fall", "complete").
type ChannelPatch struct {
	Rise       float64 `yaml:"rise"`
	Fall       float64 `yaml:"fall"`
	Curve      float64 `yaml:"curve"`
	Breakpoint float64 `yaml:"breakpoint"`
	Rate       float64 `yaml:"rate"`
	Chaos      float64 `yaml:"chaos"`
	Cycle      bool    `yaml:"cycle"`
	Mode       string  `yaml:"mode,omitempty"`
}

// WindowPatch positions one comparator channel's window.
type WindowPatch struct {
	Shift float64 `yaml:"shift"`
	Size  float64 `yaml:"size"`
}

// PatchConfig is the top-level YAML patch.
type PatchConfig struct {
	A   ChannelPatch `yaml:"a"`
	B   ChannelPatch `yaml:"b"`
	Mix float64      `yaml:"mix"`

	Windows [NUM_COMPARATOR_CHANNELS]WindowPatch `yaml:"windows,omitempty"`
}

// DefaultPatch mirrors the engine's power-on state: both channels at
// noon, mix centered, unit comparator windows.
func DefaultPatch() PatchConfig {
	ch := ChannelPatch{
		Rise:       0.5,
		Fall:       0.5,
		Breakpoint: 0.5,
		Rate:       0.5,
	}
	p := PatchConfig{A: ch, B: ch, Mix: 0.5}
	for i := range p.Windows {
		p.Windows[i] = WindowPatch{Shift: 0, Size: 1.0}
	}
	return p
}

// LoadPatchFile reads and parses a YAML patch file. Unknown fields are
// rejected to catch typos; out-of-range knob values are clamped by the
// engine, not here.
func LoadPatchFile(path string) (PatchConfig, error) {
	if path == "" {
		return PatchConfig{}, errors.New("patch path is empty")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return PatchConfig{}, fmt.Errorf("read patch file: %w", err)
	}

	patch := DefaultPatch()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&patch); err != nil {
		return PatchConfig{}, fmt.Errorf("decode patch yaml: %w", err)
	}
	if err := dec.Decode(&struct{}{}); err == nil {
		return PatchConfig{}, fmt.Errorf("decode patch yaml: unexpected trailing document")
	}

	return patch, nil
}

// channelConfig converts the YAML representation into the engine's
// channel configuration.
func (p ChannelPatch) channelConfig() ChannelConfig {
	return ChannelConfig{
		RiseTime:    p.Rise,
		FallTime:    p.Fall,
		Curve:       p.Curve,
		Breakpoint:  p.Breakpoint,
		Rate:        p.Rate,
		ChaosAmount: p.Chaos,
		Cycle:       p.Cycle,
		TrigMode:    ParseTriggerMode(p.Mode),
	}
}

// Apply pushes the patch into the slope engine and, if non-nil, the
// comparator.
func (p PatchConfig) Apply(engine *DualSlopeEngine, comparator *ComparatorEngine) {
	engine.SetChannelConfig(CHANNEL_A, p.A.channelConfig())
	engine.SetChannelConfig(CHANNEL_B, p.B.channelConfig())
	engine.SetMix(p.Mix)

	if comparator != nil {
		for i, w := range p.Windows {
			comparator.SetConfig(i, ComparatorConfig{Shift: w.Shift, Size: w.Size})
		}
	}
}
