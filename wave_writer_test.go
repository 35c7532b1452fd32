// wave_writer_test.go - WAV output tests

package main

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// TestWaveWriter_Header verifies the finalized RIFF header matches the
// written sample count and rate.
func TestWaveWriter_Header(t *testing.T) {
	var buf bytes.Buffer
	w := NewWaveWriter(&buf, 44100)

	for i := 0; i < 100; i++ {
		w.WriteSample(0.5)
	}
	if w.SampleCount() != 100 {
		t.Fatalf("sample count = %d, want 100", w.SampleCount())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b := buf.Bytes()
	if len(b) != 0x2C+100*WAVE_SAMPLE_SIZE {
		t.Fatalf("file size = %d, want %d", len(b), 0x2C+100*WAVE_SAMPLE_SIZE)
	}
	if string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" || string(b[36:40]) != "data" {
		t.Errorf("chunk markers wrong: %q %q %q", b[0:4], b[8:12], b[36:40])
	}
	if got := binary.LittleEndian.Uint32(b[0x18:]); got != 44100 {
		t.Errorf("sample rate field = %d, want 44100", got)
	}
	if got := binary.LittleEndian.Uint32(b[0x28:]); got != 100*WAVE_SAMPLE_SIZE {
		t.Errorf("data size field = %d, want %d", got, 100*WAVE_SAMPLE_SIZE)
	}
	if got := binary.LittleEndian.Uint32(b[0x04:]); got != uint32(len(b)-8) {
		t.Errorf("riff size field = %d, want %d", got, len(b)-8)
	}
}

// TestWaveWriter_SampleClamping verifies out-of-range samples clamp to
// full scale.
func TestWaveWriter_SampleClamping(t *testing.T) {
	var buf bytes.Buffer
	w := NewWaveWriter(&buf, 44100)
	w.WriteSample(2.0)
	w.WriteSample(-2.0)
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b := buf.Bytes()
	if got := int16(binary.LittleEndian.Uint16(b[0x2C:])); got != 32767 {
		t.Errorf("clamped high sample = %d, want 32767", got)
	}
	if got := int16(binary.LittleEndian.Uint16(b[0x2E:])); got != -32767 {
		t.Errorf("clamped low sample = %d, want -32767", got)
	}
}

// TestRenderWave verifies a short offline render produces a complete file
// of the expected length, and that a non-positive duration is rejected.
func TestRenderWave(t *testing.T) {
	e := newTestEngine(t)
	e.Start()
	defer e.Stop()

	path := filepath.Join(t.TempDir(), "out.wav")
	if err := RenderWave(e, path, 0.1); err != nil {
		t.Fatalf("RenderWave: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat rendered file: %v", err)
	}
	wantSamples := int64(0.1 * SAMPLE_RATE)
	if info.Size() != 0x2C+wantSamples*WAVE_SAMPLE_SIZE {
		t.Errorf("rendered size = %d, want %d", info.Size(), 0x2C+wantSamples*WAVE_SAMPLE_SIZE)
	}

	if err := RenderWave(e, path, 0); err == nil {
		t.Errorf("zero duration should error")
	}
}
