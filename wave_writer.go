// wave_writer.go - Offline WAV rendering of the engine outputs

package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const WAVE_SAMPLE_SIZE = 2 // 16-bit mono

// WaveWriter accumulates 16-bit mono samples and writes a complete RIFF
// WAV file on Close. Samples are buffered so the header can be finalized
// with the real data size.
type WaveWriter struct {
	w           io.WriteCloser
	sampleRate  int
	sampleCount int
	bb          bytes.Buffer
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// NewWaveWriter wraps an io.Writer; Close must be called to emit the file.
func NewWaveWriter(w io.Writer, sampleRate int) *WaveWriter {
	return &WaveWriter{w: nopCloser{Writer: w}, sampleRate: sampleRate}
}

// NewWaveFile creates a WAV file at path.
func NewWaveFile(path string, sampleRate int) (*WaveWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &WaveWriter{w: f, sampleRate: sampleRate}, nil
}

func (w *WaveWriter) header() [0x2C]byte {
	dataSize := WAVE_SAMPLE_SIZE * w.sampleCount
	h := [0x2C]byte{
		'R', 'I', 'F', 'F',
		0, 0, 0, 0, //              length of rest of file
		'W', 'A', 'V', 'E',
		'f', 'm', 't', ' ',
		16, 0, 0, 0, //             size of fmt chunk
		1, 0, //                    uncompressed format
		1, 0, //                    mono
		0, 0, 0, 0, //              sample rate
		0, 0, 0, 0, //              bytes per second
		WAVE_SAMPLE_SIZE, 0, //     bytes per sample frame
		WAVE_SAMPLE_SIZE * 8, 0, // bits per sample
		'd', 'a', 't', 'a',
		0, 0, 0, 0, //              size of sample data
	}

	binary.LittleEndian.PutUint32(h[0x04:], uint32(len(h)-8+dataSize))
	binary.LittleEndian.PutUint32(h[0x18:], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(h[0x1C:], uint32(w.sampleRate)*WAVE_SAMPLE_SIZE)
	binary.LittleEndian.PutUint32(h[0x28:], uint32(dataSize))
	return h
}

// WriteSample appends one sample in the -1..1 float range.
func (w *WaveWriter) WriteSample(s float32) {
	if s > 1.0 {
		s = 1.0
	} else if s < -1.0 {
		s = -1.0
	}
	var buf [WAVE_SAMPLE_SIZE]byte
	binary.LittleEndian.PutUint16(buf[:], uint16(int16(s*32767)))
	w.bb.Write(buf[:])
	w.sampleCount++
}

// SampleCount returns the number of samples written so far.
func (w *WaveWriter) SampleCount() int { return w.sampleCount }

// Close finalizes the wave file. It must be called when done writing samples.
func (w *WaveWriter) Close() error {
	hdr := w.header()
	if _, err := w.w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(w.bb.Bytes()); err != nil {
		return err
	}

	w.bb.Reset()
	w.sampleCount = 0

	return w.w.Close()
}

// RenderWave drives the engine at the audio rate for the given duration and
// writes the mixed output to a WAV file.
func RenderWave(engine *DualSlopeEngine, path string, seconds float64) error {
	if seconds <= 0 {
		return fmt.Errorf("render duration must be positive, got %g", seconds)
	}

	w, err := NewWaveFile(path, engine.sampleRate)
	if err != nil {
		return err
	}

	total := int(seconds * float64(engine.sampleRate))
	for i := 0; i < total; i++ {
		w.WriteSample(engine.GenerateSample())
	}
	return w.Close()
}
