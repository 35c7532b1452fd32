// audio_output.go - Audio output backend selection

package main

import "fmt"

const (
	AUDIO_BACKEND_OTO = iota
	AUDIO_BACKEND_HEADLESS
)

// AudioOutput abstracts the realtime audio backend so the engine can run
// against a sound device or fully headless (tests, offline render).
type AudioOutput interface {
	Start()
	Stop()
	Close()
	IsStarted() bool
}

// SampleSource is implemented by engines that can be pulled one sample at
// a time by an output backend.
type SampleSource interface {
	ReadSample() float32
}

func NewAudioOutput(backend int, sampleRate int, source SampleSource) (AudioOutput, error) {
	switch backend {
	case AUDIO_BACKEND_OTO:
		player, err := NewOtoPlayer(sampleRate)
		if err != nil {
			return nil, err
		}
		player.SetupPlayer(source)
		return player, nil
	case AUDIO_BACKEND_HEADLESS:
		return &NullOutput{}, nil
	}
	return nil, fmt.Errorf("unknown audio backend %d", backend)
}

// NullOutput discards everything. Used for offline rendering and tests,
// where the caller drives the engine directly.
type NullOutput struct {
	started bool
}

func (n *NullOutput) Start()          { n.started = true }
func (n *NullOutput) Stop()           { n.started = false }
func (n *NullOutput) Close()          { n.started = false }
func (n *NullOutput) IsStarted() bool { return n.started }
