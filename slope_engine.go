// slope_engine.go - Dual slope generation engine
//
// DualSlopeEngine owns the two slope channels, the accumulating clock used
// for sync period measurement, and the external input levels for each
// channel. Control writes are serialized against the audio pull goroutine
// with a mutex, the same split the sound chip uses between register writes
// and sample generation.

package main

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

const (
	CHANNEL_A          = 0
	CHANNEL_B          = 1
	NUM_SLOPE_CHANNELS = 2
)

type channelPulses struct {
	trigger bool
	sync    bool
	freeze  bool
}

type DualSlopeEngine struct {
	mutex sync.Mutex

	channels [NUM_SLOPE_CHANNELS]*SlopeChannel
	inputs   [NUM_SLOPE_CHANNELS]TickInputs
	pulses   [NUM_SLOPE_CHANNELS]channelPulses

	mix         float64
	currentTime float64
	sampleRate  int
	enabled     bool

	chaos  *ChaosSource
	output AudioOutput
}

// ChannelFrame is one channel's scaled outputs plus observable state for
// one tick.
type ChannelFrame struct {
	Slope      float64 `json:"slope"`
	End        float64 `json:"end"`
	Pulse      float64 `json:"pulse"`
	Breakpoint float64 `json:"breakpoint"`
	Derivative float64 `json:"derivative"`
	Integral   float64 `json:"integral"`
	Phase      float64 `json:"phase"`
	Rising     bool    `json:"rising"`
	Frozen     bool    `json:"frozen"`
	Activity   float64 `json:"activity"`
}

// EngineFrame is the full per-tick output snapshot, including the combiner.
type EngineFrame struct {
	Time float64      `json:"time"`
	A    ChannelFrame `json:"a"`
	B    ChannelFrame `json:"b"`
	Mix  float64      `json:"mix"`
	Min  float64      `json:"min"`
	Max  float64      `json:"max"`
	Sum  float64      `json:"sum"`
}

func NewDualSlopeEngine(backend int, sampleRate int, seed int64) (*DualSlopeEngine, error) {
	e := &DualSlopeEngine{
		mix:        0.5,
		sampleRate: sampleRate,
		chaos:      NewChaosSource(seed),
	}

	for i := range e.channels {
		e.channels[i] = NewSlopeChannel(ChannelConfig{
			RiseTime:   0.5,
			FallTime:   0.5,
			Breakpoint: 0.5,
			Rate:       0.5,
		}, e.chaos)
		e.inputs[i] = TickInputs{TriggerConnected: true}
	}

	output, err := NewAudioOutput(backend, sampleRate, e)
	if err != nil {
		return nil, err
	}
	e.output = output
	return e, nil
}

func (e *DualSlopeEngine) Start() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.enabled = true
	e.output.Start()
}

func (e *DualSlopeEngine) Stop() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.enabled = false
	e.output.Stop()
	e.output.Close()
}

// Reset returns both channels and the clock to their initial state.
func (e *DualSlopeEngine) Reset() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for i := range e.channels {
		e.channels[i].Reset()
	}
	e.currentTime = 0
}

// Tick advances both channels by one sample tick. Callers driving the
// engine directly (offline render, tests) use this; the audio backends go
// through GenerateSample.
func (e *DualSlopeEngine) Tick(deltaTime float64) EngineFrame {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.tickLocked(deltaTime)
}

func (e *DualSlopeEngine) tickLocked(deltaTime float64) EngineFrame {
	e.currentTime += deltaTime

	for i := range e.channels {
		in := e.inputs[i]
		if e.pulses[i].trigger {
			in.Trigger = true
		}
		if e.pulses[i].sync {
			in.Sync = true
		}
		if e.pulses[i].freeze {
			in.FreezeButton = true
		}
		e.channels[i].Tick(in, deltaTime, e.currentTime)
		e.pulses[i] = channelPulses{}
	}

	return e.frameLocked()
}

func channelFrame(ch *SlopeChannel) ChannelFrame {
	f := ChannelFrame{
		Slope:      ch.value * SLOPE_OUT_SCALE,
		Derivative: ch.derivative * DERIV_OUT_SCALE,
		Integral:   ch.integral * INTEGRAL_OUT_SCALE,
		Phase:      ch.phase,
		Rising:     ch.rising,
		Frozen:     ch.frozen,
		Activity:   ch.value,
	}
	if ch.endPulse {
		f.End = PULSE_OUT_SCALE
		f.Pulse = PULSE_OUT_SCALE
	}
	if ch.breakpointPulse {
		f.Breakpoint = PULSE_OUT_SCALE
	}
	return f
}

func (e *DualSlopeEngine) frameLocked() EngineFrame {
	comb := combine(e.channels[CHANNEL_A].value, e.channels[CHANNEL_B].value, e.mix)
	return EngineFrame{
		Time: e.currentTime,
		A:    channelFrame(e.channels[CHANNEL_A]),
		B:    channelFrame(e.channels[CHANNEL_B]),
		Mix:  comb.Mixed * SLOPE_OUT_SCALE,
		Min:  comb.Min * SLOPE_OUT_SCALE,
		Max:  comb.Max * SLOPE_OUT_SCALE,
		Sum:  comb.Sum * SLOPE_OUT_SCALE,
	}
}

// Frame returns the current output snapshot without advancing time.
func (e *DualSlopeEngine) Frame() EngineFrame {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.frameLocked()
}

// GenerateSample advances one tick at the audio rate and maps the mixed
// output into the -1..1 sample range for the audio backend.
func (e *DualSlopeEngine) GenerateSample() float32 {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.enabled {
		return 0
	}

	e.tickLocked(1.0 / float64(e.sampleRate))
	comb := combine(e.channels[CHANNEL_A].value, e.channels[CHANNEL_B].value, e.mix)
	sample := comb.Mixed*2.0 - 1.0
	return float32(math.Max(math.Min(sample, 1.0), -1.0))
}

func (e *DualSlopeEngine) ReadSample() float32 {
	return e.GenerateSample()
}

// TriggerPulse raises the channel's trigger level for exactly one tick.
func (e *DualSlopeEngine) TriggerPulse(ch int) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if ch >= 0 && ch < NUM_SLOPE_CHANNELS {
		e.pulses[ch].trigger = true
	}
}

// SyncPulse raises the channel's sync level for exactly one tick.
func (e *DualSlopeEngine) SyncPulse(ch int) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if ch >= 0 && ch < NUM_SLOPE_CHANNELS {
		e.pulses[ch].sync = true
	}
}

// FreezePress emulates one press of the channel's freeze button.
func (e *DualSlopeEngine) FreezePress(ch int) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if ch >= 0 && ch < NUM_SLOPE_CHANNELS {
		e.pulses[ch].freeze = true
	}
}

func (e *DualSlopeEngine) SetMix(mix float64) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.mix = clampf(mix, 0.0, 1.0)
}

func (e *DualSlopeEngine) SetChannelConfig(ch int, cfg ChannelConfig) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if ch >= 0 && ch < NUM_SLOPE_CHANNELS {
		e.channels[ch].SetConfig(cfg)
	}
}

func (e *DualSlopeEngine) SetChannelInputs(ch int, in TickInputs) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if ch >= 0 && ch < NUM_SLOPE_CHANNELS {
		e.inputs[ch] = in
	}
}

// ControlMessage is one external control write, as carried over the scope
// server's JSON protocol. Target is "mix" or "<a|b>.<name>".
type ControlMessage struct {
	Target string  `json:"target"`
	Value  float64 `json:"value"`
}

// Apply routes a control write to the engine. Out-of-range values are
// clamped by the consuming code paths rather than rejected; only an
// unknown target is an error.
func (e *DualSlopeEngine) Apply(msg ControlMessage) error {
	if msg.Target == "mix" {
		e.SetMix(msg.Value)
		return nil
	}

	prefix, name, ok := strings.Cut(msg.Target, ".")
	if !ok {
		return fmt.Errorf("unknown control target %q", msg.Target)
	}
	var ch int
	switch prefix {
	case "a":
		ch = CHANNEL_A
	case "b":
		ch = CHANNEL_B
	default:
		return fmt.Errorf("unknown channel %q", prefix)
	}

	switch name {
	case "trigger":
		e.TriggerPulse(ch)
	case "sync":
		e.SyncPulse(ch)
	case "freeze":
		e.FreezePress(ch)
	default:
		return e.applyChannelControl(ch, name, msg.Value)
	}
	return nil
}

func (e *DualSlopeEngine) applyChannelControl(ch int, name string, value float64) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	cfg := e.channels[ch].Config()
	in := &e.inputs[ch]

	switch name {
	case "rise":
		cfg.RiseTime = value
	case "fall":
		cfg.FallTime = value
	case "curve":
		cfg.Curve = value
	case "breakpoint":
		cfg.Breakpoint = value
	case "rate":
		cfg.Rate = value
	case "chaos":
		cfg.ChaosAmount = value
	case "cycle":
		cfg.Cycle = value != 0
	case "mode":
		cfg.TrigMode = TriggerMode(int(clampf(value, 0, 3)))
	case "rise_cv":
		in.RiseCV = value
	case "fall_cv":
		in.FallCV = value
	case "curve_cv":
		in.CurveCV = value
	case "breakpoint_cv":
		in.BreakpointCV = value
	case "rate_cv":
		in.RateCV = value
	case "chaos_cv":
		in.ChaosCV = value
	case "freeze_cv":
		in.FreezeCV = value
		in.FreezeCVConnected = true
	case "trigger_level":
		in.Trigger = value > GATE_THRESHOLD
	case "trigger_connected":
		in.TriggerConnected = value != 0
	case "sync_level":
		in.Sync = value > GATE_THRESHOLD
	case "sync_connected":
		in.SyncConnected = value != 0
	default:
		return fmt.Errorf("unknown control %q", name)
	}

	e.channels[ch].SetConfig(cfg)
	return nil
}
