// slope_channel.go - Per-channel slope generation state machine
//
// One SlopeChannel owns all state for one slope generator: the two-stage
// rise/fall cycle, trigger/sync edge detection, the pulse-to-pulse sync
// period tracker, the per-cycle chaos seed, freeze handling, the breakpoint
// latch and the derivative/integral estimators. It is advanced exactly once
// per sample tick by its owning engine and is never shared.

package main

// ChannelConfig holds the knob positions and mode switches for one channel.
// It is read each tick and never mutated by the channel itself.
type ChannelConfig struct {
	RiseTime    float64 // raw knob 0-1, mapped non-linearly to seconds
	FallTime    float64 // raw knob 0-1
	Curve       float64 // -1 log .. 0 linear .. +1 exp
	Breakpoint  float64 // fraction of the full cycle, 0-1
	Rate        float64 // 0-1, noon = 0.5
	ChaosAmount float64 // 0-1
	Cycle       bool    // self-restart at cycle end
	TrigMode    TriggerMode
}

// TickInputs carries the external levels sampled for one tick: gate levels,
// connection status and the CV offsets of every parameter.
type TickInputs struct {
	Trigger          bool
	TriggerConnected bool
	Sync             bool
	SyncConnected    bool

	RiseCV       float64
	FallCV       float64
	CurveCV      float64
	BreakpointCV float64
	RateCV       float64
	ChaosCV      float64

	FreezeButton      bool
	FreezeCV          float64
	FreezeCVConnected bool
}

type SlopeChannel struct {
	cfg   ChannelConfig
	chaos *ChaosSource

	// Cycle state
	phase  float64 // position within the current stage only
	rising bool
	value  float64

	// Estimator state
	prevValue  float64
	derivative float64
	integral   float64

	// Pulse outputs
	endPulse        bool
	breakpointPulse bool // latched until the full cycle completes

	// Per-cycle random perturbation, redrawn only at cycle-start events
	chaosSeed float64

	// Edge detector memory
	prevTrigger   bool
	prevSync      bool
	prevFreezeBtn bool

	// Sync period tracker (minimal PLL)
	lastSyncTime float64
	syncPeriod   float64

	frozen bool
}

func NewSlopeChannel(cfg ChannelConfig, chaos *ChaosSource) *SlopeChannel {
	ch := &SlopeChannel{
		cfg:        cfg,
		chaos:      chaos,
		rising:     true,
		syncPeriod: DEFAULT_SYNC_PERIOD,
	}
	ch.chaosSeed = chaos.Draw()
	return ch
}

func (ch *SlopeChannel) Config() ChannelConfig       { return ch.cfg }
func (ch *SlopeChannel) SetConfig(cfg ChannelConfig) { ch.cfg = cfg }

// Value returns the channel's unscaled output in [0,1].
func (ch *SlopeChannel) Value() float64 { return ch.value }

// Reset returns the channel to its idle state. Edge detector memory is
// cleared so a reconnected input cannot produce a ghost edge.
func (ch *SlopeChannel) Reset() {
	ch.phase = 0
	ch.rising = true
	ch.value = 0
	ch.prevValue = 0
	ch.derivative = 0
	ch.integral = 0
	ch.endPulse = false
	ch.breakpointPulse = false
	ch.prevTrigger = false
	ch.prevSync = false
}

// restart puts the channel at the start of a new cycle and redraws the
// chaos seed. Shared by accepted triggers, accepted syncs and the natural
// wraparound in cycle mode.
func (ch *SlopeChannel) restart() {
	ch.phase = 0
	ch.rising = true
	ch.value = 0
	ch.chaosSeed = ch.chaos.Draw()
}

// acceptTrigger applies the mode gate of the configured TriggerMode to a
// detected rising edge.
func (ch *SlopeChannel) acceptTrigger() bool {
	switch ch.cfg.TrigMode {
	case TRIG_ALWAYS:
		return true
	case TRIG_RISE_ONLY:
		return ch.rising && ch.phase < 1.0
	case TRIG_FALL_ONLY:
		return !ch.rising && ch.phase < 1.0
	case TRIG_COMPLETE_ONLY:
		// Only once the previous cycle has fully settled at rest
		return !ch.rising && ch.phase >= 1.0
	}
	return false
}

// updateFreeze folds the momentary freeze button and the freeze CV into the
// frozen flag. The button toggles on each rising edge; a connected CV
// overrides the toggle except exactly at the threshold, where the prior
// state is kept.
func (ch *SlopeChannel) updateFreeze(in TickInputs) {
	if in.FreezeButton && !ch.prevFreezeBtn {
		ch.frozen = !ch.frozen
	}
	ch.prevFreezeBtn = in.FreezeButton

	if in.FreezeCVConnected {
		if in.FreezeCV > FREEZE_CV_THRESHOLD {
			ch.frozen = true
		} else if in.FreezeCV < FREEZE_CV_THRESHOLD {
			ch.frozen = false
		}
	}
}

// Tick advances the channel by one sample. deltaTime is the tick duration
// in seconds; now is the externally accumulated monotonic time used for
// sync period measurement.
func (ch *SlopeChannel) Tick(in TickInputs, deltaTime, now float64) {
	// The end pulse from the previous tick expires first, keeping it
	// observable for exactly one tick.
	ch.endPulse = false

	ch.updateFreeze(in)

	// A disconnected trigger input forces the idle reset and holds the
	// channel there until a new accepted trigger.
	if !in.TriggerConnected {
		ch.Reset()
		return
	}

	// Trigger edge detection with mode-gated acceptance. prevTrigger is
	// updated unconditionally so ignored edges stay ignored.
	if in.Trigger && !ch.prevTrigger && ch.acceptTrigger() {
		ch.restart()
	}
	ch.prevTrigger = in.Trigger

	// Sync edge detection and period tracking. Sync is enabled purely by
	// connection status and takes restart priority over cycling.
	if in.SyncConnected {
		if in.Sync && !ch.prevSync {
			if ch.lastSyncTime > 0 {
				ch.syncPeriod = clampf(now-ch.lastSyncTime, MIN_SYNC_PERIOD, MAX_SYNC_PERIOD)
			}
			ch.lastSyncTime = now
			ch.restart()
		}
		ch.prevSync = in.Sync
	} else {
		ch.prevSync = false
	}

	// Freeze halts everything past edge handling: phase, chaos
	// consumption, pulses and the estimators all hold.
	if ch.frozen {
		return
	}

	curve := clampf(ch.cfg.Curve+in.CurveCV*PARAM_CV_SCALE, -1.0, 1.0)
	breakpoint := clampf(ch.cfg.Breakpoint+in.BreakpointCV*PARAM_CV_SCALE, 0.0, MAX_BREAKPOINT)
	chaosAmount := clampf(ch.cfg.ChaosAmount+in.ChaosCV*PARAM_CV_SCALE, 0.0, 1.0)

	effect := chaosEffect(ch.chaosSeed, chaosAmount)
	if effect != 0 {
		curve = clampf(curve+effect*CHAOS_CURVE_SCALE, -1.0, 1.0)
	}

	riseTime, fallTime := stageTimes(
		ch.cfg.RiseTime+in.RiseCV*PARAM_CV_SCALE,
		ch.cfg.FallTime+in.FallCV*PARAM_CV_SCALE,
		effect,
		ch.cfg.Rate,
		in.RateCV,
	)

	// A channel that has finished its fall and is not cycling rests at
	// phase 1.0 until something restarts it; the rest state advances
	// nothing, so the end pulse fires exactly once per completed cycle.
	atRest := !ch.rising && ch.phase >= 1.0
	if !atRest {
		stageTime := riseTime
		if !ch.rising {
			stageTime = fallTime
		}
		if in.SyncConnected && ch.syncPeriod > 0 {
			stageTime *= syncScale(ch.syncPeriod, riseTime, fallTime)
		}

		ch.phase += deltaTime / stageTime

		// Breakpoint placement uses the extended [0,2) cycle-phase so
		// the pulse can land anywhere in the rise or the fall.
		cyclePhase := ch.phase
		if !ch.rising {
			cyclePhase = 1.0 + ch.phase
		}
		if cyclePhase >= breakpoint*2.0 && !ch.breakpointPulse {
			ch.breakpointPulse = true
		}

		if ch.phase >= 1.0 {
			if ch.rising {
				ch.rising = false
				ch.phase = 0
				ch.value = 1.0
			} else {
				if ch.cfg.Cycle && !in.SyncConnected {
					ch.restart()
				} else {
					ch.phase = 1.0
					ch.value = 0
				}
				ch.endPulse = true
				ch.breakpointPulse = false
			}
		}
	}

	ch.value = shapedValue(ch.phase, curve, ch.rising)

	ch.derivative = (ch.value - ch.prevValue) / deltaTime
	ch.integral += ch.value * deltaTime
	ch.prevValue = ch.value
}
