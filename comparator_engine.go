// comparator_engine.go - Four-channel window comparator with pair logic
//
// Sibling engine to the dual slope generator: each channel classifies its
// input against a center/width window into HI / WIN / LO with a small
// hysteresis band, and the WIN states feed AND/OR/XOR pair logic plus an
// XOR-edge flip-flop per pair.

package main

import "sync"

const (
	NUM_COMPARATOR_CHANNELS = 4

	// Hysteresis band around the window edges
	COMPARATOR_HYSTERESIS = 0.1

	// Window width never collapses to zero
	MIN_WINDOW_SIZE = 0.0001

	GATE_OUT_SCALE = 10.0
)

// ComparatorConfig positions one channel's window: Shift is the center,
// Size the full width, each offset by its CV every tick.
type ComparatorConfig struct {
	Shift float64
	Size  float64
}

type comparatorChannel struct {
	cfg ComparatorConfig

	hi  bool
	win bool
	lo  bool
}

// classify runs the three-state hysteresis classifier. Outside the
// extended band the state snaps to HI or LO immediately; inside it the
// state settles toward WIN only once the input has cleared the hysteresis
// margin on the window side.
func (c *comparatorChannel) classify(in, shiftCV, sizeCV float64) {
	center := c.cfg.Shift + shiftCV
	size := c.cfg.Size + sizeCV
	if size < MIN_WINDOW_SIZE {
		size = MIN_WINDOW_SIZE
	}
	hiEdge := center + 0.5*size
	loEdge := center - 0.5*size

	switch {
	case in > hiEdge+COMPARATOR_HYSTERESIS:
		c.hi, c.win, c.lo = true, false, false
	case in < loEdge-COMPARATOR_HYSTERESIS:
		c.hi, c.win, c.lo = false, false, true
	default:
		if (c.hi && in <= hiEdge-COMPARATOR_HYSTERESIS) ||
			(c.lo && in >= loEdge+COMPARATOR_HYSTERESIS) ||
			(!c.win && in >= loEdge+COMPARATOR_HYSTERESIS && in <= hiEdge-COMPARATOR_HYSTERESIS) {
			c.hi, c.win, c.lo = false, true, false
		}
	}
}

// ComparatorInputs carries the four channel inputs for one tick. An
// unconnected input normals to its left neighbour (A feeds B feeds C
// feeds D).
type ComparatorInputs struct {
	In        [NUM_COMPARATOR_CHANNELS]float64
	Connected [NUM_COMPARATOR_CHANNELS]bool
	ShiftCV   [NUM_COMPARATOR_CHANNELS]float64
	SizeCV    [NUM_COMPARATOR_CHANNELS]float64
}

// ComparatorChannelFrame is one channel's gate outputs, scaled.
type ComparatorChannelFrame struct {
	Hi  float64 `json:"hi"`
	Win float64 `json:"win"`
	Lo  float64 `json:"lo"`
}

// PairFrame holds the logic outputs derived from one pair of WIN states.
type PairFrame struct {
	And      float64 `json:"and"`
	Or       float64 `json:"or"`
	Xor      float64 `json:"xor"`
	FlipFlop float64 `json:"ff"`
}

// ComparatorFrame is the full per-tick comparator snapshot.
type ComparatorFrame struct {
	Channels [NUM_COMPARATOR_CHANNELS]ComparatorChannelFrame `json:"channels"`
	AB       PairFrame                                       `json:"ab"`
	CD       PairFrame                                       `json:"cd"`
	PairsAnd float64                                         `json:"pairs_and"`
	PairsOr  float64                                         `json:"pairs_or"`
	PairsXor float64                                         `json:"pairs_xor"`
}

type ComparatorEngine struct {
	mutex    sync.Mutex
	channels [NUM_COMPARATOR_CHANNELS]comparatorChannel

	abFlipFlop bool
	cdFlipFlop bool
	abXorPrev  bool
	cdXorPrev  bool
}

func NewComparatorEngine() *ComparatorEngine {
	e := &ComparatorEngine{}
	for i := range e.channels {
		e.channels[i].cfg = ComparatorConfig{Shift: 0, Size: 1.0}
	}
	return e
}

func (e *ComparatorEngine) SetConfig(ch int, cfg ComparatorConfig) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if ch >= 0 && ch < NUM_COMPARATOR_CHANNELS {
		e.channels[ch].cfg = cfg
	}
}

// Reset clears all classifier and flip-flop state.
func (e *ComparatorEngine) Reset() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	for i := range e.channels {
		e.channels[i].hi = false
		e.channels[i].win = false
		e.channels[i].lo = false
	}
	e.abFlipFlop = false
	e.cdFlipFlop = false
	e.abXorPrev = false
	e.cdXorPrev = false
}

func gate(b bool) float64 {
	if b {
		return GATE_OUT_SCALE
	}
	return 0
}

func pairLogic(winX, winY bool, flipFlop, xorPrev *bool) PairFrame {
	and := winX && winY
	or := winX || winY
	xor := winX != winY

	if xor && !*xorPrev {
		*flipFlop = !*flipFlop
	}
	*xorPrev = xor

	return PairFrame{
		And:      gate(and),
		Or:       gate(or),
		Xor:      gate(xor),
		FlipFlop: gate(*flipFlop),
	}
}

// Tick classifies all four channels and recomputes the pair logic.
func (e *ComparatorEngine) Tick(in ComparatorInputs) ComparatorFrame {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	// Input normalling: each unconnected input inherits its neighbour.
	levels := in.In
	for i := 1; i < NUM_COMPARATOR_CHANNELS; i++ {
		if !in.Connected[i] {
			levels[i] = levels[i-1]
		}
	}

	var frame ComparatorFrame
	for i := range e.channels {
		e.channels[i].classify(levels[i], in.ShiftCV[i], in.SizeCV[i])
		frame.Channels[i] = ComparatorChannelFrame{
			Hi:  gate(e.channels[i].hi),
			Win: gate(e.channels[i].win),
			Lo:  gate(e.channels[i].lo),
		}
	}

	frame.AB = pairLogic(e.channels[0].win, e.channels[1].win, &e.abFlipFlop, &e.abXorPrev)
	frame.CD = pairLogic(e.channels[2].win, e.channels[3].win, &e.cdFlipFlop, &e.cdXorPrev)

	abActive := frame.AB.And > 0 || frame.AB.Or > 0 || frame.AB.Xor > 0
	cdActive := frame.CD.And > 0 || frame.CD.Or > 0 || frame.CD.Xor > 0
	frame.PairsAnd = gate(abActive && cdActive)
	frame.PairsOr = gate(abActive || cdActive)
	frame.PairsXor = gate(abActive != cdActive)

	return frame
}
