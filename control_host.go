// control_host.go - Interactive keyboard control
//
// Reads raw stdin and maps keys onto engine controls. Only instantiated in
// main.go for interactive use — never in tests.
//
// Keys:
//
//	t / y   trigger channel A / B
//	s / d   sync pulse channel A / B
//	f / g   freeze button channel A / B
//	c / v   toggle cycle on channel A / B
//	, / .   nudge mix down / up
//	q       quit

package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

const MIX_KEY_STEP = 0.05

type ControlHost struct {
	engine       *DualSlopeEngine
	quit         func()
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	nonblockSet  bool
	oldTermState *term.State

	mix   float64
	cycle [NUM_SLOPE_CHANNELS]bool
}

// NewControlHost creates a host adapter driving the engine from stdin.
// quit is invoked once when the user presses 'q'.
func NewControlHost(engine *DualSlopeEngine, quit func()) *ControlHost {
	return &ControlHost{
		engine: engine,
		quit:   quit,
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
		mix:    0.5,
	}
}

// Start sets stdin to raw non-blocking mode and begins reading in a
// goroutine. Call Stop() to restore stdin.
func (h *ControlHost) Start() {
	h.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(h.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "control_host: failed to set raw mode: %v\n", err)
		close(h.done)
		return
	}
	h.oldTermState = oldState

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "control_host: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
		close(h.done)
		return
	}
	h.nonblockSet = true

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)

		for {
			select {
			case <-h.stopCh:
				return
			default:
			}

			n, err := syscall.Read(h.fd, buf)
			if n > 0 {
				if !h.handleKey(buf[0]) {
					return
				}
			}
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				time.Sleep(5 * time.Millisecond)
				continue
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
}

// handleKey routes one key press. Returns false when the host should stop.
func (h *ControlHost) handleKey(b byte) bool {
	switch b {
	case 't':
		h.engine.TriggerPulse(CHANNEL_A)
	case 'y':
		h.engine.TriggerPulse(CHANNEL_B)
	case 's':
		h.engine.SyncPulse(CHANNEL_A)
	case 'd':
		h.engine.SyncPulse(CHANNEL_B)
	case 'f':
		h.engine.FreezePress(CHANNEL_A)
	case 'g':
		h.engine.FreezePress(CHANNEL_B)
	case 'c':
		h.toggleCycle(CHANNEL_A)
	case 'v':
		h.toggleCycle(CHANNEL_B)
	case ',':
		h.nudgeMix(-MIX_KEY_STEP)
	case '.':
		h.nudgeMix(MIX_KEY_STEP)
	case 'q', 0x03: // 'q' or Ctrl-C in raw mode
		if h.quit != nil {
			h.quit()
		}
		return false
	}
	return true
}

func (h *ControlHost) toggleCycle(ch int) {
	h.cycle[ch] = !h.cycle[ch]
	value := 0.0
	if h.cycle[ch] {
		value = 1.0
	}
	prefix := "a"
	if ch == CHANNEL_B {
		prefix = "b"
	}
	_ = h.engine.Apply(ControlMessage{Target: prefix + ".cycle", Value: value})
}

func (h *ControlHost) nudgeMix(delta float64) {
	h.mix = clampf(h.mix+delta, 0.0, 1.0)
	h.engine.SetMix(h.mix)
}

// Stop terminates the stdin goroutine and restores stdin to blocking mode.
func (h *ControlHost) Stop() {
	h.stopped.Do(func() {
		close(h.stopCh)
	})
	<-h.done
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldTermState != nil {
		_ = term.Restore(h.fd, h.oldTermState)
		h.oldTermState = nil
	}
}
