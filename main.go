// main.go - Main entry point for the SlopeEngine

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		modePlay   bool
		renderPath string
		serveAddr  string
		patchPath  string
		seed       int64
		backend    string
		sampleRate int
		duration   float64
		keys       bool
		frameRate  int
	)

	flagSet := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.BoolVar(&modePlay, "play", false, "Play the engine output on the audio device")
	flagSet.StringVar(&renderPath, "render", "", "Render the engine output to a WAV file")
	flagSet.StringVar(&serveAddr, "serve", "", "Serve the scope/control WebSocket on this address (e.g. :8080)")
	flagSet.StringVar(&patchPath, "patch", "", "YAML patch file")
	flagSet.Int64Var(&seed, "seed", 0, "Chaos seed (0 = time-based)")
	flagSet.StringVar(&backend, "backend", "oto", "Audio backend: oto or headless")
	flagSet.IntVar(&sampleRate, "rate", SAMPLE_RATE, "Sample rate in Hz")
	flagSet.Float64Var(&duration, "duration", 10.0, "Render duration in seconds")
	flagSet.BoolVar(&keys, "keys", false, "Enable keyboard control (play and serve modes)")
	flagSet.IntVar(&frameRate, "frame-rate", DEFAULT_FRAME_RATE, "Scope frames per second (serve mode)")

	flagSet.Usage = func() {
		flagSet.SetOutput(os.Stdout)
		fmt.Println("Usage: ./slope_engine -play|-render out.wav|-serve :8080 [-patch patch.yaml] [-seed N] [-backend oto|headless]")
		flagSet.PrintDefaults()
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	modeCount := 0
	if modePlay {
		modeCount++
	}
	if renderPath != "" {
		modeCount++
	}
	if serveAddr != "" {
		modeCount++
	}
	if modeCount == 0 {
		modePlay = true
		modeCount = 1
	}
	if modeCount != 1 {
		fmt.Println("Error: select exactly one mode: -play, -render, or -serve")
		os.Exit(1)
	}

	backendID := AUDIO_BACKEND_OTO
	switch backend {
	case "oto":
	case "headless":
		backendID = AUDIO_BACKEND_HEADLESS
	default:
		fmt.Printf("Error: unknown backend %q (use oto or headless)\n", backend)
		os.Exit(1)
	}
	if renderPath != "" {
		// Offline rendering never touches the audio device.
		backendID = AUDIO_BACKEND_HEADLESS
	}

	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	engine, err := NewDualSlopeEngine(backendID, sampleRate, seed)
	if err != nil {
		fmt.Printf("Failed to initialize engine: %v\n", err)
		os.Exit(1)
	}

	comparator := NewComparatorEngine()

	patch := DefaultPatch()
	if patchPath != "" {
		patch, err = LoadPatchFile(patchPath)
		if err != nil {
			fmt.Printf("Error loading patch: %v\n", err)
			os.Exit(1)
		}
	}
	patch.Apply(engine, comparator)

	if renderPath != "" {
		engine.Start()
		if err := RenderWave(engine, renderPath, duration); err != nil {
			fmt.Printf("Error rendering: %v\n", err)
			os.Exit(1)
		}
		engine.Stop()
		fmt.Printf("Rendered %.1fs to %s\n", duration, renderPath)
		return
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	engine.Start()
	defer engine.Stop()

	if backendID == AUDIO_BACKEND_HEADLESS {
		// No audio pull is driving the engine; run the clock ourselves.
		g.Go(func() error {
			return driveEngine(ctx, engine, sampleRate)
		})
	}

	if serveAddr != "" {
		server := NewScopeServer(engine, comparator, frameRate, logger)
		g.Go(func() error {
			return server.Run(ctx, serveAddr)
		})
	}

	if keys {
		host := NewControlHost(engine, cancel)
		host.Start()
		defer host.Stop()
	}

	if modePlay {
		fmt.Println("Playing; press Ctrl-C to stop.")
		g.Go(func() error {
			<-ctx.Done()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

// driveEngine ticks the engine in wall-clock time for modes where no
// audio backend is pulling samples.
func driveEngine(ctx context.Context, engine *DualSlopeEngine, sampleRate int) error {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	dt := 1.0 / float64(sampleRate)
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			elapsed := now.Sub(last).Seconds()
			last = now
			steps := int(elapsed * float64(sampleRate))
			for i := 0; i < steps; i++ {
				engine.Tick(dt)
			}
		}
	}
}
