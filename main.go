package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"life/internal/gpu"
	"life/internal/life"
	"life/internal/sim"
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := validateBoardSize(*widthFlag, *heightFlag); err != nil {
		return err
	}

	if *cpuProfileFlag != "" {
		profile, err := startCPUProfile(*cpuProfileFlag, *cpuProfileDurationFlag)
		if err != nil {
			return err
		}
		defer profile.Stop()
	}

	cfg := sim.Config{
		Mode:     sim.Synchronous,
		Interval: *intervalFlag,
		Poll:     backgroundPoll,
		Workers:  *workersFlag,
		Rand:     newRand(*seedFlag),
	}
	if *threadedFlag {
		cfg.Mode = sim.Background
	}
	if *openCLFlag {
		if stepper, err := gpu.New(*widthFlag, *heightFlag); err != nil {
			log.Printf("OpenCL stepping unavailable, using CPU: %v", err)
		} else {
			log.Printf("OpenCL stepping enabled (device: %s)", stepper.DeviceName())
			defer stepper.Close()
			cfg.Kernel = stepper
		}
	}

	sched, err := sim.New(*widthFlag, *heightFlag, cfg)
	if err != nil {
		return err
	}
	sched.Start(ctx)
	defer sched.Stop()

	log.Printf("Board %dx%d, %s stepping every %v, %d workers", *widthFlag, *heightFlag, cfg.Mode, *intervalFlag, *workersFlag)

	ebiten.SetWindowSize(windowW, windowH)
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetVsyncEnabled(true)
	ebiten.SetTPS(defaultTPS)
	ebiten.SetCursorShape(ebiten.CursorShapeCrosshair)

	if err := ebiten.RunGame(newGame(ctx, sched)); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// validateBoardSize rejects boards the grid cannot index or that would not fit
// in a single GPU texture when drawn.
func validateBoardSize(w, h int) error {
	if err := life.CheckSize(w, h); err != nil {
		return fmt.Errorf("board size: %w", err)
	}
	if w > maxBoardSide || h > maxBoardSide {
		return fmt.Errorf("board size %dx%d: each side must be at most %d cells", w, h, maxBoardSide)
	}
	return nil
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
