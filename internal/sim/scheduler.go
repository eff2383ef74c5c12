// Package sim paces a life grid and serializes every mutation of it together
// with the resync of its render buffer.
//
// A Scheduler runs in one of two modes fixed at construction. In Synchronous
// mode the caller's loop drives Tick and every step attempt acquires the guard.
// In Background mode Start launches a goroutine that drives Tick itself; its
// periodic step only tries the guard and skips the cycle when user actions
// hold it, while user actions always wait for the guard.
package sim

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"life/internal/life"
	"life/internal/render"
)

// Mode selects who drives the simulation clock.
type Mode int

const (
	// Synchronous expects Tick on the same goroutine that handles input and drawing.
	Synchronous Mode = iota
	// Background steps from a scheduler-owned goroutine started with Start.
	Background
)

func (m Mode) String() string {
	switch m {
	case Synchronous:
		return "synchronous"
	case Background:
		return "background"
	}
	return "unknown"
}

const (
	DefaultInterval = 100 * time.Millisecond
	DefaultPoll     = 5 * time.Millisecond
)

// Config describes a Scheduler. Zero values select the defaults.
type Config struct {
	Mode Mode

	// Interval is the accumulated time that must be exceeded before a step.
	Interval time.Duration

	// Poll is how often the background goroutine calls Tick.
	Poll time.Duration

	// Workers splits the neighbour-counting pass across goroutines.
	Workers int

	// Kernel, when set, computes generations instead of the CPU path. The
	// scheduler drops it after its first failure.
	Kernel life.Kernel

	Rand   *rand.Rand
	Logger *log.Logger
}

// Stats is a point-in-time summary of the simulation.
type Stats struct {
	Width, Height int
	Generation    uint64
	Population    int
	Steps         uint64
	Skipped       uint64
	Paused        bool
	Kernel        bool
}

// Scheduler owns a grid and its render buffer.
type Scheduler struct {
	mu     sync.Mutex
	grid   *life.Grid
	buffer *render.Buffer
	kernel life.Kernel
	rng    *rand.Rand

	mode     Mode
	interval time.Duration
	poll     time.Duration
	workers  int
	logger   *log.Logger

	paused  atomic.Bool
	steps   atomic.Uint64
	skipped atomic.Uint64

	// elapsed belongs to whichever goroutine drives Tick.
	elapsed time.Duration

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a paused scheduler around a fresh w×h grid.
func New(w, h int, cfg Config) (*Scheduler, error) {
	s := &Scheduler{
		kernel:   cfg.Kernel,
		rng:      cfg.Rand,
		mode:     cfg.Mode,
		interval: cfg.Interval,
		poll:     cfg.Poll,
		workers:  cfg.Workers,
		logger:   cfg.Logger,
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.poll <= 0 {
		s.poll = DefaultPoll
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	grid, buffer, err := s.newWorld(w, h)
	if err != nil {
		return nil, err
	}
	s.grid, s.buffer = grid, buffer
	s.paused.Store(true)
	return s, nil
}

func (s *Scheduler) newWorld(w, h int) (*life.Grid, *render.Buffer, error) {
	grid, err := life.New(w, h)
	if err != nil {
		return nil, nil, err
	}
	buffer, err := render.New(w, h)
	if err != nil {
		return nil, nil, err
	}
	grid.SetWorkers(s.workers)
	buffer.Sync(grid)
	return grid, buffer, nil
}

// Mode reports the configured mode.
func (s *Scheduler) Mode() Mode { return s.mode }

// SetPaused stops or resumes scheduled stepping.
func (s *Scheduler) SetPaused(p bool) { s.paused.Store(p) }

// IsPaused reports whether scheduled stepping is stopped.
func (s *Scheduler) IsPaused() bool { return s.paused.Load() }

// TogglePaused flips the pause state and returns the new one.
func (s *Scheduler) TogglePaused() bool {
	for {
		old := s.paused.Load()
		if s.paused.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Tick adds elapsed to the step clock. Once the clock exceeds the interval it
// is reset and, unless paused, one step is attempted. Tick reports whether a
// step ran. Only one goroutine may drive Tick.
func (s *Scheduler) Tick(elapsed time.Duration) bool {
	s.elapsed += elapsed
	if s.elapsed <= s.interval {
		return false
	}
	s.elapsed = 0
	if s.paused.Load() {
		return false
	}
	if s.mode == Background {
		if !s.mu.TryLock() {
			s.skipped.Add(1)
			return false
		}
	} else {
		s.mu.Lock()
	}
	defer s.mu.Unlock()
	if s.paused.Load() {
		return false
	}
	s.stepLocked()
	return true
}

// StepOnce advances exactly one generation whether or not the scheduler is
// paused.
func (s *Scheduler) StepOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepLocked()
}

func (s *Scheduler) stepLocked() {
	if s.kernel != nil {
		err := s.grid.StepWith(s.kernel)
		if err == nil {
			s.afterStep()
			return
		}
		s.logger.Printf("Step kernel failed, using CPU from now on: %v", err)
		s.kernel = nil
	}
	s.grid.Step()
	s.afterStep()
}

func (s *Scheduler) afterStep() {
	s.buffer.Sync(s.grid)
	s.steps.Add(1)
}

// ToggleCell flips the cell at (x, y). Coordinates outside the grid are
// ignored and ToggleCell reports false.
func (s *Scheduler) ToggleCell(x, y int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.grid.Toggle(x, y) {
		return false
	}
	s.buffer.Sync(s.grid)
	return true
}

// Clear kills every cell.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.Clear()
	s.buffer.Sync(s.grid)
}

// Randomize fills the grid with coin flips.
func (s *Scheduler) Randomize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid.Randomize(s.rng)
	s.buffer.Sync(s.grid)
}

// Resize replaces the grid and buffer with a dead w×h pair. On error the
// current world is kept. A kernel is bound to the size it was built for, so
// resizing to a different size drops it and later steps run on the CPU.
func (s *Scheduler) Resize(w, h int) error {
	grid, buffer, err := s.newWorld(w, h)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ow, oh := s.grid.Size(); s.kernel != nil && (ow != w || oh != h) {
		s.logger.Printf("Resized %dx%d to %dx%d, step kernel released; using CPU", ow, oh, w, h)
		s.kernel = nil
	}
	s.grid, s.buffer = grid, buffer
	return nil
}

// Size returns the current grid dimensions.
func (s *Scheduler) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Size()
}

// CopyPixels appends the current RGBA cell colours to dst[:0] and returns it.
// The guard is released before the caller draws.
func (s *Scheduler) CopyPixels(dst []byte) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append(dst[:0], s.buffer.Pixels()...)
}

// View calls fn with the render buffer while holding the guard. fn must not
// call back into the scheduler.
func (s *Scheduler) View(fn func(*render.Buffer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.buffer)
}

// Stats summarizes the current state.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	w, h := s.grid.Size()
	st := Stats{
		Width:      w,
		Height:     h,
		Generation: s.grid.Generation(),
		Population: s.grid.Population(),
		Kernel:     s.kernel != nil,
	}
	s.mu.Unlock()
	st.Steps = s.steps.Load()
	st.Skipped = s.skipped.Load()
	st.Paused = s.paused.Load()
	return st
}
