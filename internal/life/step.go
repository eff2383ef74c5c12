package life

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Kernel computes the next generation for a whole board at once. now and next
// hold one byte per cell (0 dead, 1 alive) in grid order; implementations must
// only write next.
type Kernel interface {
	Next(now, next []uint8, w, h int) error
}

// rowBand is a half-open range of rows owned by one worker.
type rowBand struct{ start, end int }

// SetWorkers sets how many goroutines share the neighbour-counting pass.
// Values below one are treated as one.
func (g *Grid) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	g.workers = n
}

// Workers returns the configured worker count.
func (g *Grid) Workers() int { return g.workers }

// Step advances the grid by one generation. Every Next is computed from Now
// before any Now is overwritten.
func (g *Grid) Step() {
	g.computeNext()
	g.commit()
}

// StepWith advances the grid by one generation using k. If k fails the grid is
// left untouched.
func (g *Grid) StepWith(k Kernel) error {
	now := g.snapshot()
	next := g.nextPlane[:len(now)]
	if err := k.Next(now, next, g.w, g.h); err != nil {
		return fmt.Errorf("kernel step: %w", err)
	}
	for i := range g.cells {
		g.cells[i].Next = next[i] != 0
	}
	g.commit()
	return nil
}

// snapshot copies every Now into the byte plane shared by the counting pass
// and kernels, growing the planes on first use.
func (g *Grid) snapshot() []uint8 {
	n := len(g.cells)
	if cap(g.nowPlane) < n {
		g.nowPlane = make([]uint8, n)
		g.nextPlane = make([]uint8, n)
	}
	now := g.nowPlane[:n]
	for i := range g.cells {
		now[i] = boolByte(g.cells[i].Now)
	}
	return now
}

func (g *Grid) bands() []rowBand {
	workers := g.workers
	if workers > g.h {
		workers = g.h
	}
	if workers < 1 {
		workers = 1
	}
	rowsPer := (g.h + workers - 1) / workers
	bands := make([]rowBand, 0, workers)
	for y := 0; y < g.h; y += rowsPer {
		end := y + rowsPer
		if end > g.h {
			end = g.h
		}
		bands = append(bands, rowBand{start: y, end: end})
	}
	return bands
}

func (g *Grid) computeNext() {
	now := g.snapshot()
	bands := g.bands()
	if len(bands) == 1 {
		g.computeRows(now, bands[0])
		return
	}
	var eg errgroup.Group
	for _, band := range bands {
		band := band
		eg.Go(func() error {
			g.computeRows(now, band)
			return nil
		})
	}
	_ = eg.Wait()
}

// computeRows writes Next for every cell in band. Counts come from the now
// plane, never from cells, so bands can run concurrently while each writes
// its own rows.
func (g *Grid) computeRows(now []uint8, band rowBand) {
	for y := band.start; y < band.end; y++ {
		for x := 0; x < g.w; x++ {
			i := x + y*g.w
			g.cells[i].Next = nextState(now[i] != 0, neighbours(now, x, y, g.w, g.h))
		}
	}
}

func neighbours(now []uint8, x, y, w, h int) int {
	at := func(x, y int) int {
		return int(now[wrap(x, w)+wrap(y, h)*w] & 1)
	}
	return at(x-1, y-1) + at(x, y-1) + at(x+1, y-1) +
		at(x-1, y) + at(x+1, y) +
		at(x-1, y+1) + at(x, y+1) + at(x+1, y+1)
}

func (g *Grid) commit() {
	pop := 0
	for i := range g.cells {
		g.cells[i].Now = g.cells[i].Next
		if g.cells[i].Now {
			pop++
		}
	}
	g.population = pop
	g.generation++
}

// nextState applies birth on three and death below two or above three; two
// neighbours keep the current state.
func nextState(alive bool, n int) bool {
	next := alive
	if n > 2 {
		next = true
	}
	if n < 2 || n > 3 {
		next = false
	}
	return next
}

// NextGeneration applies the update rule to a byte plane, using the same
// boundary wrapping as Grid. It is the reference a Kernel must match.
func NextGeneration(now, next []uint8, w, h int) {
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := x + y*w
			next[i] = boolByte(nextState(now[i] != 0, neighbours(now, x, y, w, h)))
		}
	}
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
