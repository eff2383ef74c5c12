// Package life holds the authoritative cell state for a toroidal Game of Life
// board and the generation update rule.
package life

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrSizeLimit is returned when a grid cannot be indexed safely, including the
// four-vertex-per-cell buffer derived from it.
var ErrSizeLimit = errors.New("grid size exceeds index limit")

// Cell stores the visible state and the state being computed for the
// following generation.
type Cell struct {
	Now  bool
	Next bool
}

// Grid is a fixed-size W×H board stored row-major as x + y*W.
type Grid struct {
	w, h  int
	cells []Cell

	generation uint64
	population int
	workers    int

	nowPlane  []uint8
	nextPlane []uint8
}

// CheckSize reports whether a w×h grid and its derived quad buffer fit the
// addressable index range.
func CheckSize(w, h int) error {
	if w < 1 || h < 1 {
		return fmt.Errorf("%dx%d: dimensions must be positive: %w", w, h, ErrSizeLimit)
	}
	if w > math.MaxInt/4/h {
		return fmt.Errorf("%dx%d: %w", w, h, ErrSizeLimit)
	}
	return nil
}

// New allocates a dead grid of the given size.
func New(w, h int) (*Grid, error) {
	if err := CheckSize(w, h); err != nil {
		return nil, err
	}
	return &Grid{
		w:       w,
		h:       h,
		cells:   make([]Cell, w*h),
		workers: 1,
	}, nil
}

// Size returns the grid dimensions.
func (g *Grid) Size() (int, int) { return g.w, g.h }

// Len returns the number of cells.
func (g *Grid) Len() int { return len(g.cells) }

// Generation counts committed steps since construction or the last Clear or
// Randomize.
func (g *Grid) Generation() uint64 { return g.generation }

// wrap maps a coordinate one past either edge onto the opposite edge. Anything
// further out lands on the same boundary cell rather than wrapping modulo.
func wrap(v, dim int) int {
	if v < 0 {
		return dim - 1
	}
	if v >= dim {
		return 0
	}
	return v
}

// Get returns the cell at (x, y) after boundary wrapping.
func (g *Grid) Get(x, y int) Cell {
	return g.cells[wrap(x, g.w)+wrap(y, g.h)*g.w]
}

// Set replaces the cell at (x, y) after boundary wrapping.
func (g *Grid) Set(x, y int, c Cell) {
	i := wrap(x, g.w) + wrap(y, g.h)*g.w
	if g.cells[i].Now != c.Now {
		if c.Now {
			g.population++
		} else {
			g.population--
		}
	}
	g.cells[i] = c
}

// Alive reports the visible state of the cell at flat index i.
func (g *Grid) Alive(i int) bool { return g.cells[i].Now }

// Population returns the number of live cells. It is maintained by every
// mutation, so reading it does not scan the board.
func (g *Grid) Population() int { return g.population }

// Toggle flips the cell at (x, y). Coordinates outside the grid are ignored and
// Toggle reports false.
func (g *Grid) Toggle(x, y int) bool {
	if x < 0 || x > g.w-1 || y < 0 || y > g.h-1 {
		return false
	}
	c := &g.cells[x+y*g.w]
	c.Now = !c.Now
	c.Next = c.Now
	if c.Now {
		g.population++
	} else {
		g.population--
	}
	return true
}

// Clear kills every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = Cell{}
	}
	g.population = 0
	g.generation = 0
}

// Randomize assigns every cell an independent coin flip. A nil rng uses the
// package-level math/rand source.
func (g *Grid) Randomize(rng *rand.Rand) {
	intn := rand.Intn
	if rng != nil {
		intn = rng.Intn
	}
	pop := 0
	for i := range g.cells {
		alive := intn(2) == 1
		g.cells[i] = Cell{Now: alive, Next: alive}
		if alive {
			pop++
		}
	}
	g.population = pop
	g.generation = 0
}
