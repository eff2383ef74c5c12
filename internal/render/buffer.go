// Package render keeps a per-cell visual copy of a life grid for drawing
// backends.
package render

import (
	"fmt"
	"image/color"

	"life/internal/life"
)

// Colours used for live and dead cells.
var (
	Alive = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Dead  = color.RGBA{A: 255}
)

// Source is the read side of a grid that a Buffer mirrors.
type Source interface {
	Size() (int, int)
	Alive(i int) bool
}

// Vertex is one corner of a cell quad in grid units.
type Vertex struct {
	X, Y  float32
	Color color.RGBA
}

// Quad is the four corners of a single cell, ordered top-left, bottom-left,
// bottom-right, top-right.
type Quad [4]Vertex

// Buffer is a snapshot of cell colours laid out like the grid it mirrors. It
// is only consistent with the grid immediately after Sync.
type Buffer struct {
	width, height int
	quads         []Quad
	pixels        []byte
}

// New allocates a buffer for a w×h grid with every cell dead.
func New(w, h int) (*Buffer, error) {
	if err := life.CheckSize(w, h); err != nil {
		return nil, err
	}
	b := &Buffer{
		width:  w,
		height: h,
		quads:  make([]Quad, w*h),
		pixels: make([]byte, w*h*4),
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px, py := float32(x), float32(y)
			b.quads[x+y*w] = Quad{
				{X: px, Y: py},
				{X: px, Y: py + 1},
				{X: px + 1, Y: py + 1},
				{X: px + 1, Y: py},
			}
		}
	}
	for i := range b.quads {
		b.paint(i, Dead)
	}
	return b, nil
}

// Size returns the mirrored grid dimensions.
func (b *Buffer) Size() (int, int) { return b.width, b.height }

// Sync repaints every cell from src. src must have the buffer's dimensions.
func (b *Buffer) Sync(src Source) {
	w, h := src.Size()
	if w != b.width || h != b.height {
		panic(fmt.Sprintf("render: syncing %dx%d buffer from %dx%d grid", b.width, b.height, w, h))
	}
	for i := range b.quads {
		if src.Alive(i) {
			b.paint(i, Alive)
		} else {
			b.paint(i, Dead)
		}
	}
}

func (b *Buffer) paint(i int, c color.RGBA) {
	q := &b.quads[i]
	q[0].Color = c
	q[1].Color = c
	q[2].Color = c
	q[3].Color = c
	base := i * 4
	b.pixels[base] = c.R
	b.pixels[base+1] = c.G
	b.pixels[base+2] = c.B
	b.pixels[base+3] = c.A
}

// Color returns the colour of the cell at flat index i.
func (b *Buffer) Color(i int) color.RGBA { return b.quads[i][0].Color }

// Quads exposes the quad list. Callers must not modify it.
func (b *Buffer) Quads() []Quad { return b.quads }

// Pixels exposes one RGBA pixel per cell in grid order, suitable for a texture
// upload. Callers must not modify it.
func (b *Buffer) Pixels() []byte { return b.pixels }
