package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// camera maps between screen pixels and board cells. The centre is in cell
// units and zoom is screen pixels per cell.
type camera struct {
	centerX, centerY float64
	zoom             float64
}

func newCamera(gridW, gridH int) camera {
	return camera{
		centerX: float64(gridW) / 2,
		centerY: float64(gridH) / 2,
		zoom:    cellPixels,
	}
}

func (c *camera) pan(dx, dy float64) {
	c.centerX += dx
	c.centerY += dy
}

func (c *camera) centerOn(x, y float64) {
	c.centerX, c.centerY = x, y
}

// zoomBy scales the view around its centre, keeping zoom within limits.
func (c *camera) zoomBy(factor float64) {
	c.zoom = clampFloat(c.zoom*factor, minCellPixels, maxCellPixels)
}

// screenToCell returns the board position under a screen pixel.
func (c *camera) screenToCell(px, py float64, screenW, screenH int) (float64, float64) {
	x := c.centerX + (px-float64(screenW)/2)/c.zoom
	y := c.centerY + (py-float64(screenH)/2)/c.zoom
	return x, y
}

// cellAt returns the integer cell containing a screen pixel. The result may lie
// outside the board.
func (c *camera) cellAt(px, py, screenW, screenH int) (int, int) {
	x, y := c.screenToCell(float64(px), float64(py), screenW, screenH)
	return int(math.Floor(x)), int(math.Floor(y))
}

// cellToScreen returns the top-left screen pixel of a cell.
func (c *camera) cellToScreen(x, y, screenW, screenH int) (float64, float64) {
	sx := (float64(x)-c.centerX)*c.zoom + float64(screenW)/2
	sy := (float64(y)-c.centerY)*c.zoom + float64(screenH)/2
	return sx, sy
}

// geoM places a one-pixel-per-cell board image on screen.
func (c *camera) geoM(screenW, screenH int) ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-c.centerX, -c.centerY)
	m.Scale(c.zoom, c.zoom)
	m.Translate(float64(screenW)/2, float64(screenH)/2)
	return m
}

// clampFloat constrains v to lie within the inclusive [min, max] range.
func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
