package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// action is a discrete user command.
type action int

const (
	actionTogglePause action = iota
	actionClear
	actionRandomize
	actionStep
	actionFullscreen
	actionDebug
	actionZoomIn
	actionZoomOut
	actionQuit
)

// keyActions binds keys to commands. Commands fire on the press edge only, so
// holding a key does not repeat it.
var keyActions = []struct {
	keys   []ebiten.Key
	action action
}{
	{[]ebiten.Key{ebiten.KeyP}, actionTogglePause},
	{[]ebiten.Key{ebiten.KeyC}, actionClear},
	{[]ebiten.Key{ebiten.KeyR}, actionRandomize},
	{[]ebiten.Key{ebiten.KeyEnter, ebiten.KeyNumpadEnter}, actionStep},
	{[]ebiten.Key{ebiten.KeyF11}, actionFullscreen},
	{[]ebiten.Key{ebiten.KeyF3}, actionDebug},
	{[]ebiten.Key{ebiten.KeyEqual, ebiten.KeyNumpadAdd}, actionZoomIn},
	{[]ebiten.Key{ebiten.KeyMinus, ebiten.KeyNumpadSubtract}, actionZoomOut},
	{[]ebiten.Key{ebiten.KeyEscape}, actionQuit},
}

// pressedActions collects the commands triggered this frame.
func pressedActions() []action {
	var out []action
	for _, binding := range keyActions {
		for _, k := range binding.keys {
			if inpututil.IsKeyJustPressed(k) {
				out = append(out, binding.action)
				break
			}
		}
	}
	if _, wy := ebiten.Wheel(); wy > 0 {
		out = append(out, actionZoomIn)
	} else if wy < 0 {
		out = append(out, actionZoomOut)
	}
	return out
}

// apply runs a single command against the scheduler or the view.
func (g *Game) apply(a action) {
	switch a {
	case actionTogglePause:
		if g.sched.TogglePaused() {
			log.Printf("Paused at generation %d", g.sched.Stats().Generation)
		} else {
			log.Printf("Running")
		}
	case actionClear:
		g.sched.Clear()
	case actionRandomize:
		g.sched.Randomize()
	case actionStep:
		if g.sched.IsPaused() {
			g.sched.StepOnce()
		}
	case actionFullscreen:
		g.fullscreen = !g.fullscreen
		g.setFullscreen(g.fullscreen)
	case actionDebug:
		g.debug = !g.debug
	case actionZoomIn:
		g.cam.zoomBy(zoomStep)
	case actionZoomOut:
		g.cam.zoomBy(1 / zoomStep)
	case actionQuit:
		g.quit = true
	}
}

// panVector returns the held arrow-key direction in cells per frame.
func panVector() (float64, float64) {
	dx, dy := 0.0, 0.0
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		dy -= panCellsPerFrame
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		dy += panCellsPerFrame
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		dx -= panCellsPerFrame
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		dx += panCellsPerFrame
	}
	return dx, dy
}

// updatePointer pans, tracks the hovered cell, and handles clicks: left
// toggles the cell under the pointer, right recentres the view on it.
func (g *Game) updatePointer() {
	g.cam.pan(panVector())

	mx, my := ebiten.CursorPosition()
	g.hover(mx, my)
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.click(mx, my)
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.recenter(mx, my)
	}
}

func (g *Game) hover(px, py int) {
	g.hoverX, g.hoverY = g.cam.cellAt(px, py, g.screenW, g.screenH)
	w, h := g.sched.Size()
	g.hoverInBounds = g.hoverX >= 0 && g.hoverX < w && g.hoverY >= 0 && g.hoverY < h
}

// click toggles the cell under a screen pixel; pixels off the board are ignored
// by the scheduler.
func (g *Game) click(px, py int) bool {
	x, y := g.cam.cellAt(px, py, g.screenW, g.screenH)
	return g.sched.ToggleCell(x, y)
}

func (g *Game) recenter(px, py int) {
	g.cam.centerOn(g.cam.screenToCell(float64(px), float64(py), g.screenW, g.screenH))
}
