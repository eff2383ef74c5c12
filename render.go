package main

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"life/internal/sim"
)

// Draw renders the board, the hovered cell outline, the status line, and the
// optional debug overlay.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	w, h := g.sched.Size()
	if g.world == nil || g.worldW != w || g.worldH != h {
		if g.world != nil {
			g.world.Deallocate()
		}
		g.world = ebiten.NewImage(w, h)
		g.worldW, g.worldH = w, h
	}
	// The guard is only held while copying; the upload and draw happen after.
	g.pixels = g.sched.CopyPixels(g.pixels)
	if len(g.pixels) == w*h*4 {
		g.world.WritePixels(g.pixels)
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM = g.cam.geoM(g.screenW, g.screenH)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(g.world, op)

	if g.hoverInBounds {
		sx, sy := g.cam.cellToScreen(g.hoverX, g.hoverY, g.screenW, g.screenH)
		size := float32(g.cam.zoom)
		vector.StrokeRect(screen, float32(sx), float32(sy), size, size, 1, hoverColor, false)
	}

	st := g.sched.Stats()
	text.Draw(screen, statusLine(st), basicfont.Face7x13, statusMargin, g.screenH-statusMargin, statusColor)

	if g.debug {
		ebitenutil.DebugPrint(screen, debugText(st, g.sched.Mode(), ebiten.ActualFPS(), ebiten.ActualTPS(), g.cam.zoom))
	}
}

// statusLine summarizes the run state and the key bindings.
func statusLine(st sim.Stats) string {
	state := "RUNNING"
	if st.Paused {
		state = "PAUSED  Enter:step"
	}
	return fmt.Sprintf("%s  gen %d  P:pause C:clear R:random F11:fullscreen", state, st.Generation)
}

func debugText(st sim.Stats, mode sim.Mode, fps, tps, zoom float64) string {
	engine := "cpu"
	if st.Kernel {
		engine = "opencl"
	}
	return fmt.Sprintf("FPS: %.1f  TPS: %.1f\nBoard: %dx%d  zoom %.1fpx\nGen: %d  Pop: %d\nStepping: %s (%s)\nSteps: %d  Skipped: %d",
		fps, tps, st.Width, st.Height, zoom, st.Generation, st.Population, mode, engine, st.Steps, st.Skipped)
}
