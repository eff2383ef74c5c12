package main

import (
	"context"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"life/internal/sim"
)

// Game is the ebiten front end. It turns input into scheduler calls and draws
// the scheduler's render buffer through a camera.
type Game struct {
	ctx   context.Context
	sched *sim.Scheduler
	cam   camera

	screenW, screenH int

	world         *ebiten.Image
	worldW        int
	worldH        int
	pixels        []byte
	hoverX        int
	hoverY        int
	hoverInBounds bool

	fullscreen    bool
	setFullscreen func(bool)
	debug         bool
	quit          bool

	lastUpdate time.Time
}

// newGame wires a scheduler to a window-sized view centred on the board.
func newGame(ctx context.Context, s *sim.Scheduler) *Game {
	w, h := s.Size()
	return &Game{
		ctx:           ctx,
		sched:         s,
		cam:           newCamera(w, h),
		screenW:       windowW,
		screenH:       windowH,
		setFullscreen: ebiten.SetFullscreen,
		debug:         *debugFlag,
	}
}

// Update handles input and, in synchronous mode, advances the step clock.
func (g *Game) Update() error {
	if g.quit || g.ctx.Err() != nil {
		return ebiten.Termination
	}
	for _, a := range pressedActions() {
		g.apply(a)
	}
	g.updatePointer()

	now := time.Now()
	if g.lastUpdate.IsZero() {
		g.lastUpdate = now
	}
	if g.sched.Mode() == sim.Synchronous {
		g.sched.Tick(now.Sub(g.lastUpdate))
	}
	g.lastUpdate = now
	return nil
}

// Layout keeps one screen pixel per device pixel so the view grows with the
// window instead of stretching.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenW, g.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}
