package main

import (
	"image/color"
	"time"
)

// Window, view, and timing defaults for the interactive board.
const (
	defaultGridW, defaultGridH = 500, 500
	windowW, windowH           = 800, 600
	windowTitle                = "Life"
	defaultTPS                 = 60
	cellPixels                 = 10.0
	minCellPixels              = 2.0
	maxCellPixels              = 40.0
	zoomStep                   = 1.25
	panCellsPerFrame           = 1.0
	defaultStepInterval        = 100 * time.Millisecond
	backgroundPoll             = 5 * time.Millisecond
	defaultProfileDuration     = 15 * time.Second
	statusMargin               = 6

	// maxBoardSide keeps the board image within the texture size every
	// ebiten graphics driver accepts.
	maxBoardSide = 4096
)

var (
	backgroundColor = color.RGBA{G: 255, A: 255}
	hoverColor      = color.RGBA{R: 255, G: 64, B: 64, A: 255}
	statusColor     = color.RGBA{R: 255, G: 220, B: 0, A: 255}
)
