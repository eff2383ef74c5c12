package main

import (
	"flag"
	"runtime"
)

// Command-line flags controlling the board, the stepping model, and optional
// diagnostics.
var (
	// widthFlag and heightFlag size the board in cells.
	widthFlag  = flag.Int("width", defaultGridW, "board width in cells")
	heightFlag = flag.Int("height", defaultGridH, "board height in cells")

	// threadedFlag steps the board from a background goroutine instead of the
	// render loop.
	threadedFlag = flag.Bool("threaded", true, "step the simulation on a background goroutine")

	intervalFlag = flag.Duration("interval", defaultStepInterval, "time between generations while running")

	// workersFlag splits each generation's neighbour counting across goroutines.
	workersFlag = flag.Int("workers", runtime.NumCPU(), "goroutines sharing each generation")

	// openCLFlag computes generations on an OpenCL device when the binary is
	// built with -tags opencl.
	openCLFlag = flag.Bool("opencl", false, "step on an OpenCL device (requires -tags opencl)")

	seedFlag = flag.Int64("seed", 0, "seed for randomize; 0 picks one from the clock")

	// debugFlag starts with the FPS and simulation overlay visible.
	debugFlag = flag.Bool("debug", false, "show FPS and simulation overlay")

	cpuProfileFlag         = flag.String("cpuprofile", "", "write a CPU profile to this file")
	cpuProfileDurationFlag = flag.Duration("cpuprofile-duration", defaultProfileDuration, "stop CPU profiling after this long (0 records until exit)")
)
