// Package gpu runs the life update rule as an OpenCL kernel. It is only
// functional when built with -tags opencl.
package gpu

import (
	"errors"

	"life/internal/life"
)

// ErrUnavailable is returned when the binary was built without OpenCL.
var ErrUnavailable = errors.New("OpenCL support is not enabled; rebuild with -tags opencl")

var _ life.Kernel = (*Stepper)(nil)
