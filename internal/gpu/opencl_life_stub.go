//go:build !opencl

package gpu

// Stepper is a placeholder that always reports ErrUnavailable.
type Stepper struct{}

// New reports that OpenCL was not compiled in.
func New(width, height int) (*Stepper, error) {
	return nil, ErrUnavailable
}

func (s *Stepper) Next(_, _ []uint8, _, _ int) error { return ErrUnavailable }

func (s *Stepper) Close() {}

func (s *Stepper) DeviceName() string { return "" }
