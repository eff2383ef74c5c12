//go:build opencl

package gpu

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

// Stepper computes generations on an OpenCL device for one fixed grid size.
type Stepper struct {
	context    *cl.Context
	queue      *cl.CommandQueue
	program    *cl.Program
	kernel     *cl.Kernel
	nowBuf     *cl.MemObject
	nextBuf    *cl.MemObject
	width      int
	height     int
	deviceName string
}

// Neighbour offsets of ±1 wrap to the opposite edge, matching life.Grid.
const lifeKernelSource = `__kernel void life_step(
    const int width,
    const int height,
    __global const uchar* now,
    __global uchar* next_buffer)
{
    int idx = get_global_id(0);
    if (idx >= width * height) {
        return;
    }
    int x = idx % width;
    int y = idx / width;
    int left = x == 0 ? width - 1 : x - 1;
    int right = x == width - 1 ? 0 : x + 1;
    int up = (y == 0 ? height - 1 : y - 1) * width;
    int down = (y == height - 1 ? 0 : y + 1) * width;
    int row = y * width;
    int n = now[left + up] + now[x + up] + now[right + up]
          + now[left + row] + now[right + row]
          + now[left + down] + now[x + down] + now[right + down];
    uchar out = now[idx];
    if (n > 2) {
        out = 1;
    }
    if (n < 2 || n > 3) {
        out = 0;
    }
    next_buffer[idx] = out;
}`

func pickDevice() (*cl.Device, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available; ensure a vendor driver is installed and detected by `clinfo`")
	}
	for _, kind := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, derr := p.GetDevices(kind)
			if derr != nil && derr != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				return devices[0], nil
			}
		}
	}
	return nil, errors.New("no suitable OpenCL devices found")
}

// New compiles the life kernel and allocates device buffers for a
// width×height grid.
func New(width, height int) (*Stepper, error) {
	device, err := pickDevice()
	if err != nil {
		return nil, err
	}
	s := &Stepper{width: width, height: height, deviceName: device.Name()}
	if err := s.init(device); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Stepper) init(device *cl.Device) error {
	var err error
	s.context, err = cl.CreateContext([]*cl.Device{device})
	if err != nil {
		return fmt.Errorf("creating OpenCL context: %w", err)
	}
	s.queue, err = s.context.CreateCommandQueue(device, 0)
	if err != nil {
		return fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	s.program, err = s.context.CreateProgramWithSource([]string{lifeKernelSource})
	if err != nil {
		return fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		if buildErr, ok := err.(cl.BuildError); ok {
			return fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return fmt.Errorf("building OpenCL program: %w", err)
	}
	s.kernel, err = s.program.CreateKernel("life_step")
	if err != nil {
		return fmt.Errorf("creating OpenCL kernel: %w", err)
	}
	size := s.width * s.height
	s.nowBuf, err = s.context.CreateEmptyBuffer(cl.MemReadOnly, size)
	if err != nil {
		return fmt.Errorf("allocating current buffer: %w", err)
	}
	s.nextBuf, err = s.context.CreateEmptyBuffer(cl.MemWriteOnly, size)
	if err != nil {
		return fmt.Errorf("allocating next buffer: %w", err)
	}
	if err := s.kernel.SetArgs(int32(s.width), int32(s.height), s.nowBuf, s.nextBuf); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}
	return nil
}

// Next uploads now, runs one generation and reads the result into next.
func (s *Stepper) Next(now, next []uint8, w, h int) error {
	size := s.width * s.height
	if w != s.width || h != s.height {
		return fmt.Errorf("stepper built for %dx%d, got %dx%d", s.width, s.height, w, h)
	}
	if len(now) != size || len(next) != size {
		return errors.New("unexpected cell plane size")
	}
	if _, err := s.queue.EnqueueWriteBuffer(s.nowBuf, false, 0, size, unsafe.Pointer(&now[0]), nil); err != nil {
		return fmt.Errorf("writing current buffer: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.kernel, nil, []int{size}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	if _, err := s.queue.EnqueueReadBuffer(s.nextBuf, true, 0, size, unsafe.Pointer(&next[0]), nil); err != nil {
		return fmt.Errorf("reading next buffer: %w", err)
	}
	return nil
}

// Close releases every OpenCL object the stepper holds.
func (s *Stepper) Close() {
	if s.nextBuf != nil {
		s.nextBuf.Release()
		s.nextBuf = nil
	}
	if s.nowBuf != nil {
		s.nowBuf.Release()
		s.nowBuf = nil
	}
	if s.kernel != nil {
		s.kernel.Release()
		s.kernel = nil
	}
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}

// DeviceName reports the OpenCL device in use.
func (s *Stepper) DeviceName() string {
	return s.deviceName
}
