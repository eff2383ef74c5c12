package main

import (
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"sync"
	"time"
)

// cpuProfile records a CPU profile to a file until Stop is called or its time
// limit passes, whichever comes first.
type cpuProfile struct {
	path  string
	file  *os.File
	timer *time.Timer
	once  sync.Once
	done  chan struct{}
}

// startCPUProfile begins profiling into path. A positive limit stops the
// profile on its own after that long; zero records until Stop.
func startCPUProfile(path string, limit time.Duration) (*cpuProfile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cpu profile: %w", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("cpu profile %s: %w", path, err)
	}
	p := &cpuProfile{path: path, file: f, done: make(chan struct{})}
	if limit > 0 {
		p.timer = time.AfterFunc(limit, p.Stop)
	}
	return p, nil
}

// Stop flushes and closes the profile. Later calls do nothing.
func (p *cpuProfile) Stop() {
	p.once.Do(func() {
		if p.timer != nil {
			p.timer.Stop()
		}
		pprof.StopCPUProfile()
		if err := p.file.Close(); err != nil {
			log.Printf("Closing CPU profile %s: %v", p.path, err)
		} else {
			log.Printf("CPU profile written to %s", p.path)
		}
		close(p.done)
	})
}

// Done is closed once the profile has been written.
func (p *cpuProfile) Done() <-chan struct{} { return p.done }
