package sim

import (
	"context"
	"time"
)

// Start launches the stepping goroutine. It does nothing in Synchronous mode
// or when already running. The goroutine exits when ctx is done or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) {
	if s.mode != Background {
		return
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(now.Sub(last))
			last = now
		}
	}
}

// Stop signals the stepping goroutine and waits for it to exit. It is safe to
// call more than once.
func (s *Scheduler) Stop() {
	s.runMu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.wg.Wait()
}
