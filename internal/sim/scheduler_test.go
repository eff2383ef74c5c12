package sim

import (
	"bytes"
	"context"
	"errors"
	"log"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"life/internal/life"
	"life/internal/render"
)

func newScheduler(t *testing.T, w, h int, cfg Config) *Scheduler {
	t.Helper()
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(1))
	}
	s, err := New(w, h, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

// assertSynced checks every rendered colour against the grid.
func assertSynced(t *testing.T, s *Scheduler) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < s.grid.Len(); i++ {
		want := render.Dead
		if s.grid.Alive(i) {
			want = render.Alive
		}
		if got := s.buffer.Color(i); got != want {
			t.Fatalf("cell %d rendered %v, want %v", i, got, want)
		}
	}
}

func placeBlinker(s *Scheduler) {
	s.ToggleCell(1, 2)
	s.ToggleCell(2, 2)
	s.ToggleCell(3, 2)
}

func TestNewDefaults(t *testing.T) {
	s := newScheduler(t, 8, 6, Config{})
	if !s.IsPaused() {
		t.Fatal("scheduler should start paused")
	}
	if s.interval != DefaultInterval || s.poll != DefaultPoll {
		t.Fatalf("interval=%v poll=%v", s.interval, s.poll)
	}
	if w, h := s.Size(); w != 8 || h != 6 {
		t.Fatalf("size = %dx%d", w, h)
	}
	if s.Mode() != Synchronous {
		t.Fatalf("mode = %v", s.Mode())
	}
	if _, err := New(math.MaxInt/2, 3, Config{}); !errors.Is(err, life.ErrSizeLimit) {
		t.Fatalf("New with huge grid = %v", err)
	}
}

func TestPauseState(t *testing.T) {
	s := newScheduler(t, 4, 4, Config{})
	s.SetPaused(false)
	if s.IsPaused() {
		t.Fatal("SetPaused(false) not observed")
	}
	s.SetPaused(true)
	if !s.IsPaused() {
		t.Fatal("SetPaused(true) not observed")
	}
	if s.TogglePaused() {
		t.Fatal("TogglePaused from paused should resume")
	}
	if !s.TogglePaused() {
		t.Fatal("TogglePaused from running should pause")
	}
}

func TestTickThreshold(t *testing.T) {
	s := newScheduler(t, 5, 5, Config{Interval: 100 * time.Millisecond})
	placeBlinker(s)
	s.SetPaused(false)

	if s.Tick(60 * time.Millisecond) {
		t.Fatal("stepped before the interval elapsed")
	}
	if s.Tick(40 * time.Millisecond) {
		t.Fatal("stepped at exactly the interval")
	}
	if !s.Tick(time.Millisecond) {
		t.Fatal("did not step once the interval was exceeded")
	}
	if s.elapsed != 0 {
		t.Fatalf("accumulator = %v after step, want 0", s.elapsed)
	}
	if st := s.Stats(); st.Generation != 1 || st.Steps != 1 {
		t.Fatalf("stats after one step = %+v", st)
	}
	assertSynced(t, s)
}

func TestTickWhilePaused(t *testing.T) {
	s := newScheduler(t, 5, 5, Config{Interval: 10 * time.Millisecond})
	placeBlinker(s)
	if s.Tick(time.Second) {
		t.Fatal("paused scheduler stepped")
	}
	if s.elapsed != 0 {
		t.Fatal("accumulator not reset while paused")
	}
	if s.Stats().Generation != 0 {
		t.Fatal("generation advanced while paused")
	}
}

func TestStepOnceIgnoresPause(t *testing.T) {
	s := newScheduler(t, 5, 5, Config{})
	placeBlinker(s)
	s.StepOnce()
	st := s.Stats()
	if st.Generation != 1 || st.Population != 3 {
		t.Fatalf("stats after StepOnce = %+v", st)
	}
	if !s.IsPaused() {
		t.Fatal("StepOnce changed the pause state")
	}
	assertSynced(t, s)
}

func TestBackgroundTickSkipsWhenGuardHeld(t *testing.T) {
	s := newScheduler(t, 5, 5, Config{Mode: Background, Interval: time.Millisecond})
	s.SetPaused(false)
	s.mu.Lock()
	stepped := s.Tick(time.Second)
	s.mu.Unlock()
	if stepped {
		t.Fatal("background tick stepped while the guard was held")
	}
	if st := s.Stats(); st.Skipped != 1 || st.Generation != 0 {
		t.Fatalf("stats after contended tick = %+v", st)
	}
	if !s.Tick(time.Second) {
		t.Fatal("uncontended background tick did not step")
	}
}

func TestMutationsResync(t *testing.T) {
	s := newScheduler(t, 12, 7, Config{})
	if s.ToggleCell(12, 0) || s.ToggleCell(-1, 3) {
		t.Fatal("out-of-range toggle reported true")
	}
	if !s.ToggleCell(3, 4) {
		t.Fatal("in-range toggle reported false")
	}
	assertSynced(t, s)
	s.Randomize()
	assertSynced(t, s)
	s.Clear()
	assertSynced(t, s)
	pix := s.CopyPixels(nil)
	for i := 0; i < len(pix); i += 4 {
		if pix[i] != render.Dead.R || pix[i+3] != render.Dead.A {
			t.Fatalf("pixel %d = %v after clear", i/4, pix[i:i+4])
		}
	}
}

func TestCopyPixelsReusesDst(t *testing.T) {
	s := newScheduler(t, 3, 3, Config{})
	s.ToggleCell(0, 0)
	dst := make([]byte, 0, 64)
	got := s.CopyPixels(dst)
	if len(got) != 36 || &got[0] != &dst[:1][0] {
		t.Fatal("CopyPixels did not reuse the destination")
	}
	if got[0] != render.Alive.R {
		t.Fatal("copied pixel does not reflect toggle")
	}
	s.ToggleCell(0, 0)
	if got[0] != render.Alive.R {
		t.Fatal("copied pixels are not a snapshot")
	}
}

func TestResize(t *testing.T) {
	s := newScheduler(t, 4, 4, Config{Workers: 3})
	s.Randomize()
	if err := s.Resize(9, 2); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	st := s.Stats()
	if st.Width != 9 || st.Height != 2 || st.Population != 0 {
		t.Fatalf("stats after resize = %+v", st)
	}
	s.View(func(b *render.Buffer) {
		if w, h := b.Size(); w != 9 || h != 2 {
			t.Fatalf("buffer size %dx%d", w, h)
		}
	})
	if s.grid.Workers() != 3 {
		t.Fatalf("resized grid workers = %d", s.grid.Workers())
	}
	if err := s.Resize(0, 4); !errors.Is(err, life.ErrSizeLimit) {
		t.Fatalf("Resize(0, 4) = %v", err)
	}
	if w, h := s.Size(); w != 9 || h != 2 {
		t.Fatal("failed resize replaced the grid")
	}
}

type planeKernel struct{ calls int }

func (k *planeKernel) Next(now, next []uint8, w, h int) error {
	k.calls++
	life.NextGeneration(now, next, w, h)
	return nil
}

type brokenKernel struct{ calls int }

func (k *brokenKernel) Next(_, _ []uint8, _, _ int) error {
	k.calls++
	return errors.New("out of resources")
}

func TestKernelStep(t *testing.T) {
	k := &planeKernel{}
	s := newScheduler(t, 5, 5, Config{Kernel: k})
	placeBlinker(s)
	s.StepOnce()
	if k.calls != 1 {
		t.Fatalf("kernel calls = %d", k.calls)
	}
	if !s.Stats().Kernel {
		t.Fatal("working kernel was dropped")
	}
	s.View(func(b *render.Buffer) {
		if b.Color(2+1*5) != render.Alive || b.Color(1+2*5) != render.Dead {
			t.Fatal("kernel step did not rotate the blinker")
		}
	})
}

func TestKernelFallback(t *testing.T) {
	var logs bytes.Buffer
	k := &brokenKernel{}
	s := newScheduler(t, 5, 5, Config{Kernel: k, Logger: log.New(&logs, "", 0)})
	placeBlinker(s)
	s.StepOnce()
	s.StepOnce()
	if k.calls != 1 {
		t.Fatalf("broken kernel called %d times, want 1", k.calls)
	}
	st := s.Stats()
	if st.Kernel || st.Generation != 2 || st.Population != 3 {
		t.Fatalf("stats after fallback = %+v", st)
	}
	if !bytes.Contains(logs.Bytes(), []byte("out of resources")) {
		t.Fatalf("fallback not logged: %q", logs.String())
	}
	assertSynced(t, s)
}

func TestResizeReleasesKernel(t *testing.T) {
	var logs bytes.Buffer
	k := &planeKernel{}
	s := newScheduler(t, 5, 5, Config{Kernel: k, Logger: log.New(&logs, "", 0)})
	if err := s.Resize(5, 5); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if !s.Stats().Kernel {
		t.Fatal("same-size resize dropped the kernel")
	}
	if err := s.Resize(8, 6); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if s.Stats().Kernel {
		t.Fatal("kernel kept after resizing to a new size")
	}
	s.StepOnce()
	if k.calls != 0 {
		t.Fatalf("stale kernel called %d times", k.calls)
	}
	if st := s.Stats(); st.Generation != 1 {
		t.Fatalf("generation after CPU step = %d", st.Generation)
	}
	if bytes.Contains(logs.Bytes(), []byte("failed")) {
		t.Fatalf("resize reported as a kernel failure: %q", logs.String())
	}
	if !bytes.Contains(logs.Bytes(), []byte("released")) {
		t.Fatalf("kernel release not logged: %q", logs.String())
	}
}

func TestSynchronousStartIsNoop(t *testing.T) {
	s := newScheduler(t, 4, 4, Config{})
	s.Start(context.Background())
	if s.cancel != nil {
		t.Fatal("synchronous scheduler started a goroutine")
	}
	s.Stop()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestBackgroundStepping(t *testing.T) {
	s := newScheduler(t, 6, 6, Config{Mode: Background, Interval: time.Millisecond, Poll: time.Millisecond})
	placeBlinker(s)
	s.Start(context.Background())
	s.Start(context.Background())
	defer s.Stop()

	time.Sleep(10 * time.Millisecond)
	if g := s.Stats().Generation; g != 0 {
		t.Fatalf("paused background scheduler reached generation %d", g)
	}
	s.SetPaused(false)
	waitFor(t, func() bool { return s.Stats().Generation >= 3 })

	s.SetPaused(true)
	if !s.IsPaused() {
		t.Fatal("pause not observed")
	}
	before := s.Stats().Generation
	time.Sleep(10 * time.Millisecond)
	if after := s.Stats().Generation; after != before {
		t.Fatalf("generation moved from %d to %d while paused", before, after)
	}

	s.Stop()
	s.Stop()
	assertSynced(t, s)
}

func TestBackgroundStopsWithContext(t *testing.T) {
	s := newScheduler(t, 4, 4, Config{Mode: Background, Poll: time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stepping goroutine ignored context cancellation")
	}
	s.Stop()
}

func TestConcurrentMutation(t *testing.T) {
	s := newScheduler(t, 32, 32, Config{
		Mode:     Background,
		Interval: time.Millisecond,
		Poll:     time.Millisecond,
		Workers:  4,
	})
	s.Randomize()
	s.SetPaused(false)
	s.Start(context.Background())

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			buf := make([]byte, 0, 32*32*4)
			for i := 0; i < 300; i++ {
				switch rng.Intn(10) {
				case 0:
					s.StepOnce()
				case 1:
					buf = s.CopyPixels(buf)
				case 2:
					s.SetPaused(rng.Intn(2) == 0)
				default:
					s.ToggleCell(rng.Intn(34)-1, rng.Intn(34)-1)
				}
			}
		}(int64(g))
	}
	wg.Wait()
	s.SetPaused(true)
	if !s.IsPaused() {
		t.Fatal("SetPaused(true) not observed after concurrent use")
	}
	s.Stop()

	s.mu.Lock()
	for i := 0; i < s.grid.Len(); i++ {
		w, _ := s.grid.Size()
		if c := s.grid.Get(i%w, i/w); c.Now != c.Next {
			s.mu.Unlock()
			t.Fatalf("cell %d left inconsistent: %+v", i, c)
		}
	}
	s.mu.Unlock()
	assertSynced(t, s)
}
