package teleop

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/gwillem/armrig/pkg/robot"
)

type fakeTicker struct {
	ch chan time.Time
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }
func (f *fakeTicker) Stop()               {}

type fakeClock struct {
	now    time.Time
	ticker *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:    time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
		ticker: &fakeTicker{ch: make(chan time.Time)},
	}
}

func (f *fakeClock) Now() time.Time                 { return f.now }
func (f *fakeClock) NewTicker(time.Duration) Ticker { return f.ticker }

type staticKeys struct {
	mu   sync.Mutex
	keys robot.KeySet
}

func (s *staticKeys) set(keys ...robot.KeyID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = robot.NewKeySet(keys...)
}

func (s *staticKeys) Snapshot(time.Time) robot.KeyState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys
}

type fakeMirror struct {
	mu       sync.Mutex
	enabled  bool
	calls    []string
	writes   []map[robot.JointName]float64
	writeErr error
}

func (f *fakeMirror) Enable(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = true
	f.calls = append(f.calls, "enable")
	return nil
}

func (f *fakeMirror) Disable(context.Context) error {
	// Leave Close a window to overtake the torque shutdown.
	time.Sleep(10 * time.Millisecond)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enabled = false
	f.calls = append(f.calls, "disable")
	return nil
}

func (f *fakeMirror) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "close")
	return nil
}

func (f *fakeMirror) WriteAngles(_ context.Context, angles map[robot.JointName]float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, angles)
	return f.writeErr
}

func wristReading(s State) float64 {
	for _, j := range s.Joints {
		if j.Name == robot.Wrist {
			return j.Reading
		}
	}
	return math.NaN()
}

func TestNewController(t *testing.T) {
	if _, err := NewController(Config{}); err == nil {
		t.Error("expected error without key source")
	}

	bad := robot.DefaultConfig()
	bad.Loop.Hz = 0
	if _, err := NewController(Config{Rig: bad, Keys: &staticKeys{}}); !errors.Is(err, robot.ErrInvalidConfig) {
		t.Errorf("NewController() error = %v, want ErrInvalidConfig", err)
	}

	c, err := NewController(Config{Keys: &staticKeys{}, Hz: 30})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if c.Hz() != 30 {
		t.Errorf("Hz() = %d, want 30", c.Hz())
	}
}

func TestController_StepElapsedTime(t *testing.T) {
	clock := newFakeClock()
	keys := &staticKeys{}
	keys.set("t", "left")

	c, err := NewController(Config{Keys: keys, Clock: clock, Hz: 10})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	ctx := context.Background()
	t0 := clock.now

	c.step(ctx, t0)
	s := <-c.States()
	if s.Tick != 1 || math.Abs(s.Elapsed-0.1) > 1e-12 {
		t.Errorf("first tick: tick %d elapsed %f, want 1, 0.1", s.Tick, s.Elapsed)
	}

	c.step(ctx, t0.Add(250*time.Millisecond))
	s = <-c.States()
	if math.Abs(s.Elapsed-0.25) > 1e-12 {
		t.Errorf("second tick elapsed = %f, want 0.25", s.Elapsed)
	}
	if got := wristReading(s); math.Abs(got-0.35) > 1e-9 {
		t.Errorf("wrist = %f, want 0.35", got)
	}
}

func TestController_ClockBackwards(t *testing.T) {
	clock := newFakeClock()
	keys := &staticKeys{}
	keys.set("t", "left")

	c, err := NewController(Config{Keys: keys, Clock: clock, Hz: 10})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	ctx := context.Background()
	t0 := clock.now
	c.step(ctx, t0)
	<-c.States()

	c.step(ctx, t0.Add(-time.Second))
	s := <-c.States()

	if got := wristReading(s); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("wrist = %f, want 0.1 (backwards tick must not move)", got)
	}
	select {
	case msg := <-c.Logs():
		if msg == "" {
			t.Error("empty log message")
		}
	default:
		t.Error("expected a log message for the backwards clock")
	}
}

func TestController_StartMirrorsAndStops(t *testing.T) {
	clock := newFakeClock()
	keys := &staticKeys{}
	keys.set("t", "right")
	mirror := &fakeMirror{}

	c, err := NewController(Config{Keys: keys, Clock: clock, Mirror: mirror, Hz: 20})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	t0 := clock.now
	var last State
	for i := 0; i < 4; i++ {
		clock.ticker.ch <- t0.Add(time.Duration(i) * 50 * time.Millisecond)
		last = <-c.States()
	}

	if last.Tick != 4 {
		t.Errorf("Tick = %d, want 4", last.Tick)
	}
	if got := wristReading(last); math.Abs(got+0.2) > 1e-9 {
		t.Errorf("wrist = %f, want -0.2", got)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Start() = %v, want context.Canceled", err)
	}

	mirror.mu.Lock()
	defer mirror.mu.Unlock()
	if mirror.enabled {
		t.Error("mirror torque should be disabled after stop")
	}
	if len(mirror.writes) != 4 {
		t.Fatalf("mirror got %d writes, want 4", len(mirror.writes))
	}
	if got := mirror.writes[3][robot.Wrist]; math.Abs(got+0.2) > 1e-9 {
		t.Errorf("mirrored wrist angle = %f, want -0.2", got)
	}
}

func TestController_MirrorWriteError(t *testing.T) {
	clock := newFakeClock()
	mirror := &fakeMirror{writeErr: errors.New("bus timeout")}

	c, err := NewController(Config{Keys: &staticKeys{}, Clock: clock, Mirror: mirror})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	c.step(context.Background(), clock.now)
	s := <-c.States()
	if s.Error == nil {
		t.Error("state should carry the write error")
	}
}

func TestController_StartTwice(t *testing.T) {
	clock := newFakeClock()
	c, err := NewController(Config{Keys: &staticKeys{}, Clock: clock})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	// Wait for the loop to be running before starting it again.
	clock.ticker.ch <- clock.now
	<-c.States()

	if err := c.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}
	cancel()
	<-done
}

func TestController_CloseWaitsForShutdown(t *testing.T) {
	clock := newFakeClock()
	mirror := &fakeMirror{}

	c, err := NewController(Config{Keys: &staticKeys{}, Clock: clock, Mirror: mirror})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go c.Start(ctx)

	clock.ticker.ch <- clock.now
	<-c.States()

	cancel()
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	mirror.mu.Lock()
	defer mirror.mu.Unlock()
	want := []string{"enable", "disable", "close"}
	if diff := cmp.Diff(want, mirror.calls); diff != "" {
		t.Errorf("mirror calls mismatch (-want +got):\n%s", diff)
	}
}

func TestController_CloseWithoutStart(t *testing.T) {
	mirror := &fakeMirror{}
	c, err := NewController(Config{Keys: &staticKeys{}, Mirror: mirror})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(mirror.calls) != 1 || mirror.calls[0] != "close" {
		t.Errorf("calls = %v, want [close]", mirror.calls)
	}
}
