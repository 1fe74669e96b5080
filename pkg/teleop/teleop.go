// Package teleop runs a manipulator rig in real time from held keys.
package teleop

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gwillem/armrig/pkg/rig"
	"github.com/gwillem/armrig/pkg/robot"
)

// State is the rig as of one control tick.
type State struct {
	Joints    []rig.JointSnapshot
	Tick      uint64
	Elapsed   float64 // seconds since the previous tick
	Timestamp time.Time
	Error     error
}

// Mirror is a physical arm that follows the rig's joint angles.
// *robot.Arm implements it.
type Mirror interface {
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	WriteAngles(ctx context.Context, angles map[robot.JointName]float64) error
}

// Controller manages the rig control loop.
type Controller struct {
	rig    *rig.Rig
	keys   KeySource
	mirror Mirror
	clock  Clock
	hz     int

	mu         sync.RWMutex
	running    bool
	done       chan struct{} // closed when Start returns
	last       time.Time
	tick       uint64
	degenerate int
	stateCh    chan State
	logCh      chan string
}

// Config holds configuration for the controller.
type Config struct {
	Rig    *robot.Config
	Keys   KeySource
	Mirror Mirror // optional
	Clock  Clock  // defaults to RealClock
	Hz     int    // overrides Rig.Loop.Hz when positive
}

// NewController creates a new rig controller.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Rig == nil {
		cfg.Rig = robot.DefaultConfig()
	}
	if cfg.Keys == nil {
		return nil, fmt.Errorf("create controller: no key source")
	}
	r, err := rig.New(cfg.Rig)
	if err != nil {
		return nil, fmt.Errorf("create controller: %w", err)
	}

	hz := cfg.Hz
	if hz <= 0 {
		hz = cfg.Rig.Loop.Hz
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock{}
	}

	return &Controller{
		rig:     r,
		keys:    cfg.Keys,
		mirror:  cfg.Mirror,
		clock:   cfg.Clock,
		hz:      hz,
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
	}, nil
}

// Close closes the mirror arm, if any. If Start is running, Close waits
// for it to return first, so cancel its context before calling Close.
func (c *Controller) Close() error {
	c.mu.RLock()
	done := c.done
	c.mu.RUnlock()
	if done != nil {
		<-done
	}

	if closer, ok := c.mirror.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("close mirror: %w", err)
		}
	}
	return nil
}

// States returns a channel that receives state updates.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Hz returns the control frequency.
func (c *Controller) Hz() int {
	return c.hz
}

func (c *Controller) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", c.clock.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case c.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Start runs the control loop until ctx is cancelled.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	done := make(chan struct{})
	c.done = done
	c.mu.Unlock()
	defer close(done)

	if c.mirror != nil {
		if err := c.mirror.Enable(ctx); err != nil {
			c.log("Warning: failed to enable mirror arm: %v", err)
		} else {
			c.log("Mirror arm: torque enabled")
		}
	}

	c.log("Rig control started at %d Hz", c.hz)

	ticker := c.clock.NewTicker(time.Second / time.Duration(c.hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return ctx.Err()
		case now := <-ticker.C():
			c.step(ctx, now)
		}
	}
}

func (c *Controller) step(ctx context.Context, now time.Time) {
	dt := 1 / float64(c.hz)
	if !c.last.IsZero() {
		dt = now.Sub(c.last).Seconds()
	}
	c.last = now
	c.tick++

	c.rig.Update(dt, c.keys.Snapshot(now))

	if n := c.rig.DegenerateSteps(); n > c.degenerate {
		c.degenerate = n
		c.log("Clock went backwards (dt=%.4fs), tick %d held still", dt, c.tick)
	}

	state := State{
		Joints:    c.rig.Snapshot(),
		Tick:      c.tick,
		Elapsed:   dt,
		Timestamp: now,
	}

	if c.mirror != nil {
		if err := c.mirror.WriteAngles(ctx, c.rig.Angles()); err != nil {
			c.log("Write error: %v", err)
			state.Error = err
		}
	}

	c.sendState(state)
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}

func (c *Controller) shutdown() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	if c.mirror != nil {
		if err := c.mirror.Disable(context.Background()); err != nil {
			c.log("Warning: failed to disable mirror arm: %v", err)
		} else {
			c.log("Mirror arm: torque disabled")
		}
	}
	c.log("Rig control stopped")
}
