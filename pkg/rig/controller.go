// Package rig implements the per-joint keyboard control of a manipulator rig.
package rig

import (
	"math"

	"github.com/gwillem/armrig/pkg/robot"
)

// JointController decides one joint's rotation each tick. It is not
// safe for concurrent use; a rig runs each controller from one goroutine.
type JointController struct {
	name    robot.JointName
	axis    robot.Axis
	upper   *float64
	lower   *float64
	toggle  robot.KeyID
	keys    robot.KeyBindings
	mode    robot.ToggleMode
	reading robot.ReadingMode
	gain    float64
	ref     *Slot

	manual     bool
	toggleHeld bool // toggle key state on the previous tick (edge mode)
}

// NewJointController builds the controller for joint name. If ref is
// nil the controller keeps its reference in a private slot.
func NewJointController(name robot.JointName, jc robot.JointConfig, keys robot.KeyBindings, ctl robot.ControlConfig, ref *Slot) *JointController {
	if ref == nil {
		ref = &Slot{}
	}
	gain := ctl.ReturnGain
	if gain == 0 {
		gain = 5.0
	}
	mode := ctl.Toggle
	if mode == "" {
		mode = robot.ToggleEdge
	}
	// Validate accepts any case, so compare against the canonical mode.
	reading, err := robot.ParseReadingMode(string(ctl.Reading))
	if err != nil {
		reading = robot.ReadingAngle
	}
	return &JointController{
		name:    name,
		axis:    jc.Axis,
		upper:   jc.Upper,
		lower:   jc.Lower,
		toggle:  jc.Toggle,
		keys:    keys,
		mode:    mode,
		reading: reading,
		gain:    gain,
		ref:     ref,
	}
}

// Name returns the joint this controller drives.
func (c *JointController) Name() robot.JointName { return c.name }

// Axis returns the control axis.
func (c *JointController) Axis() robot.Axis { return c.axis }

// Manual reports whether manual rotation was enabled on the last tick.
func (c *JointController) Manual() bool { return c.manual }

// Reference returns the marked reference value.
func (c *JointController) Reference() float64 { return c.ref.Value() }

// Reading returns the control-axis value of st.
func (c *JointController) Reading(st *robot.JointState) float64 {
	return st.Reading(c.axis, c.reading)
}

// Update runs one tick: toggle, mark, damped return, then manual rotation.
// The steps run in that order so a toggle or mark takes effect within
// the same tick. A degenerate dt is treated as zero.
func (c *JointController) Update(dt float64, keys robot.KeyState, st *robot.JointState) {
	dt, _ = SanitizeStep(dt)

	c.updateMode(keys.IsDown(c.toggle))

	if keys.IsDown(c.keys.Mark) {
		c.ref.Mark(c.Reading(st))
	}

	if keys.IsDown(c.keys.Return) {
		v, r := c.Reading(st), c.ref.Value()
		step := st.Speed * math.Abs(r-v) * c.gain * dt
		if v < r {
			st.Rotate(c.axis, step)
		} else {
			st.Rotate(c.axis, -step)
		}
	}

	if !c.manual {
		return
	}
	// Limits are checked before rotating, so one tick may overshoot a bound.
	if keys.IsDown(c.keys.RotateNegative) && (c.upper == nil || c.Reading(st) < *c.upper) {
		st.Rotate(c.axis, st.Speed*dt)
	}
	if keys.IsDown(c.keys.RotatePositive) && (c.lower == nil || c.Reading(st) > *c.lower) {
		st.Rotate(c.axis, -st.Speed*dt)
	}
}

func (c *JointController) updateMode(down bool) {
	switch c.mode {
	case robot.ToggleHold:
		// Reset every tick and flipped while held: a dead-man switch.
		c.manual = down
	default:
		if down && !c.toggleHeld {
			c.manual = !c.manual
		}
		c.toggleHeld = down
	}
}
