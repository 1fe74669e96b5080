package rig

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gwillem/armrig/pkg/robot"
)

// Joint pairs a controller with the state it owns.
type Joint struct {
	Controller *JointController
	State      *robot.JointState
}

// JointSnapshot is a read-only view of one joint after a tick.
type JointSnapshot struct {
	Name        robot.JointName
	Axis        robot.Axis
	Orientation mgl64.Quat
	Reading     float64
	Reference   float64
	Manual      bool
}

// Rig is the five-joint manipulator. Joints are independent: no
// controller reads another joint's state or reference slot.
type Rig struct {
	joints     [robot.NumJoints]Joint
	registry   *Registry
	degenerate int
}

// New builds a rig from a validated configuration.
func New(cfg *robot.Config) (*Rig, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("build rig: %w", err)
	}

	r := &Rig{registry: NewRegistry()}
	for i, name := range robot.AllJoints() {
		jc := cfg.Joints[name]
		r.joints[i] = Joint{
			Controller: NewJointController(name, jc, cfg.Keys, cfg.Control, r.registry.Slot(name)),
			State:      robot.NewJointState(jc.Speed),
		}
	}
	return r, nil
}

// Default returns a rig with the stock configuration.
func Default() *Rig {
	r, err := New(robot.DefaultConfig())
	if err != nil {
		panic(err)
	}
	return r
}

// Update runs every joint controller once with the same elapsed time
// and key snapshot. A degenerate dt is counted and treated as zero.
func (r *Rig) Update(dt float64, keys robot.KeyState) {
	dt, ok := SanitizeStep(dt)
	if !ok {
		r.degenerate++
	}
	for i := range r.joints {
		j := &r.joints[i]
		j.Controller.Update(dt, keys, j.State)
	}
}

// DegenerateSteps returns how many ticks had their elapsed time clamped.
func (r *Rig) DegenerateSteps() int { return r.degenerate }

// Registry returns the rig's reference registry.
func (r *Rig) Registry() *Registry { return r.registry }

// Joint returns the joint named j, or nil if unknown.
func (r *Rig) Joint(j robot.JointName) *Joint {
	i := j.Index()
	if i < 0 {
		return nil
	}
	return &r.joints[i]
}

// Orientation returns the current orientation of joint j.
func (r *Rig) Orientation(j robot.JointName) (mgl64.Quat, bool) {
	joint := r.Joint(j)
	if joint == nil {
		return mgl64.Quat{}, false
	}
	return joint.State.Orientation, true
}

// Reading returns the control-axis value of joint j.
func (r *Rig) Reading(j robot.JointName) float64 {
	joint := r.Joint(j)
	if joint == nil {
		return 0
	}
	return joint.Controller.Reading(joint.State)
}

// Readings returns the control-axis value of every joint.
func (r *Rig) Readings() map[robot.JointName]float64 {
	readings := make(map[robot.JointName]float64, robot.NumJoints)
	for _, j := range r.joints {
		readings[j.Controller.Name()] = j.Controller.Reading(j.State)
	}
	return readings
}

// Angles returns the rotation angle of every joint about its control
// axis, whatever the configured reading mode.
func (r *Rig) Angles() map[robot.JointName]float64 {
	angles := make(map[robot.JointName]float64, robot.NumJoints)
	for _, j := range r.joints {
		angles[j.Controller.Name()] = j.State.Angle(j.Controller.Axis())
	}
	return angles
}

// Snapshot returns the state of every joint in chain order.
func (r *Rig) Snapshot() []JointSnapshot {
	snap := make([]JointSnapshot, 0, robot.NumJoints)
	for _, j := range r.joints {
		c := j.Controller
		snap = append(snap, JointSnapshot{
			Name:        c.Name(),
			Axis:        c.Axis(),
			Orientation: j.State.Orientation,
			Reading:     c.Reading(j.State),
			Reference:   c.Reference(),
			Manual:      c.Manual(),
		})
	}
	return snap
}
