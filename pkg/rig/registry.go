package rig

import "github.com/gwillem/armrig/pkg/robot"

// Slot holds one joint's reference angle. Each slot belongs to exactly
// one controller, so it needs no locking.
type Slot struct {
	value float64
}

// Mark records v as the reference.
func (s *Slot) Mark(v float64) { s.value = v }

// Value returns the last marked reference, 0 until the first mark.
func (s *Slot) Value() float64 { return s.value }

// Registry holds the reference slot of every joint in the rig.
type Registry struct {
	slots [robot.NumJoints]Slot
}

// NewRegistry returns a registry with all references at zero.
func NewRegistry() *Registry {
	return &Registry{}
}

// Slot returns the slot of joint j, or nil for an unknown joint.
func (r *Registry) Slot(j robot.JointName) *Slot {
	i := j.Index()
	if i < 0 {
		return nil
	}
	return &r.slots[i]
}

// Reference returns the marked reference of joint j.
func (r *Registry) Reference(j robot.JointName) float64 {
	if s := r.Slot(j); s != nil {
		return s.Value()
	}
	return 0
}
