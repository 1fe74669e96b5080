package robot

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// ReadingMode selects how a joint's control-axis value is read from its orientation.
type ReadingMode string

const (
	// ReadingAngle reads the signed rotation angle about the axis, in radians.
	ReadingAngle ReadingMode = "angle"
	// ReadingQuaternion reads the raw quaternion component for the axis.
	ReadingQuaternion ReadingMode = "quaternion"
)

// ParseReadingMode parses "angle" or "quaternion"; empty means angle.
func ParseReadingMode(s string) (ReadingMode, error) {
	switch m := ReadingMode(strings.ToLower(s)); m {
	case "", ReadingAngle:
		return ReadingAngle, nil
	case ReadingQuaternion:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown reading mode %q", ErrInvalidConfig, s)
}

// JointState is the orientation of one joint and its rotation speed.
// Only the joint's own controller writes to it.
type JointState struct {
	Orientation mgl64.Quat
	Speed       float64 // rad/s
}

// NewJointState returns a joint at the identity orientation.
func NewJointState(speed float64) *JointState {
	return &JointState{
		Orientation: mgl64.QuatIdent(),
		Speed:       speed,
	}
}

// Rotate applies a rotation of angle radians about axis in the parent frame.
func (s *JointState) Rotate(axis Axis, angle float64) {
	if angle == 0 {
		return
	}
	r := mgl64.QuatRotate(angle, axis.Vec())
	s.Orientation = r.Mul(s.Orientation).Normalize()
}

// Reading returns the control-axis value of the orientation.
func (s *JointState) Reading(axis Axis, mode ReadingMode) float64 {
	if mode == ReadingQuaternion {
		return s.Component(axis)
	}
	return s.Angle(axis)
}

// Component returns the quaternion's vector component along axis.
func (s *JointState) Component(axis Axis) float64 {
	return s.Orientation.V.Dot(axis.Vec())
}

// Angle returns the signed rotation about axis in (-2π, 2π].
// It is exact when the joint has only ever been rotated about that axis.
func (s *JointState) Angle(axis Axis) float64 {
	return 2 * math.Atan2(s.Component(axis), s.Orientation.W)
}
