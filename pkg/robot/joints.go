// Package robot provides the joints, axes and configuration of a manipulator rig.
package robot

// JointName identifies a joint in the rig.
type JointName string

// Joint names, base to tip.
const (
	Shoulder JointName = "shoulder"
	LowerArm JointName = "lower_arm"
	Elbow    JointName = "elbow"
	UpperArm JointName = "upper_arm"
	Wrist    JointName = "wrist"
)

// NumJoints is the number of joints in the rig.
const NumJoints = 5

// AllJoints returns all joint names in chain order (matching servo IDs 1-5).
func AllJoints() []JointName {
	return []JointName{
		Shoulder,
		LowerArm,
		Elbow,
		UpperArm,
		Wrist,
	}
}

// Index returns the chain position of a joint, or -1 if the name is unknown.
func (j JointName) Index() int {
	for i, name := range AllJoints() {
		if name == j {
			return i
		}
	}
	return -1
}

// Valid reports whether j is one of the rig's joints.
func (j JointName) Valid() bool {
	return j.Index() >= 0
}
