// Package armrig drives a five-joint manipulator rig from the keyboard.
//
// Each control tick reads which keys are held and how much time has
// passed, then rotates the shoulder, lower arm, elbow, upper arm and
// wrist joints: toggled manual control with soft angle limits, and a
// damped return toward a reference pose captured on demand. The rig can
// optionally mirror its pose onto an SO-101 arm.
//
// # Installation
//
//	go install github.com/gwillem/armrig/cmd/armrig@latest
//
// # Usage
//
// Write a default configuration, optionally pairing a physical arm:
//
//	armrig setup
//
// Then drive the rig:
//
//	armrig run
//
// Press a joint's toggle key (e, w, q, r, t) to switch manual control on
// or off, use left/right to rotate, z to mark the reference pose and c to ease back
// toward it.
//
// Terminals report key presses but not releases, so a key counts as held
// for loop.key_hold (500ms by default) after its last press or
// auto-repeat. A tap therefore moves a joint for half a second; lower
// key_hold in the config for finer taps if your terminal repeats quickly.
//
// # Packages
//
//   - cmd/armrig: CLI with setup, run, replay and config commands
//   - pkg/robot: joint names, axes, joint state, configuration, servo arm
//   - pkg/rig: per-joint controllers, reference registry, the rig itself
//   - pkg/teleop: real-time control loop and held-key tracking
package armrig
