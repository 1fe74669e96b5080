package rig

import "math"

// SanitizeStep clamps a degenerate elapsed time (negative, NaN or
// infinite) to zero. ok is false when dt had to be clamped.
func SanitizeStep(dt float64) (clean float64, ok bool) {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt < 0 {
		return 0, false
	}
	return dt, true
}
