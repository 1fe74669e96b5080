package robot

import "math"

// ServoCalibration holds the raw position range of the servo behind a joint.
type ServoCalibration struct {
	ID       int `json:"id" yaml:"id"`
	RangeMin int `json:"range_min" yaml:"range_min"`
	RangeMax int `json:"range_max" yaml:"range_max"`
}

// Calibration holds servo calibration for all joints, keyed by joint name.
type Calibration map[JointName]ServoCalibration

// ServoID returns the SO-101 servo ID that drives a joint, or 0 if unknown.
func ServoID(j JointName) int {
	return j.Index() + 1
}

// Normalize converts a raw servo position to a normalized value in the range [-100, 100].
func (c ServoCalibration) Normalize(raw int) float64 {
	rangeSize := float64(c.RangeMax - c.RangeMin)
	if rangeSize == 0 {
		return 0
	}
	return (float64(raw-c.RangeMin)/rangeSize)*200 - 100
}

// Denormalize converts a normalized value [-100, 100] to a raw servo position.
func (c ServoCalibration) Denormalize(norm float64) int {
	rangeSize := float64(c.RangeMax - c.RangeMin)
	return int(math.Round((norm+100)/200*rangeSize)) + c.RangeMin
}

// AngleToNorm maps a joint angle to the normalized servo range.
// ±π maps to ±100; larger angles saturate.
func AngleToNorm(angle float64) float64 {
	norm := angle / math.Pi * 100
	return math.Max(-100, math.Min(100, norm))
}

// ServoIDs returns the servo IDs for all calibrated joints in chain order.
func (c Calibration) ServoIDs() []int {
	ids := make([]int, 0, len(c))
	for _, name := range AllJoints() {
		if sc, ok := c[name]; ok {
			ids = append(ids, sc.ID)
		}
	}
	return ids
}

// ByID returns joint name and calibration for a given servo ID.
func (c Calibration) ByID(id int) (JointName, ServoCalibration, bool) {
	for name, sc := range c {
		if sc.ID == id {
			return name, sc, true
		}
	}
	return "", ServoCalibration{}, false
}
