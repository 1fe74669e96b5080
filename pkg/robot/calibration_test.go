package robot

import (
	"math"
	"testing"
)

func TestServoCalibration_Normalize(t *testing.T) {
	cal := ServoCalibration{
		RangeMin: 1000,
		RangeMax: 3000,
	}

	tests := []struct {
		raw      int
		expected float64
	}{
		{1000, -100.0},
		{3000, 100.0},
		{2000, 0.0},
		{1500, -50.0},
		{2500, 50.0},
	}

	for _, tt := range tests {
		got := cal.Normalize(tt.raw)
		if math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("Normalize(%d) = %f, want %f", tt.raw, got, tt.expected)
		}
	}
}

func TestServoCalibration_NormalizeEmptyRange(t *testing.T) {
	cal := ServoCalibration{RangeMin: 2048, RangeMax: 2048}
	if got := cal.Normalize(2100); got != 0 {
		t.Errorf("Normalize on empty range = %f, want 0", got)
	}
}

func TestServoCalibration_RoundTrip(t *testing.T) {
	cal := ServoCalibration{
		RangeMin: 823,
		RangeMax: 3540,
	}

	for raw := cal.RangeMin; raw <= cal.RangeMax; raw += 100 {
		norm := cal.Normalize(raw)
		back := cal.Denormalize(norm)
		if back != raw {
			t.Errorf("Round-trip failed: %d -> %f -> %d", raw, norm, back)
		}
	}
}

func TestAngleToNorm(t *testing.T) {
	tests := []struct {
		angle float64
		want  float64
	}{
		{0, 0},
		{math.Pi / 2, 50},
		{-math.Pi, -100},
		{2 * math.Pi, 100},
		{-4, -100},
	}
	for _, tt := range tests {
		if got := AngleToNorm(tt.angle); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngleToNorm(%f) = %f, want %f", tt.angle, got, tt.want)
		}
	}
}

func TestCalibration_ServoIDs(t *testing.T) {
	cal := Calibration{
		Wrist:    ServoCalibration{ID: 5},
		Shoulder: ServoCalibration{ID: 1},
		Elbow:    ServoCalibration{ID: 3},
	}

	ids := cal.ServoIDs()
	expected := []int{1, 3, 5}

	if len(ids) != len(expected) {
		t.Fatalf("ServoIDs returned %d IDs, want %d", len(ids), len(expected))
	}
	for i, id := range ids {
		if id != expected[i] {
			t.Errorf("ServoIDs()[%d] = %d, want %d", i, id, expected[i])
		}
	}
}

func TestCalibration_ByID(t *testing.T) {
	cal := Calibration{
		Shoulder: ServoCalibration{ID: 1, RangeMin: 100, RangeMax: 200},
		Wrist:    ServoCalibration{ID: 5, RangeMin: 300, RangeMax: 400},
	}

	name, sc, ok := cal.ByID(1)
	if !ok {
		t.Fatal("ByID(1) returned false")
	}
	if name != Shoulder {
		t.Errorf("ByID(1) returned name %s, want shoulder", name)
	}
	if sc.RangeMin != 100 {
		t.Errorf("ByID(1) returned wrong calibration: %+v", sc)
	}

	if _, _, ok = cal.ByID(99); ok {
		t.Error("ByID(99) should return false")
	}
}

func TestServoTargets(t *testing.T) {
	cal := Calibration{
		Shoulder: ServoCalibration{ID: 1, RangeMin: 0, RangeMax: 4000},
		Elbow:    ServoCalibration{ID: 3, RangeMin: 1000, RangeMax: 3000},
	}
	angles := map[JointName]float64{
		Shoulder: 0,
		Elbow:    math.Pi / 2,
		Wrist:    1, // not calibrated
	}

	got := ServoTargets(cal, angles)
	want := map[int]int{1: 2000, 3: 2500}
	if len(got) != len(want) {
		t.Fatalf("ServoTargets returned %v, want %v", got, want)
	}
	for id, raw := range want {
		if got[id] != raw {
			t.Errorf("ServoTargets()[%d] = %d, want %d", id, got[id], raw)
		}
	}
}

func TestServoID(t *testing.T) {
	for i, name := range AllJoints() {
		if got := ServoID(name); got != i+1 {
			t.Errorf("ServoID(%s) = %d, want %d", name, got, i+1)
		}
	}
	if got := ServoID("gripper"); got != 0 {
		t.Errorf("ServoID(gripper) = %d, want 0", got)
	}
}
