package robot

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Axis is the rotation axis a joint's keys and limits act upon.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Vec returns the unit vector of the axis.
func (a Axis) Vec() mgl64.Vec3 {
	switch a {
	case AxisY:
		return mgl64.Vec3{0, 1, 0}
	case AxisZ:
		return mgl64.Vec3{0, 0, 1}
	default:
		return mgl64.Vec3{1, 0, 0}
	}
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisZ:
		return "z"
	}
	return fmt.Sprintf("axis(%d)", int(a))
}

// Valid reports whether a is X, Y or Z.
func (a Axis) Valid() bool {
	return a >= AxisX && a <= AxisZ
}

// ParseAxis parses "x", "y" or "z" (case-insensitive).
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return AxisX, nil
	case "y":
		return AxisY, nil
	case "z":
		return AxisZ, nil
	}
	return 0, fmt.Errorf("%w: unknown axis %q", ErrInvalidConfig, s)
}

// MarshalText implements encoding.TextMarshaler.
func (a Axis) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("%w: unknown axis %d", ErrInvalidConfig, int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Axis) UnmarshalText(text []byte) error {
	parsed, err := ParseAxis(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
