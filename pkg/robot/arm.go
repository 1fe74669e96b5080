package robot

import (
	"context"
	"fmt"

	"github.com/hipsterbrown/feetech-servo/feetech"
)

// Arm is a physical SO-101 arm that mirrors the rig's joint angles.
type Arm struct {
	bus         *feetech.Bus
	group       *feetech.ServoGroup
	calibration Calibration
}

// NewArm opens the servo bus on port and groups the calibrated servos.
func NewArm(port string, cal Calibration) (*Arm, error) {
	if len(cal) == 0 {
		return nil, fmt.Errorf("arm on %s is not calibrated", port)
	}

	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	group := feetech.NewServoGroupByIDs(bus, cal.ServoIDs()...)

	return &Arm{
		bus:         bus,
		group:       group,
		calibration: cal,
	}, nil
}

// Close closes the arm's bus connection.
func (a *Arm) Close() error {
	return a.bus.Close()
}

// Enable enables torque on all servos.
func (a *Arm) Enable(ctx context.Context) error {
	return a.group.EnableAll(ctx)
}

// Disable disables torque on all servos.
func (a *Arm) Disable(ctx context.Context) error {
	return a.group.DisableAll(ctx)
}

// WriteAngles drives each calibrated servo to its joint's angle in radians.
func (a *Arm) WriteAngles(ctx context.Context, angles map[JointName]float64) error {
	raw := ServoTargets(a.calibration, angles)
	if len(raw) == 0 {
		return nil
	}
	if err := a.group.SetPositions(ctx, feetech.PositionMap(raw)); err != nil {
		return fmt.Errorf("write positions: %w", err)
	}
	return nil
}

// ServoTargets converts joint angles to raw servo positions keyed by servo ID.
// Joints without calibration are skipped.
func ServoTargets(cal Calibration, angles map[JointName]float64) map[int]int {
	raw := make(map[int]int, len(angles))
	for name, angle := range angles {
		sc, ok := cal[name]
		if !ok {
			continue
		}
		raw[sc.ID] = sc.Denormalize(AngleToNorm(angle))
	}
	return raw
}
