package robot

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "armrig.json"

// ErrInvalidConfig is wrapped by every configuration validation error.
var ErrInvalidConfig = errors.New("invalid config")

// ToggleMode selects how a joint's toggle key enables manual control.
type ToggleMode string

const (
	// ToggleEdge flips a persisted flag when the toggle key goes down.
	ToggleEdge ToggleMode = "edge"
	// ToggleHold enables manual control only on ticks the toggle key is held.
	ToggleHold ToggleMode = "hold"
)

// Config holds the rig configuration
type Config struct {
	Keys    KeyBindings               `json:"keys" yaml:"keys"`
	Joints  map[JointName]JointConfig `json:"joints" yaml:"joints"`
	Control ControlConfig             `json:"control" yaml:"control"`
	Loop    LoopConfig                `json:"loop" yaml:"loop"`
	Mirror  *MirrorConfig             `json:"mirror,omitempty" yaml:"mirror,omitempty"`
}

// KeyBindings are the keys shared by all joints.
type KeyBindings struct {
	Mark   KeyID `json:"mark" yaml:"mark"`
	Return KeyID `json:"return" yaml:"return"`
	// RotateNegative raises the axis value, RotatePositive lowers it.
	RotateNegative KeyID `json:"rotate_negative" yaml:"rotate_negative"`
	RotatePositive KeyID `json:"rotate_positive" yaml:"rotate_positive"`
}

// JointConfig holds configuration for a single joint.
// A nil bound leaves that side unconstrained.
type JointConfig struct {
	Axis   Axis     `json:"axis" yaml:"axis"`
	Toggle KeyID    `json:"toggle" yaml:"toggle"`
	Speed  float64  `json:"speed" yaml:"speed"`
	Upper  *float64 `json:"upper" yaml:"upper"`
	Lower  *float64 `json:"lower" yaml:"lower"`
}

// ControlConfig tunes the controller behavior shared by all joints.
type ControlConfig struct {
	Toggle     ToggleMode  `json:"toggle" yaml:"toggle"`
	Reading    ReadingMode `json:"reading" yaml:"reading"`
	ReturnGain float64     `json:"return_gain" yaml:"return_gain"`
}

// LoopConfig configures the real-time control loop.
type LoopConfig struct {
	Hz      int    `json:"hz" yaml:"hz"`
	KeyHold string `json:"key_hold" yaml:"key_hold"` // duration string like "500ms"
}

// MirrorConfig pairs the rig with a physical arm.
type MirrorConfig struct {
	Port        string      `json:"port" yaml:"port"`
	Calibration Calibration `json:"calibration,omitempty" yaml:"calibration,omitempty"`
}

// IsCalibrated returns true if the mirror arm has calibration data
func (m *MirrorConfig) IsCalibrated() bool {
	return m != nil && len(m.Calibration) > 0
}

// Bound returns a pointer to v, for JointConfig limits.
func Bound(v float64) *float64 { return &v }

// DefaultConfig returns the stock five-joint rig.
func DefaultConfig() *Config {
	return &Config{
		Keys: KeyBindings{
			Mark:           "z",
			Return:         "c",
			RotateNegative: "left",
			RotatePositive: "right",
		},
		Joints: map[JointName]JointConfig{
			Shoulder: {Axis: AxisY, Toggle: "e", Speed: 1},
			LowerArm: {Axis: AxisX, Toggle: "w", Speed: 1, Upper: Bound(0.7), Lower: Bound(-0.3)},
			Elbow:    {Axis: AxisX, Toggle: "q", Speed: 1, Upper: Bound(0.1), Lower: Bound(-0.8)},
			UpperArm: {Axis: AxisX, Toggle: "r", Speed: 1, Upper: Bound(1.0), Lower: Bound(-1.0)},
			Wrist:    {Axis: AxisZ, Toggle: "t", Speed: 1, Upper: Bound(1.0), Lower: Bound(-1.0)},
		},
		Control: ControlConfig{
			Toggle:     ToggleEdge,
			Reading:    ReadingAngle,
			ReturnGain: 5.0,
		},
		Loop: LoopConfig{
			Hz:      60,
			KeyHold: "500ms",
		},
	}
}

// KeyHoldDuration returns the parsed key hold window.
func (l LoopConfig) KeyHoldDuration() (time.Duration, error) {
	d, err := time.ParseDuration(l.KeyHold)
	if err != nil {
		return 0, fmt.Errorf("%w: key_hold: %v", ErrInvalidConfig, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: key_hold must be positive, got %s", ErrInvalidConfig, d)
	}
	return d, nil
}

// Validate checks the configuration for a usable rig.
func (c *Config) Validate() error {
	shared := map[KeyID]string{}
	for name, key := range map[string]KeyID{
		"mark":            c.Keys.Mark,
		"return":          c.Keys.Return,
		"rotate_negative": c.Keys.RotateNegative,
		"rotate_positive": c.Keys.RotatePositive,
	} {
		if key == "" {
			return fmt.Errorf("%w: keys.%s is empty", ErrInvalidConfig, name)
		}
		if other, dup := shared[key]; dup {
			return fmt.Errorf("%w: keys.%s and keys.%s both use %q", ErrInvalidConfig, name, other, key)
		}
		shared[key] = name
	}

	for name := range c.Joints {
		if !name.Valid() {
			return fmt.Errorf("%w: unknown joint %q", ErrInvalidConfig, name)
		}
	}

	toggles := map[KeyID]JointName{}
	for _, name := range AllJoints() {
		jc, ok := c.Joints[name]
		if !ok {
			return fmt.Errorf("%w: joint %s missing", ErrInvalidConfig, name)
		}
		if err := jc.validate(); err != nil {
			return fmt.Errorf("joint %s: %w", name, err)
		}
		if other, dup := shared[jc.Toggle]; dup {
			return fmt.Errorf("%w: joint %s toggle %q collides with keys.%s", ErrInvalidConfig, name, jc.Toggle, other)
		}
		if other, dup := toggles[jc.Toggle]; dup {
			return fmt.Errorf("%w: joints %s and %s share toggle %q", ErrInvalidConfig, other, name, jc.Toggle)
		}
		toggles[jc.Toggle] = name
	}

	switch c.Control.Toggle {
	case ToggleEdge, ToggleHold:
	default:
		return fmt.Errorf("%w: unknown toggle mode %q", ErrInvalidConfig, c.Control.Toggle)
	}
	if _, err := ParseReadingMode(string(c.Control.Reading)); err != nil {
		return err
	}
	if !(c.Control.ReturnGain > 0) || math.IsInf(c.Control.ReturnGain, 0) {
		return fmt.Errorf("%w: return_gain must be positive, got %v", ErrInvalidConfig, c.Control.ReturnGain)
	}

	if c.Loop.Hz <= 0 {
		return fmt.Errorf("%w: hz must be positive, got %d", ErrInvalidConfig, c.Loop.Hz)
	}
	if _, err := c.Loop.KeyHoldDuration(); err != nil {
		return err
	}
	return nil
}

func (jc JointConfig) validate() error {
	if !jc.Axis.Valid() {
		return fmt.Errorf("%w: unknown axis %d", ErrInvalidConfig, int(jc.Axis))
	}
	if jc.Toggle == "" {
		return fmt.Errorf("%w: toggle key is empty", ErrInvalidConfig)
	}
	if !(jc.Speed > 0) || math.IsInf(jc.Speed, 0) {
		return fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidConfig, jc.Speed)
	}
	if jc.Upper != nil && jc.Lower != nil && *jc.Upper < *jc.Lower {
		return fmt.Errorf("%w: upper %v below lower %v", ErrInvalidConfig, *jc.Upper, *jc.Lower)
	}
	return nil
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file.
// Fields absent from the file keep their defaults.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err == nil {
		err = overlayJoints(path, data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// overlayJoints decodes each joint entry in data on top of that joint's
// default, so a partial entry keeps its default axis and bounds. Both
// decoders otherwise start every map value from a zero JointConfig.
func overlayJoints(path string, data []byte, cfg *Config) error {
	defaults := DefaultConfig().Joints
	if isYAML(path) {
		var raw struct {
			Joints map[JointName]yaml.Node `yaml:"joints"`
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return err
		}
		for name, node := range raw.Joints {
			jc := defaults[name]
			if err := node.Decode(&jc); err != nil {
				return fmt.Errorf("joint %s: %w", name, err)
			}
			cfg.Joints[name] = jc
		}
		return nil
	}

	var raw struct {
		Joints map[JointName]json.RawMessage `json:"joints"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for name, msg := range raw.Joints {
		jc := defaults[name]
		if err := json.Unmarshal(msg, &jc); err != nil {
			return fmt.Errorf("joint %s: %w", name, err)
		}
		cfg.Joints[name] = jc
	}
	return nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
