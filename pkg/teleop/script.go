package teleop

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gwillem/armrig/pkg/rig"
	"github.com/gwillem/armrig/pkg/robot"
)

// Script is a fixed key sequence for replaying the rig without a terminal.
type Script struct {
	Dt    float64      `yaml:"dt"`
	Steps []ScriptStep `yaml:"steps"`
}

// ScriptStep holds keys down for a number of ticks.
type ScriptStep struct {
	Keys  []string `yaml:"keys"`
	Ticks int      `yaml:"ticks"`
	Dt    *float64 `yaml:"dt,omitempty"` // overrides Script.Dt
}

// LoadScript reads a YAML script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript parses a YAML script. Steps without ticks run once.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(s.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i := range s.Steps {
		if s.Steps[i].Ticks < 0 {
			return nil, fmt.Errorf("parse script: step %d has negative ticks", i+1)
		}
		if s.Steps[i].Ticks == 0 {
			s.Steps[i].Ticks = 1
		}
	}
	if s.Dt == 0 {
		s.Dt = 1.0 / 60
	}
	return &s, nil
}

// Ticks returns the total number of ticks in the script.
func (s *Script) Ticks() int {
	n := 0
	for _, step := range s.Steps {
		n += step.Ticks
	}
	return n
}

// Run replays the script on r, calling observe after every tick.
func (s *Script) Run(r *rig.Rig, observe func(tick int, r *rig.Rig)) {
	tick := 0
	for _, step := range s.Steps {
		keys := make([]robot.KeyID, len(step.Keys))
		for i, k := range step.Keys {
			keys[i] = robot.ParseKey(k)
		}
		held := robot.NewKeySet(keys...)

		dt := s.Dt
		if step.Dt != nil {
			dt = *step.Dt
		}
		for i := 0; i < step.Ticks; i++ {
			r.Update(dt, held)
			tick++
			if observe != nil {
				observe(tick, r)
			}
		}
	}
}
