package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/gwillem/armrig/pkg/rig"
	"github.com/gwillem/armrig/pkg/robot"
	"github.com/gwillem/armrig/pkg/teleop"
)

type ReplayCommand struct {
	Plot string `long:"plot" value-name:"JOINT" description:"Plot this joint's reading over the script"`
	Args struct {
		Script string `positional-arg-name:"script" description:"YAML key script"`
	} `positional-args:"yes" required:"yes"`
}

func (c *ReplayCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	plotJoint := robot.JointName(c.Plot)
	if c.Plot != "" && !plotJoint.Valid() {
		return fmt.Errorf("unknown joint %q", c.Plot)
	}

	script, err := teleop.LoadScript(c.Args.Script)
	if err != nil {
		return err
	}

	r, err := rig.New(cfg)
	if err != nil {
		return err
	}

	var trace []float64
	script.Run(r, func(tick int, r *rig.Rig) {
		if c.Plot != "" {
			trace = append(trace, r.Reading(plotJoint))
		}
	})

	fmt.Println(headerStyle.Render("armrig replay"))
	fmt.Printf("%s: %d ticks at dt=%gs\n\n", c.Args.Script, script.Ticks(), script.Dt)
	fmt.Println(renderJointTable(cfg, r.Snapshot()))

	if n := r.DegenerateSteps(); n > 0 {
		fmt.Println(dimStyle.Render(fmt.Sprintf("%d tick(s) had a degenerate time step and were held still", n)))
	}

	if len(trace) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(trace,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s %s reading per tick", plotJoint, cfg.Control.Reading)),
		))
	}
	return nil
}
