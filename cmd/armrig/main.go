package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/gwillem/armrig/pkg/robot"
)

type Options struct {
	Config string `short:"c" long:"config" default:"armrig.json" description:"Configuration file (.json, .yaml or .yml)"`

	Setup  SetupCommand  `command:"setup" description:"Write a configuration and optionally pair an SO-101 arm as mirror"`
	Run    RunCommand    `command:"run" alias:"teleop" description:"Drive the rig from the keyboard"`
	Replay ReplayCommand `command:"replay" description:"Replay a key script without a terminal UI"`
	Show   ShowCommand   `command:"config" description:"Print the effective configuration"`
}

var opts Options
var parser = flags.NewParser(&opts, flags.Default)

func main() {
	parser.LongDescription = "armrig - keyboard-driven five-joint manipulator rig"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}
}

// loadConfig reads the configured file, falling back to defaults when it
// does not exist yet.
func loadConfig() (*robot.Config, error) {
	cfg, err := robot.LoadConfigFrom(opts.Config)
	if errors.Is(err, os.ErrNotExist) {
		cfg = robot.DefaultConfig()
	} else if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Config, err)
	}
	return cfg, nil
}
