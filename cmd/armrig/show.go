package main

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

type ShowCommand struct {
	YAML bool `long:"yaml" description:"Print as YAML instead of JSON"`
}

func (c *ShowCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var data []byte
	if c.YAML {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
