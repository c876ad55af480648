package main

import (
	"fmt"

	"github.com/fwojciec/pageport/yaml"
)

// Run executes the init command.
func (c *InitCmd) Run(deps *Dependencies) error {
	if err := yaml.Init(c.Path, c.Force); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Wrote %s\n", c.Path)
	return nil
}
