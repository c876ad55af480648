package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/pageport"
)

// Run executes the builders command.
func (c *BuildersCmd) Run(deps *Dependencies) error {
	for _, id := range pageport.BuilderIDs() {
		b, err := deps.Builders.Builder(id)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
			return err
		}
		headline, _, _ := strings.Cut(b.Instructions(), "\n")
		fmt.Fprintf(deps.Stdout, "%-15s %s\n", id, headline)
	}
	return nil
}
