package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/pageport"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := pageport.ExportRecordFilter{Limit: c.Limit}
	if c.Target != "" {
		id := pageport.BuilderID(c.Target)
		filter.BuilderID = &id
	}

	records, err := deps.Records.FindExportRecords(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(deps.Stdout, "No exports recorded. Use 'pageport export' to create one.")
		return nil
	}

	for _, r := range records {
		score := "-"
		if r.PluginFreeScore != nil {
			score = fmt.Sprintf("%d/100", *r.PluginFreeScore)
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %-15s %-8s %s  %s  %s  %s\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.BuilderID, r.Source,
			r.ThemeName, pageport.FormatBytes(r.TotalSize), score, r.OutputPath)
	}
	return nil
}
