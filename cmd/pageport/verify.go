package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/export"
	"github.com/fwojciec/pageport/fs"
	"github.com/fwojciec/pageport/zip"
)

// Run executes the verify command.
func (c *VerifyCmd) Run(deps *Dependencies) error {
	files, target, err := c.load()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}
	if c.Target != "" {
		target = pageport.BuilderID(c.Target)
	}
	if target == "" {
		target = pageport.BuilderPluginFree
	}

	report, err := deps.Verifier.Verify(deps.Ctx, files, target)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", message(err))
		return err
	}
	fmt.Fprint(deps.Stdout, export.FormatVerificationReport(report, nil))

	if c.Strict && !report.IsPluginFree {
		return pageport.Errorf(pageport.EINVALID, "%s is not plugin-free (score %d/100)", c.Path, report.Score)
	}
	return nil
}

// load reads the files of an exported directory or archive. Archives also
// name their builder.
func (c *VerifyCmd) load() ([]pageport.File, pageport.BuilderID, error) {
	info, err := os.Stat(c.Path)
	if os.IsNotExist(err) {
		return nil, "", pageport.Errorf(pageport.ENOTFOUND, "%s not found", c.Path)
	}
	if err != nil {
		return nil, "", err
	}

	if info.IsDir() {
		files, err := fs.ReadDir(c.Path)
		return files, "", err
	}

	data, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, "", err
	}
	m, files, err := zip.Open(data)
	if err != nil {
		return nil, "", err
	}
	return files, m.Metadata.BuilderID, nil
}
