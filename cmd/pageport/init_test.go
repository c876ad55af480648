package main_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/pageport"
	main "github.com/fwojciec/pageport/cmd/pageport"
	"github.com/fwojciec/pageport/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCmd_Run(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pageport.yaml")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr}

	require.NoError(t, (&main.InitCmd{Path: path}).Run(deps))
	assert.Contains(t, stdout.String(), "Wrote "+path)

	cfg, err := yaml.Load(path)
	require.NoError(t, err)
	assert.Equal(t, pageport.BuilderPluginFree, cfg.Target)

	err = (&main.InitCmd{Path: path}).Run(deps)
	assert.Equal(t, pageport.EINVALID, pageport.ErrorCode(err))
	assert.Contains(t, stderr.String(), "already exists")
}
