package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/pageport"
	main "github.com/fwojciec/pageport/cmd/pageport"
	"github.com/fwojciec/pageport/mock"
	"github.com/fwojciec/pageport/signature"
	"github.com/fwojciec/pageport/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("verifies a directory as plugin-free by default", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "content.html"), []byte(`<div class="elementor-widget">Hi</div>`), 0644))
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "reports"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "reports", "budget-validation.txt"), []byte("elementor"), 0644))

		var files []pageport.File
		var target pageport.BuilderID
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Verifier: &mock.Verifier{
				VerifyFn: func(_ context.Context, f []pageport.File, tgt pageport.BuilderID) (*pageport.VerificationReport, error) {
					files, target = f, tgt
					return &pageport.VerificationReport{IsPluginFree: true, Score: 100}, nil
				},
			},
		}

		err := (&main.VerifyCmd{Path: dir}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, pageport.BuilderPluginFree, target)
		require.Len(t, files, 1)
		assert.Equal(t, "content.html", files[0].Path)
		assert.Contains(t, stdout.String(), "Score: 100/100")
	})

	t.Run("reads the target from an archive manifest", func(t *testing.T) {
		t.Parallel()

		data, err := zip.NewPackager().Package(context.Background(), &pageport.ExportArtifact{
			Files:    []pageport.File{{Path: "content.html", Group: pageport.GroupMarkup, Content: []byte("<p>x</p>")}},
			Metadata: pageport.ArtifactMetadata{BuilderID: pageport.BuilderKadence},
		})
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "export.zip")
		require.NoError(t, os.WriteFile(path, data, 0644))

		var target pageport.BuilderID
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
			Verifier: &mock.Verifier{
				VerifyFn: func(_ context.Context, _ []pageport.File, tgt pageport.BuilderID) (*pageport.VerificationReport, error) {
					target = tgt
					return &pageport.VerificationReport{IsPluginFree: true, Score: 100}, nil
				},
			},
		}

		err = (&main.VerifyCmd{Path: path}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, pageport.BuilderKadence, target)
	})

	t.Run("strict mode fails on foreign dependencies", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "content.html"), []byte(`<div class="et_pb_section">[et_pb_text]Hi[/et_pb_text]</div>`), 0644))
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Verifier: signature.NewVerifier(signature.Default()),
		}

		err := (&main.VerifyCmd{Path: dir, Target: "gutenberg", Strict: true}).Run(deps)

		assert.Equal(t, pageport.EINVALID, pageport.ErrorCode(err))
		assert.Contains(t, stdout.String(), "Plugin-free: no")
		assert.Contains(t, stdout.String(), "divi")
	})

	t.Run("missing path is not found", func(t *testing.T) {
		t.Parallel()

		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   &bytes.Buffer{},
			Stderr:   &bytes.Buffer{},
			Verifier: &mock.Verifier{},
		}

		err := (&main.VerifyCmd{Path: filepath.Join(t.TempDir(), "nope")}).Run(deps)

		assert.Equal(t, pageport.ENOTFOUND, pageport.ErrorCode(err))
	})
}
