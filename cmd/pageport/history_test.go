package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/pageport"
	main "github.com/fwojciec/pageport/cmd/pageport"
	"github.com/fwojciec/pageport/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists records with builder, theme, size and score", func(t *testing.T) {
		t.Parallel()

		score := 85
		var filter pageport.ExportRecordFilter
		records := &mock.ExportRecordService{
			FindExportRecordsFn: func(_ context.Context, f pageport.ExportRecordFilter) ([]*pageport.ExportRecord, error) {
				filter = f
				return []*pageport.ExportRecord{
					{
						ID:              "rec-1",
						BuilderID:       pageport.BuilderDivi,
						Source:          pageport.SourceExtractedElements,
						ThemeName:       "Acme",
						TotalSize:       2048,
						FileCount:       3,
						PluginFreeScore: &score,
						OutputPath:      "/tmp/acme-divi.zip",
						CreatedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
					},
					{
						ID:         "rec-2",
						BuilderID:  pageport.BuilderDivi,
						ThemeName:  "Beta",
						OutputPath: "/tmp/beta",
					},
				}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Records: records,
		}

		err := (&main.HistoryCmd{Target: "divi", Limit: 5}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, 5, filter.Limit)
		require.NotNil(t, filter.BuilderID)
		assert.Equal(t, pageport.BuilderDivi, *filter.BuilderID)

		out := stdout.String()
		assert.Contains(t, out, "rec-1")
		assert.Contains(t, out, "2026-03-01T12:00:00Z")
		assert.Contains(t, out, "Acme")
		assert.Contains(t, out, "85/100")
		assert.Contains(t, out, "/tmp/acme-divi.zip")
		assert.Contains(t, out, "rec-2")
	})

	t.Run("shows helpful message when nothing is recorded", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Records: &mock.ExportRecordService{
				FindExportRecordsFn: func(context.Context, pageport.ExportRecordFilter) ([]*pageport.ExportRecord, error) {
					return nil, nil
				},
			},
		}

		err := (&main.HistoryCmd{Limit: 20}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "No exports recorded")
	})

	t.Run("returns error when the lookup fails", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Records: &mock.ExportRecordService{
				FindExportRecordsFn: func(context.Context, pageport.ExportRecordFilter) ([]*pageport.ExportRecord, error) {
					return nil, errors.New("database locked")
				},
			},
		}

		err := (&main.HistoryCmd{}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "database locked")
	})
}
