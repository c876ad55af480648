package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/pageport"
	"github.com/fwojciec/pageport/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func newRecord(builder pageport.BuilderID, theme string) *pageport.ExportRecord {
	return &pageport.ExportRecord{
		BuilderID:  builder,
		Source:     pageport.SourceExtractedElements,
		ThemeName:  theme,
		TotalSize:  2048,
		FileCount:  4,
		OutputPath: "/tmp/" + theme + ".zip",
	}
}

func TestExportRecordService_CreateExportRecord(t *testing.T) {
	t.Parallel()

	t.Run("creates record with generated ID and timestamp", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewExportRecordService(db)

		rec := newRecord(pageport.BuilderDivi, "landing")
		err := svc.CreateExportRecord(context.Background(), rec)

		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID, "ID should be generated")
		assert.False(t, rec.CreatedAt.IsZero(), "CreatedAt should be set")
	})

	t.Run("returns error for invalid record", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewExportRecordService(db)

		err := svc.CreateExportRecord(context.Background(), &pageport.ExportRecord{})

		require.Error(t, err)
		assert.Equal(t, pageport.EINVALID, pageport.ErrorCode(err))
	})
}

func TestExportRecordService_FindExportRecordByID(t *testing.T) {
	t.Parallel()

	t.Run("returns record when found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewExportRecordService(db)
		ctx := context.Background()

		score := 95
		rec := newRecord(pageport.BuilderPluginFree, "landing")
		rec.PluginFreeScore = &score
		require.NoError(t, svc.CreateExportRecord(ctx, rec))

		found, err := svc.FindExportRecordByID(ctx, rec.ID)

		require.NoError(t, err)
		assert.Equal(t, rec.ID, found.ID)
		assert.Equal(t, pageport.BuilderPluginFree, found.BuilderID)
		assert.Equal(t, pageport.SourceExtractedElements, found.Source)
		assert.Equal(t, "landing", found.ThemeName)
		assert.Equal(t, int64(2048), found.TotalSize)
		assert.Equal(t, 4, found.FileCount)
		require.NotNil(t, found.PluginFreeScore)
		assert.Equal(t, 95, *found.PluginFreeScore)
		assert.Equal(t, "/tmp/landing.zip", found.OutputPath)
		assert.True(t, rec.CreatedAt.Equal(found.CreatedAt))
		assert.Equal(t, time.UTC, found.CreatedAt.Location())
	})

	t.Run("keeps a missing score nil", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewExportRecordService(db)
		ctx := context.Background()

		rec := newRecord(pageport.BuilderBricks, "landing")
		require.NoError(t, svc.CreateExportRecord(ctx, rec))

		found, err := svc.FindExportRecordByID(ctx, rec.ID)

		require.NoError(t, err)
		assert.Nil(t, found.PluginFreeScore)
	})

	t.Run("returns ENOTFOUND when not found", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewExportRecordService(db)

		_, err := svc.FindExportRecordByID(context.Background(), "nonexistent-id")

		require.Error(t, err)
		assert.Equal(t, pageport.ENOTFOUND, pageport.ErrorCode(err))
	})
}

func TestExportRecordService_FindExportRecords(t *testing.T) {
	t.Parallel()

	seed := func(t *testing.T, svc *sqlite.ExportRecordService) {
		t.Helper()
		for _, r := range []*pageport.ExportRecord{
			newRecord(pageport.BuilderElementor, "a"),
			newRecord(pageport.BuilderGutenberg, "b"),
			newRecord(pageport.BuilderElementor, "c"),
		} {
			require.NoError(t, svc.CreateExportRecord(context.Background(), r))
		}
	}

	t.Run("returns all records newest first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewExportRecordService(db)
		seed(t, svc)

		records, err := svc.FindExportRecords(context.Background(), pageport.ExportRecordFilter{})

		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "c", records[0].ThemeName)
		assert.Equal(t, "b", records[1].ThemeName)
		assert.Equal(t, "a", records[2].ThemeName)
	})

	t.Run("filters by builder", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewExportRecordService(db)
		seed(t, svc)

		id := pageport.BuilderElementor
		records, err := svc.FindExportRecords(context.Background(), pageport.ExportRecordFilter{BuilderID: &id})

		require.NoError(t, err)
		require.Len(t, records, 2)
		for _, r := range records {
			assert.Equal(t, pageport.BuilderElementor, r.BuilderID)
		}
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewExportRecordService(db)
		seed(t, svc)

		records, err := svc.FindExportRecords(context.Background(), pageport.ExportRecordFilter{Limit: 1, Offset: 1})

		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "b", records[0].ThemeName)
	})

	t.Run("returns empty result for empty table", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewExportRecordService(db)

		records, err := svc.FindExportRecords(context.Background(), pageport.ExportRecordFilter{})

		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
