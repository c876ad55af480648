package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/fwojciec/pageport"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ pageport.ExportRecordService = (*ExportRecordService)(nil)

// ExportRecordService implements pageport.ExportRecordService using SQLite.
type ExportRecordService struct {
	db *DB
}

// NewExportRecordService creates a new ExportRecordService.
func NewExportRecordService(db *DB) *ExportRecordService {
	return &ExportRecordService{db: db}
}

const exportRecordColumns = "id, builder_id, source, theme_name, total_size, file_count, plugin_free_score, output_path, created_at"

// CreateExportRecord stores a new record with a generated ID.
func (s *ExportRecordService) CreateExportRecord(ctx context.Context, rec *pageport.ExportRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	rec.ID = uuid.New().String()
	rec.CreatedAt = time.Now().UTC().Truncate(time.Second)

	var score sql.NullInt64
	if rec.PluginFreeScore != nil {
		score = sql.NullInt64{Int64: int64(*rec.PluginFreeScore), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO export_records (`+exportRecordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, string(rec.BuilderID), string(rec.Source), rec.ThemeName, rec.TotalSize, rec.FileCount,
		score, rec.OutputPath, rec.CreatedAt.Format(time.RFC3339))

	return err
}

// FindExportRecordByID retrieves a record by ID.
func (s *ExportRecordService) FindExportRecordByID(ctx context.Context, id string) (*pageport.ExportRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+exportRecordColumns+` FROM export_records WHERE id = ?`, id)

	rec, err := scanExportRecord(row)
	if err == sql.ErrNoRows {
		return nil, pageport.Errorf(pageport.ENOTFOUND, "export record not found")
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// FindExportRecords retrieves records matching the filter, newest first.
func (s *ExportRecordService) FindExportRecords(ctx context.Context, filter pageport.ExportRecordFilter) ([]*pageport.ExportRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT " + exportRecordColumns + " FROM export_records WHERE 1=1")

	if filter.BuilderID != nil {
		query.WriteString(" AND builder_id = ?")
		args = append(args, string(*filter.BuilderID))
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*pageport.ExportRecord
	for rows.Next() {
		rec, err := scanExportRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanExportRecord(row scanner) (*pageport.ExportRecord, error) {
	var rec pageport.ExportRecord
	var builderID, source, createdAt string
	var score sql.NullInt64

	if err := row.Scan(&rec.ID, &builderID, &source, &rec.ThemeName, &rec.TotalSize, &rec.FileCount,
		&score, &rec.OutputPath, &createdAt); err != nil {
		return nil, err
	}

	rec.BuilderID = pageport.BuilderID(builderID)
	rec.Source = pageport.SourceKind(source)
	if score.Valid {
		v := int(score.Int64)
		rec.PluginFreeScore = &v
	}

	var err error
	if rec.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	return &rec, nil
}
