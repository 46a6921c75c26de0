package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fixerhq/job-import/internal/importer"
)

// Upload is one recorded import run.
type Upload struct {
	ID             string     `json:"id"`
	FileName       string     `json:"fileName"`
	Status         string     `json:"status"`
	TotalRows      int        `json:"totalRows"`
	SuccessfulRows int        `json:"successfulRows"`
	FailedRows     int        `json:"failedRows"`
	RolledBack     bool       `json:"rolledBack"`
	CreatedAt      time.Time  `json:"createdAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

// ErrUploadNotFound is returned when an upload ID has no recorded run.
var ErrUploadNotFound = fmt.Errorf("upload not found")

// CreateUpload records the start of an import run.
func CreateUpload(ctx context.Context, db DBTX, id pgtype.UUID, fileName string) error {
	_, err := db.Exec(ctx,
		`INSERT INTO import_uploads (id, file_name, status) VALUES ($1, $2, 'running')`,
		id, fileName)
	if err != nil {
		return fmt.Errorf("create upload record: %w", err)
	}
	return nil
}

// FinishUpload closes out an import run with its final status and counts.
func FinishUpload(ctx context.Context, db DBTX, id pgtype.UUID, status string, total, successful, failed int) error {
	_, err := db.Exec(ctx,
		`UPDATE import_uploads
		 SET status = $2, total_rows = $3, successful_rows = $4, failed_rows = $5, completed_at = now()
		 WHERE id = $1`,
		id, status, total, successful, failed)
	if err != nil {
		return fmt.Errorf("finish upload record: %w", err)
	}
	return nil
}

// InsertRowErrors persists the per-row failures of one import run.
func InsertRowErrors(ctx context.Context, db DBTX, uploadID pgtype.UUID, rowErrs []importer.RowError) error {
	for _, re := range rowErrs {
		_, err := db.Exec(ctx,
			`INSERT INTO import_row_errors (upload_id, row_number, field, message, value)
			 VALUES ($1, $2, $3, $4, $5)`,
			uploadID, re.Row, ToPgText(re.Field), re.Message, ToPgText(re.Value))
		if err != nil {
			return fmt.Errorf("insert row error: %w", err)
		}
	}
	return nil
}

// GetRowErrors returns the recorded failures for one import run in row order.
func GetRowErrors(ctx context.Context, db DBTX, uploadID pgtype.UUID) ([]importer.RowError, error) {
	rows, err := db.Query(ctx,
		`SELECT row_number, COALESCE(field, ''), message, COALESCE(value, '')
		 FROM import_row_errors WHERE upload_id = $1 ORDER BY row_number, id`,
		uploadID)
	if err != nil {
		return nil, fmt.Errorf("query row errors: %w", err)
	}
	defer rows.Close()

	var out []importer.RowError
	for rows.Next() {
		var re importer.RowError
		if err := rows.Scan(&re.Row, &re.Field, &re.Message, &re.Value); err != nil {
			return nil, fmt.Errorf("scan row error: %w", err)
		}
		out = append(out, re)
	}
	return out, rows.Err()
}

// GetUpload fetches one import run by ID.
func GetUpload(ctx context.Context, db DBTX, id pgtype.UUID) (Upload, error) {
	var (
		u           Upload
		pgID        pgtype.UUID
		completedAt pgtype.Timestamptz
	)
	err := db.QueryRow(ctx,
		`SELECT id, file_name, status, total_rows, successful_rows, failed_rows, rolled_back, created_at, completed_at
		 FROM import_uploads WHERE id = $1`,
		id).Scan(&pgID, &u.FileName, &u.Status, &u.TotalRows, &u.SuccessfulRows, &u.FailedRows, &u.RolledBack, &u.CreatedAt, &completedAt)
	if err == pgx.ErrNoRows {
		return Upload{}, ErrUploadNotFound
	}
	if err != nil {
		return Upload{}, fmt.Errorf("get upload: %w", err)
	}
	u.ID = PgUUIDToString(pgID)
	if completedAt.Valid {
		t := completedAt.Time
		u.CompletedAt = &t
	}
	return u, nil
}

// ListUploads returns recent import runs, newest first.
func ListUploads(ctx context.Context, db DBTX, limit int) ([]Upload, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(ctx,
		`SELECT id, file_name, status, total_rows, successful_rows, failed_rows, rolled_back, created_at, completed_at
		 FROM import_uploads ORDER BY created_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	defer rows.Close()

	var out []Upload
	for rows.Next() {
		var (
			u           Upload
			pgID        pgtype.UUID
			completedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&pgID, &u.FileName, &u.Status, &u.TotalRows, &u.SuccessfulRows, &u.FailedRows, &u.RolledBack, &u.CreatedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan upload: %w", err)
		}
		u.ID = PgUUIDToString(pgID)
		if completedAt.Valid {
			t := completedAt.Time
			u.CompletedAt = &t
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// MarkRolledBack flags an import run whose jobs have been deleted.
func MarkRolledBack(ctx context.Context, db DBTX, id pgtype.UUID) error {
	tag, err := db.Exec(ctx,
		`UPDATE import_uploads SET rolled_back = true WHERE id = $1 AND NOT rolled_back`,
		id)
	if err != nil {
		return fmt.Errorf("mark upload rolled back: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("upload already rolled back or missing")
	}
	return nil
}
