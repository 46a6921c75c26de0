package core

import (
	"context"
	"fmt"

	"github.com/fixerhq/job-import/internal/csvio"
	"github.com/fixerhq/job-import/internal/importer"
	"github.com/fixerhq/job-import/internal/store"
)

// Rollback deletes every job created by one import run and flags the run
// so it cannot be rolled back twice.
func (s *Service) Rollback(ctx context.Context, importID string) (RollbackResult, error) {
	result := RollbackResult{ImportID: importID}

	uploadID := store.ToPgUUID(importID)
	if !uploadID.Valid {
		result.Error = "invalid import ID"
		return result, fmt.Errorf("invalid import ID: %s", importID)
	}

	upload, err := store.GetUpload(ctx, s.pool, uploadID)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	if upload.RolledBack {
		result.Error = "import already rolled back"
		return result, fmt.Errorf("import already rolled back: %s", importID)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("begin rollback: %w", err)
	}
	defer tx.Rollback(ctx)

	deleted, err := store.DeleteJobsByUpload(ctx, tx, uploadID)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	if err := store.MarkRolledBack(ctx, tx, uploadID); err != nil {
		result.Error = err.Error()
		return result, err
	}
	if err := tx.Commit(ctx); err != nil {
		result.Error = err.Error()
		return result, fmt.Errorf("commit rollback: %w", err)
	}

	s.log.Info("import rolled back", "import_id", importID, "rows_deleted", deleted)

	result.RowsDeleted = deleted
	result.Success = true
	return result, nil
}

// History returns recent import runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]store.Upload, error) {
	return store.ListUploads(ctx, s.pool, limit)
}

// GetUpload returns the recorded run for one import ID.
func (s *Service) GetUpload(ctx context.Context, importID string) (store.Upload, error) {
	uploadID := store.ToPgUUID(importID)
	if !uploadID.Valid {
		return store.Upload{}, fmt.Errorf("invalid import ID: %s", importID)
	}
	return store.GetUpload(ctx, s.pool, uploadID)
}

// RowErrors returns the persisted failures for one import run.
func (s *Service) RowErrors(ctx context.Context, importID string) ([]importer.RowError, error) {
	uploadID := store.ToPgUUID(importID)
	if !uploadID.Valid {
		return nil, fmt.Errorf("invalid import ID: %s", importID)
	}
	return store.GetRowErrors(ctx, s.pool, uploadID)
}

// errorReportColumns is the column order of the downloadable error report.
var errorReportColumns = []string{"row", "field", "message", "value"}

// ErrorReportCSV renders the persisted failures of one import run as a CSV
// document for download.
func (s *Service) ErrorReportCSV(ctx context.Context, importID string) (string, error) {
	rowErrs, err := s.RowErrors(ctx, importID)
	if err != nil {
		return "", err
	}

	records := make([]map[string]string, 0, len(rowErrs))
	for _, re := range rowErrs {
		records = append(records, map[string]string{
			"row":     fmt.Sprintf("%d", re.Row),
			"field":   re.Field,
			"message": re.Message,
			"value":   re.Value,
		})
	}
	return csvio.Generate(records, csvio.GenerateOptions{Headers: errorReportColumns}), nil
}
