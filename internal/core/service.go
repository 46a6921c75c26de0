package core

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fixerhq/job-import/internal/importer"
	"github.com/fixerhq/job-import/internal/store"
)

// ImportTimeout is the maximum duration for one import run.
var ImportTimeout = 10 * time.Minute

// ContextCheckInterval is how many rows to insert between cancellation checks.
var ContextCheckInterval = 100

// resultRetention is how long a finished import stays queryable in memory.
var resultRetention = 5 * time.Minute

// Service runs bulk job imports end to end.
type Service struct {
	pool    *pgxpool.Pool
	log     *slog.Logger
	limiter *ImportLimiter

	mu      sync.RWMutex
	imports map[string]*activeImport
}

type activeImport struct {
	ID       string
	FileName string
	Cancel   context.CancelFunc
	Progress ImportProgress
	Result   *ImportResult
	Done     chan struct{}

	ListenerMu sync.Mutex
	Listeners  []chan ImportProgress
}

// NewService creates a Service backed by the given pool. A nil logger
// falls back to slog's default.
func NewService(pool *pgxpool.Pool, log *slog.Logger, limiter *ImportLimiter) *Service {
	if log == nil {
		log = slog.Default()
	}
	if limiter == nil {
		limiter = NewImportLimiter(DefaultMaxConcurrentImports, DefaultMaxWaitTime)
	}
	return &Service{
		pool:    pool,
		log:     log,
		limiter: limiter,
		imports: make(map[string]*activeImport),
	}
}

// Limiter exposes the import limiter for shutdown draining.
func (s *Service) Limiter() *ImportLimiter {
	return s.limiter
}

// Preview parses and validates a payload without touching the database.
func (s *Service) Preview(data []byte) (*importer.ParseResult[importer.JobImportRecord], error) {
	return importer.ParseJobs(bytes.NewReader(data), importer.Options{})
}

// StartImport begins an asynchronous import and returns its ID immediately.
// Use SubscribeProgress for live updates and GetResult for the outcome.
// Returns ErrTooManyImports when all processing slots stay occupied.
func (s *Service) StartImport(ctx context.Context, fileName string, data []byte) (string, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return "", err
	}

	importID := uuid.New().String()
	runCtx, cancel := context.WithTimeout(context.Background(), ImportTimeout)

	imp := &activeImport{
		ID:       importID,
		FileName: fileName,
		Cancel:   cancel,
		Progress: ImportProgress{
			ImportID: importID,
			FileName: fileName,
			Phase:    PhaseStarting,
		},
		Done: make(chan struct{}),
	}

	s.mu.Lock()
	s.imports[importID] = imp
	s.mu.Unlock()

	go s.process(runCtx, imp, data)

	return importID, nil
}

// SubscribeProgress returns a channel receiving progress updates for one
// import. The channel closes when the import finishes.
func (s *Service) SubscribeProgress(importID string) (<-chan ImportProgress, error) {
	imp, ok := s.lookup(importID)
	if !ok {
		return nil, fmt.Errorf("import not found: %s", importID)
	}

	ch := make(chan ImportProgress, 10)

	imp.ListenerMu.Lock()
	imp.Listeners = append(imp.Listeners, ch)
	select {
	case ch <- imp.Progress:
	default:
	}
	imp.ListenerMu.Unlock()

	return ch, nil
}

// CancelImport stops an in-progress import. Rows already committed stay.
func (s *Service) CancelImport(importID string) error {
	imp, ok := s.lookup(importID)
	if !ok {
		return fmt.Errorf("import not found: %s", importID)
	}
	imp.Cancel()
	return nil
}

// GetResult blocks until the import finishes and returns its result.
func (s *Service) GetResult(importID string) (*ImportResult, error) {
	imp, ok := s.lookup(importID)
	if !ok {
		return nil, fmt.Errorf("import not found: %s", importID)
	}
	<-imp.Done
	return imp.Result, nil
}

// GetProgress returns the current progress without blocking.
func (s *Service) GetProgress(importID string) (ImportProgress, error) {
	imp, ok := s.lookup(importID)
	if !ok {
		return ImportProgress{}, fmt.Errorf("import not found: %s", importID)
	}
	return imp.Progress, nil
}

func (s *Service) lookup(importID string) (*activeImport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	imp, ok := s.imports[importID]
	return imp, ok
}

// process runs one import to completion in the background.
func (s *Service) process(ctx context.Context, imp *activeImport, data []byte) {
	start := time.Now()

	defer func() {
		imp.closeListeners()
		close(imp.Done)
		s.limiter.Release()
		s.cleanup(imp.ID, resultRetention)
	}()

	imp.Progress.Phase = PhaseParsing
	imp.notifyProgress()

	res, err := importer.ParseJobs(bytes.NewReader(data), importer.Options{})
	if err != nil {
		s.fail(imp, start, fmt.Errorf("parse import: %w", err))
		return
	}

	imp.Progress.TotalRows = res.TotalRows
	imp.Progress.Failed = res.TotalRows - res.SuccessfulRows
	imp.notifyProgress()

	uploadID := store.ToPgUUID(imp.ID)
	if err := store.CreateUpload(ctx, s.pool, uploadID, imp.FileName); err != nil {
		s.fail(imp, start, err)
		return
	}

	inserted, insertErrs, err := s.insertRecords(ctx, imp, uploadID, res)
	if err != nil {
		status := "failed"
		if ctx.Err() != nil {
			status = "cancelled"
			imp.Progress.Phase = PhaseCancelled
		}
		_ = store.FinishUpload(context.Background(), s.pool, uploadID, status, res.TotalRows, inserted, res.TotalRows-inserted)
		s.fail(imp, start, err)
		return
	}

	res.Errors = append(res.Errors, insertErrs...)
	res.SuccessfulRows = inserted

	if err := store.InsertRowErrors(ctx, s.pool, uploadID, res.Errors); err != nil {
		s.log.Warn("persist row errors", "import_id", imp.ID, "error", err)
	}

	status := "complete"
	if len(res.Errors) > 0 {
		status = "completed_with_errors"
	}
	if err := store.FinishUpload(ctx, s.pool, uploadID, status, res.TotalRows, inserted, res.TotalRows-inserted); err != nil {
		s.log.Warn("finish upload record", "import_id", imp.ID, "error", err)
	}

	imp.Result = &ImportResult{
		ImportID:       imp.ID,
		FileName:       imp.FileName,
		TotalRows:      res.TotalRows,
		SuccessfulRows: res.SuccessfulRows,
		Errors:         res.Errors,
		Duration:       time.Since(start),
		DurationMs:     time.Since(start).Milliseconds(),
	}

	imp.Progress.Phase = PhaseComplete
	imp.Progress.Inserted = inserted
	imp.Progress.Failed = res.TotalRows - inserted
	imp.Progress.CurrentRow = res.TotalRows
	imp.notifyProgress()

	s.log.Info("import complete",
		"import_id", imp.ID,
		"file", imp.FileName,
		"total_rows", res.TotalRows,
		"successful_rows", res.SuccessfulRows,
		"errors", len(res.Errors),
		"duration", time.Since(start))
}

// insertRecords writes the valid records inside one transaction, with a
// savepoint around each insert so one database failure costs one row
// instead of the batch. Returns the rows that failed at insert time as
// row errors addressed by their source row number.
func (s *Service) insertRecords(ctx context.Context, imp *activeImport, uploadID pgtype.UUID, res *importer.ParseResult[importer.JobImportRecord]) (int, []importer.RowError, error) {
	imp.Progress.Phase = PhaseInserting
	imp.notifyProgress()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		inserted   int
		insertErrs []importer.RowError
	)

	for i, job := range res.Data {
		if i%ContextCheckInterval == 0 && ctx.Err() != nil {
			return inserted, insertErrs, fmt.Errorf("import cancelled: %w", ctx.Err())
		}

		rowNum := res.Rows[i]
		savepoint := fmt.Sprintf("sp_%d", i)
		if _, err := tx.Exec(ctx, "SAVEPOINT "+savepoint); err != nil {
			return inserted, insertErrs, fmt.Errorf("create savepoint: %w", err)
		}

		if err := store.InsertJob(ctx, tx, uploadID, job); err != nil {
			_, _ = tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+savepoint)
			insertErrs = append(insertErrs, importer.RowError{
				Row:     rowNum,
				Message: FormatUserError(err),
			})
			s.log.Warn("row insert failed", "import_id", imp.ID, "row", rowNum, "error", err)
			continue
		}
		_, _ = tx.Exec(ctx, "RELEASE SAVEPOINT "+savepoint)

		inserted++
		imp.Progress.CurrentRow = rowNum
		imp.Progress.Inserted = inserted
		if i%100 == 0 {
			imp.notifyProgress()
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, nil, fmt.Errorf("commit import: %w", err)
	}

	return inserted, insertErrs, nil
}

func (s *Service) fail(imp *activeImport, start time.Time, err error) {
	if imp.Progress.Phase != PhaseCancelled {
		imp.Progress.Phase = PhaseFailed
	}
	imp.Progress.Error = err.Error()
	imp.notifyProgress()

	imp.Result = &ImportResult{
		ImportID:   imp.ID,
		FileName:   imp.FileName,
		Error:      err.Error(),
		Duration:   time.Since(start),
		DurationMs: time.Since(start).Milliseconds(),
	}

	s.log.Error("import failed", "import_id", imp.ID, "file", imp.FileName, "error", err)
}

// notifyProgress sends the current progress to all listeners, skipping any
// that are slow to drain.
func (imp *activeImport) notifyProgress() {
	imp.ListenerMu.Lock()
	defer imp.ListenerMu.Unlock()

	for _, ch := range imp.Listeners {
		select {
		case ch <- imp.Progress:
		default:
		}
	}
}

func (imp *activeImport) closeListeners() {
	imp.ListenerMu.Lock()
	defer imp.ListenerMu.Unlock()

	for _, ch := range imp.Listeners {
		close(ch)
	}
	imp.Listeners = nil
}

// cleanup removes the import from tracking after a delay so late result
// queries still resolve.
func (s *Service) cleanup(importID string, delay time.Duration) {
	time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.imports, importID)
		s.mu.Unlock()
	})
}
