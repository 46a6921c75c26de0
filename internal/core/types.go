// Package core provides the business logic for bulk job imports: running
// the parse/validate pipeline, persisting jobs with per-row isolation,
// tracking progress for live subscribers, and rolling imports back.
// The package has no HTTP dependencies.
package core

import (
	"time"

	"github.com/fixerhq/job-import/internal/importer"
)

// ImportPhase indicates the current stage of import processing.
type ImportPhase string

const (
	PhaseStarting  ImportPhase = "starting"
	PhaseParsing   ImportPhase = "parsing"
	PhaseInserting ImportPhase = "inserting"
	PhaseComplete  ImportPhase = "complete"
	PhaseFailed    ImportPhase = "failed"
	PhaseCancelled ImportPhase = "cancelled"
)

// ImportProgress is a point-in-time snapshot of one running import.
type ImportProgress struct {
	ImportID   string      `json:"importId"`
	FileName   string      `json:"fileName"`
	Phase      ImportPhase `json:"phase"`
	TotalRows  int         `json:"totalRows"`
	CurrentRow int         `json:"currentRow"`
	Inserted   int         `json:"inserted"`
	Failed     int         `json:"failed"`
	Error      string      `json:"error,omitempty"` // non-empty when Phase is failed
}

// Percent returns the progress as a percentage in [0, 100].
func (p ImportProgress) Percent() int {
	if p.TotalRows <= 0 {
		return 0
	}
	return (p.CurrentRow * 100) / p.TotalRows
}

// ImportResult is the final outcome of one import run.
type ImportResult struct {
	ImportID       string              `json:"importId"`
	FileName       string              `json:"fileName"`
	TotalRows      int                 `json:"totalRows"`
	SuccessfulRows int                 `json:"successfulRows"`
	Errors         []importer.RowError `json:"errors"`
	Duration       time.Duration       `json:"-"`
	DurationMs     int64               `json:"durationMs"`
	Error          string              `json:"error,omitempty"` // non-empty when the run itself failed
}

// RollbackResult reports the outcome of undoing one import run.
type RollbackResult struct {
	ImportID    string `json:"importId"`
	RowsDeleted int64  `json:"rowsDeleted"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}
