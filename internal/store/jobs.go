package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/fixerhq/job-import/internal/importer"
)

const insertJobSQL = `
INSERT INTO jobs (
	upload_id, title, description, category,
	address, city, state, zip_code, latitude, longitude,
	pay_type, pay_amount, pay_currency,
	schedule_start, recurring,
	requirements, urgency, worker_count, estimated_duration,
	client_notes, background_check_required, equipment_provided, parking_available
) VALUES (
	$1, $2, $3, $4,
	$5, $6, $7, $8, $9, $10,
	$11, $12, $13,
	$14, $15,
	$16, $17, $18, $19,
	$20, $21, $22, $23
)`

// InsertJob writes one validated job record. The upload ID ties the row to
// its import run so a rollback can find it later.
func InsertJob(ctx context.Context, db DBTX, uploadID pgtype.UUID, job importer.JobImportRecord) error {
	_, err := db.Exec(ctx, insertJobSQL,
		uploadID,
		job.Title,
		job.Description,
		job.Category,
		job.Location.Address,
		job.Location.City,
		job.Location.State,
		job.Location.ZipCode,
		job.Location.Latitude,
		job.Location.Longitude,
		job.PayRate.Type,
		job.PayRate.Amount,
		job.PayRate.Currency,
		ToPgTimestamptz(job.Schedule.StartDate),
		job.Schedule.Recurring,
		job.Requirements,
		job.Urgency,
		job.WorkerCount,
		job.EstimatedDuration,
		ToPgText(job.ClientNotes),
		job.BackgroundCheckRequired,
		job.EquipmentProvided,
		job.ParkingAvailable,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// DeleteJobsByUpload removes every job created by one import run and
// returns the number deleted.
func DeleteJobsByUpload(ctx context.Context, db DBTX, uploadID pgtype.UUID) (int64, error) {
	tag, err := db.Exec(ctx, `DELETE FROM jobs WHERE upload_id = $1`, uploadID)
	if err != nil {
		return 0, fmt.Errorf("delete jobs for upload: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountJobsByUpload reports how many jobs one import run created.
func CountJobsByUpload(ctx context.Context, db DBTX, uploadID pgtype.UUID) (int64, error) {
	var n int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE upload_id = $1`, uploadID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jobs for upload: %w", err)
	}
	return n, nil
}
