package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrJobFinalized is returned when a transition is attempted on a job that is
// already completed or failed.
var ErrJobFinalized = errors.New("job already finalized")

// ErrJobNotPending is returned by MarkJobProcessing for a job another run
// already moved to processing.
var ErrJobNotPending = errors.New("job not pending")

// CreateBatchJob inserts a pending job for total tasks and returns it.
func CreateBatchJob(ctx context.Context, db DBExecutor, total int) (BatchJob, error) {
	if total < 0 {
		return BatchJob{}, fmt.Errorf("total must be non-negative, got %d", total)
	}
	job := BatchJob{
		ID:         uuid.NewString(),
		Status:     JobStatusPending,
		TotalTasks: total,
		CreatedAt:  time.Now().UTC(),
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO batch_jobs (id, status, total_tasks, created_at) VALUES (?, ?, ?, ?)`,
		job.ID, string(job.Status), job.TotalTasks, job.CreatedAt,
	)
	if err != nil {
		return BatchJob{}, fmt.Errorf("insert batch job: %w", err)
	}
	return job, nil
}

// GetBatchJob loads a job by id or returns ErrNotFound.
func GetBatchJob(ctx context.Context, db DBExecutor, id string) (BatchJob, error) {
	var (
		job       BatchJob
		status    string
		completed sql.NullTime
	)
	err := db.QueryRowContext(ctx,
		`SELECT id, status, total_tasks, success_count, failed_count, created_at, completed_at
		 FROM batch_jobs WHERE id = ?`, id,
	).Scan(&job.ID, &status, &job.TotalTasks, &job.SuccessCount, &job.FailedCount, &job.CreatedAt, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return BatchJob{}, fmt.Errorf("job %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return BatchJob{}, err
	}
	job.Status = JobStatus(status)
	if completed.Valid {
		t := completed.Time
		job.CompletedAt = &t
	}
	return job, nil
}

// MarkJobProcessing moves a pending job to processing.
func MarkJobProcessing(ctx context.Context, db DBExecutor, id string) error {
	return transition(ctx, db, id,
		`UPDATE batch_jobs SET status = 'processing' WHERE id = ? AND status = 'pending'`,
		id,
	)
}

// CompleteJob finalizes a job as completed with its task counts.
func CompleteJob(ctx context.Context, db DBExecutor, id string, success, failed int, now time.Time) error {
	return transition(ctx, db, id,
		`UPDATE batch_jobs SET status = 'completed', success_count = ?, failed_count = ?, completed_at = ?
		 WHERE id = ? AND status IN ('pending', 'processing')`,
		success, failed, now.UTC(), id,
	)
}

// FailJob finalizes a job as failed. Every task is counted as failed.
func FailJob(ctx context.Context, db DBExecutor, id string, now time.Time) error {
	return transition(ctx, db, id,
		`UPDATE batch_jobs SET status = 'failed', success_count = 0, failed_count = total_tasks, completed_at = ?
		 WHERE id = ? AND status IN ('pending', 'processing')`,
		now.UTC(), id,
	)
}

// transition runs a guarded status update. When no row changes it tells apart
// a missing job from one whose current status forbids the move.
func transition(ctx context.Context, db DBExecutor, id, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	job, err := GetBatchJob(ctx, db, id)
	if err != nil {
		return err
	}
	if job.Status.Final() {
		return fmt.Errorf("job %s is %s: %w", id, job.Status, ErrJobFinalized)
	}
	return fmt.Errorf("job %s is %s: %w", id, job.Status, ErrJobNotPending)
}
