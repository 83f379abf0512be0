package db

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchJobLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	job, err := CreateBatchJob(ctx, db, 5)
	require.NoError(t, err)
	assert.Len(t, job.ID, 36)
	assert.Equal(t, JobStatusPending, job.Status)

	require.NoError(t, MarkJobProcessing(ctx, db, job.ID))
	got, err := GetBatchJob(ctx, db, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusProcessing, got.Status)
	assert.Nil(t, got.CompletedAt)
	assert.ErrorIs(t, MarkJobProcessing(ctx, db, job.ID), ErrJobNotPending)

	done := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, CompleteJob(ctx, db, job.ID, 3, 2, done))
	got, err = GetBatchJob(ctx, db, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, got.Status)
	assert.Equal(t, 3, got.SuccessCount)
	assert.Equal(t, 2, got.FailedCount)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, done.Equal(*got.CompletedAt))

	assert.ErrorIs(t, CompleteJob(ctx, db, job.ID, 5, 0, done), ErrJobFinalized)
	assert.ErrorIs(t, FailJob(ctx, db, job.ID, done), ErrJobFinalized)
	assert.ErrorIs(t, MarkJobProcessing(ctx, db, job.ID), ErrJobFinalized)
}

func TestFailJobCountsEveryTaskFailed(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	job, err := CreateBatchJob(ctx, db, 4)
	require.NoError(t, err)
	require.NoError(t, FailJob(ctx, db, job.ID, time.Now()))

	got, err := GetBatchJob(ctx, db, job.ID)
	require.NoError(t, err)
	assert.Equal(t, JobStatusFailed, got.Status)
	assert.Equal(t, 0, got.SuccessCount)
	assert.Equal(t, 4, got.FailedCount)
	assert.NotNil(t, got.CompletedAt)
}

func TestUnknownJob(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	_, err := GetBatchJob(ctx, db, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, MarkJobProcessing(ctx, db, "missing"), ErrNotFound)
	assert.ErrorIs(t, CompleteJob(ctx, db, "missing", 0, 0, time.Now()), ErrNotFound)
}

func TestJobViewJSON(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	job := BatchJob{ID: "abc", Status: JobStatusPending, TotalTasks: 2, CreatedAt: created}

	raw, err := json.Marshal(job.View())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"job_id": "abc",
		"status": "pending",
		"progress": {"total": 2, "success": 0, "failed": 0},
		"created_at": "2026-01-02T03:04:05Z",
		"completed_at": null
	}`, string(raw))

	finished := created.Add(time.Minute)
	job.Status = JobStatusCompleted
	job.CompletedAt = &finished
	v := job.View()
	require.NotNil(t, v.CompletedAt)
	assert.Equal(t, "2026-01-02T03:05:05Z", *v.CompletedAt)
}
