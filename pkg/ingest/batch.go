package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/japaniel/conjugador/pkg/db"
	"github.com/japaniel/conjugador/pkg/grammar"
)

// Summary counts batch outcomes. Success+Failed always equals Total.
type Summary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// RunBatch persists every task over the worker pool and blocks until all of
// them have finished. When jobID is set, the job moves to processing before
// dispatch and to completed with the final counts afterwards. A job that is
// missing or no longer pending is left untouched and the tasks run untracked.
//
// Cancelling ctx does not stop the batch; once dispatched every task runs.
func (m *Manager) RunBatch(ctx context.Context, tasks []grammar.Task, jobID string) Summary {
	ctx = context.WithoutCancel(ctx)
	log := m.Logger.With("job_id", jobID, "tasks", len(tasks))
	summary := Summary{Total: len(tasks)}

	if jobID != "" {
		err := db.MarkJobProcessing(ctx, m.DB, jobID)
		switch {
		case err == nil:
		case errors.Is(err, db.ErrNotFound), errors.Is(err, db.ErrJobNotPending), errors.Is(err, db.ErrJobFinalized):
			log.WarnContext(ctx, "job not startable, running untracked", "err", err)
			jobID = ""
		default:
			log.ErrorContext(ctx, "could not start job, marking failed", "err", err)
			if ferr := db.FailJob(ctx, m.DB, jobID, m.now()); ferr != nil {
				log.ErrorContext(ctx, "could not mark job failed", "err", ferr)
			}
			summary.Failed = summary.Total
			return summary
		}
	}

	outcomes := m.dispatch(ctx, tasks)
	for _, ok := range outcomes {
		if ok {
			summary.Success++
		} else {
			summary.Failed++
		}
	}

	if jobID != "" {
		if err := db.CompleteJob(ctx, m.DB, jobID, summary.Success, summary.Failed, m.now()); err != nil {
			log.ErrorContext(ctx, "could not finalize job", "err", err)
		}
	}
	log.InfoContext(ctx, "batch finished", "success", summary.Success, "failed", summary.Failed)
	return summary
}

// dispatch runs the tasks on the pool. A task that could not be submitted
// keeps its false outcome.
func (m *Manager) dispatch(ctx context.Context, tasks []grammar.Task) []bool {
	outcomes := make([]bool, len(tasks))
	if len(tasks) == 0 {
		return outcomes
	}

	workers := m.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	var wp WorkerPoolInterface
	if m.PoolFactory != nil {
		wp = m.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}
	wp.Start(ctx)

	var done atomic.Int64
	total := len(tasks)
	for i, task := range tasks {
		err := wp.SubmitCtx(ctx, func(ctx context.Context) error {
			if d := m.jitter(); d > 0 {
				time.Sleep(d)
			}
			outcomes[i] = m.Persist(ctx, task.Verb, task.Mode, task.Tense)
			if m.OnProgress != nil {
				m.OnProgress(int(done.Add(1)), total)
			}
			return nil
		})
		if err != nil {
			m.Logger.ErrorContext(ctx, "could not submit task", "task", task.String(), "err", err)
		}
	}
	wp.Close()
	return outcomes
}
