package db

import "time"

// Verb is a verb in its infinitive form. It owns its conjugations.
type Verb struct {
	ID         int64
	Infinitive string
	CreatedAt  time.Time
}

// Mode is a grammatical mood, e.g. "Indicativo".
type Mode struct {
	ID   int64
	Name string
}

// Tense belongs to exactly one Mode; (Name, ModeID) is unique.
type Tense struct {
	ID     int64
	Name   string
	ModeID int64
}

// Person is one of the six canonical grammatical persons.
type Person struct {
	ID        int64
	Name      string
	SortOrder int
}

// Conjugation is a conjugated value for one (verb, tense, person) triple.
type Conjugation struct {
	ID       int64
	Value    string
	VerbID   int64
	TenseID  int64
	PersonID int64
}

// ConjugationRow is a conjugation joined with its mode, tense and person names.
type ConjugationRow struct {
	Mode      string
	Tense     string
	Person    string
	SortOrder int
	Value     string
}

// JobStatus is the lifecycle state of a BatchJob.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Final reports whether no further transitions are allowed.
func (s JobStatus) Final() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// BatchJob tracks an asynchronous batch of scrape tasks.
type BatchJob struct {
	ID           string
	Status       JobStatus
	TotalTasks   int
	SuccessCount int
	FailedCount  int
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// JobProgress is the task count breakdown of a job.
type JobProgress struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// JobView is the JSON shape clients poll.
type JobView struct {
	JobID       string      `json:"job_id"`
	Status      JobStatus   `json:"status"`
	Progress    JobProgress `json:"progress"`
	CreatedAt   string      `json:"created_at"`
	CompletedAt *string     `json:"completed_at"`
}

// View renders the job for polling clients. Timestamps are RFC 3339.
func (j BatchJob) View() JobView {
	v := JobView{
		JobID:  j.ID,
		Status: j.Status,
		Progress: JobProgress{
			Total:   j.TotalTasks,
			Success: j.SuccessCount,
			Failed:  j.FailedCount,
		},
		CreatedAt: j.CreatedAt.UTC().Format(time.RFC3339),
	}
	if j.CompletedAt != nil {
		s := j.CompletedAt.UTC().Format(time.RFC3339)
		v.CompletedAt = &s
	}
	return v
}
