package model

import "time"

// JobStatus represents the lifecycle state of a cleaning job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job tracks the processing of one uploaded contact file.
type Job struct {
	ID        string     `json:"id"`
	Filename  string     `json:"filename"`
	Status    JobStatus  `json:"status"`
	TotalRows int        `json:"total_rows"`
	Processed int        `json:"processed"`
	Result    *JobResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// JobResult summarizes a completed job. EnrichedRows and InferenceFields
// distinguish a fully enriched run from one that degraded to deterministic
// fields only after the inference capability was disabled mid-run.
type JobResult struct {
	CleanedRows     int `json:"cleaned_rows"`
	EnrichedRows    int `json:"enriched_rows"`
	InferenceFields int `json:"inference_fields"`
}

// Contact is a (job, record) snapshot. Raw contacts capture the source rows
// before any cleaning; cleaned contacts capture the post-pipeline rows.
// Both are append-only.
type Contact struct {
	ID        string    `json:"id"`
	JobID     string    `json:"job_id"`
	Data      Record    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
}
