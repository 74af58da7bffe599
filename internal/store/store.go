package store

import (
	"context"

	"github.com/sells-group/crm-cleaner/internal/model"
)

// JobFilter specifies criteria for listing cleaning jobs.
type JobFilter struct {
	Status model.JobStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the cleaning pipeline.
type Store interface {
	// Jobs
	CreateJob(ctx context.Context, filename string) (*model.Job, error)
	GetJob(ctx context.Context, jobID string) (*model.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]model.Job, error)
	UpdateJobStatus(ctx context.Context, jobID string, status model.JobStatus) error
	SetJobTotalRows(ctx context.Context, jobID string, total int) error
	CompleteJob(ctx context.Context, jobID string, processed int, result *model.JobResult) error
	FailJob(ctx context.Context, jobID string, msg string) error

	// Contacts
	AppendRawContact(ctx context.Context, jobID string, rec model.Record) error
	AppendCleanedContact(ctx context.Context, jobID string, rec model.Record) error
	ListCleanedContacts(ctx context.Context, jobID string) ([]model.Contact, error)
	CountRawContacts(ctx context.Context, jobID string) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
