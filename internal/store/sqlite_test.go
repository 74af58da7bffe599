package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/crm-cleaner/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGetJob(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	job, err := st.CreateJob(ctx, "contacts.csv")
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)
	assert.Equal(t, model.JobStatusPending, job.Status)

	got, err := st.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, "contacts.csv", got.Filename)
	assert.Equal(t, model.JobStatusPending, got.Status)
	assert.Nil(t, got.Result)
	assert.Empty(t, got.Error)
}

func TestSQLite_GetJob_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetJob(context.Background(), "nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")
}

func TestSQLite_JobLifecycle(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	job, err := st.CreateJob(ctx, "contacts.xlsx")
	require.NoError(t, err)

	require.NoError(t, st.UpdateJobStatus(ctx, job.ID, model.JobStatusInProgress))
	require.NoError(t, st.SetJobTotalRows(ctx, job.ID, 40))

	result := &model.JobResult{CleanedRows: 38, EnrichedRows: 38, InferenceFields: 500}
	require.NoError(t, st.CompleteJob(ctx, job.ID, 40, result))

	got, err := st.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	assert.Equal(t, 40, got.TotalRows)
	assert.Equal(t, 40, got.Processed)
	require.NotNil(t, got.Result)
	assert.Equal(t, 38, got.Result.CleanedRows)
	assert.Equal(t, 500, got.Result.InferenceFields)
}

func TestSQLite_FailJob(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	job, err := st.CreateJob(ctx, "bad.csv")
	require.NoError(t, err)

	require.NoError(t, st.FailJob(ctx, job.ID, "fetcher: open csv: no such file"))

	got, err := st.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	assert.Contains(t, got.Error, "open csv")
}

func TestSQLite_UpdateJobStatus_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateJobStatus(context.Background(), "nope", model.JobStatusInProgress)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")
}

func TestSQLite_ListJobs(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a, err := st.CreateJob(ctx, "a.csv")
	require.NoError(t, err)
	b, err := st.CreateJob(ctx, "b.csv")
	require.NoError(t, err)
	require.NoError(t, st.UpdateJobStatus(ctx, b.ID, model.JobStatusInProgress))

	all, err := st.ListJobs(ctx, JobFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := st.ListJobs(ctx, JobFilter{Status: model.JobStatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, a.ID, pending[0].ID)

	limited, err := st.ListJobs(ctx, JobFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSQLite_Contacts(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	job, err := st.CreateJob(ctx, "contacts.csv")
	require.NoError(t, err)

	require.NoError(t, st.AppendRawContact(ctx, job.ID, model.Record{"name": "Alice", "email": "a@b.com"}))
	require.NoError(t, st.AppendRawContact(ctx, job.ID, model.Record{"name": "Bob"}))
	require.NoError(t, st.AppendCleanedContact(ctx, job.ID, model.Record{
		"name": "Alice", "email": "a@b.com", "name_normalized": "Alice", "email_valid": "true",
	}))

	n, err := st.CountRawContacts(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	cleaned, err := st.ListCleanedContacts(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, cleaned, 1)
	assert.Equal(t, job.ID, cleaned[0].JobID)
	assert.Equal(t, "Alice", cleaned[0].Data.Get("name_normalized"))
	assert.Equal(t, "true", cleaned[0].Data.Get("email_valid"))
}

func TestSQLite_Contacts_EmptyJob(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.CountRawContacts(ctx, "no-such-job")
	require.NoError(t, err)
	assert.Zero(t, n)

	cleaned, err := st.ListCleanedContacts(ctx, "no-such-job")
	require.NoError(t, err)
	assert.Empty(t, cleaned)
}
