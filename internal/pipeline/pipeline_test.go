package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/crm-cleaner/internal/enrich"
	"github.com/sells-group/crm-cleaner/internal/inference"
	"github.com/sells-group/crm-cleaner/internal/model"
	"github.com/sells-group/crm-cleaner/internal/store"
)

func newTestPipeline(t *testing.T) (*Pipeline, store.Store) {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	// No credentials: inference is disabled, deterministic enrichment only.
	ai := inference.New(nil, inference.Config{})
	return New(st, enrich.New(ai)), st
}

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcessCompletesDegraded(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()

	path := writeCSV(t, "name,email\njohn smith,john@acme.com\nmary jones,mary@acme.com\n")
	job, err := st.CreateJob(ctx, "contacts.csv")
	require.NoError(t, err)

	require.NoError(t, p.Process(ctx, job.ID, path))

	got, err := st.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	assert.Equal(t, 2, got.TotalRows)
	assert.Equal(t, 2, got.Processed)
	require.NotNil(t, got.Result)
	assert.Equal(t, 2, got.Result.CleanedRows)
	// Inference disabled: rows complete with deterministic fields only.
	assert.Zero(t, got.Result.EnrichedRows)
	assert.Zero(t, got.Result.InferenceFields)

	cleaned, err := st.ListCleanedContacts(ctx, job.ID)
	require.NoError(t, err)
	require.Len(t, cleaned, 2)
	assert.Equal(t, "John Smith", cleaned[0].Data.Get("name_normalized"))
	assert.Equal(t, "true", cleaned[0].Data.Get("email_valid"))
}

func TestProcessDeduplicatesAcrossCase(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()

	path := writeCSV(t, "name,email\nAlice,ALICE@example.com\nAlice B,alice@example.com\nBob,bob@example.com\n")
	job, err := st.CreateJob(ctx, "contacts.csv")
	require.NoError(t, err)

	require.NoError(t, p.Process(ctx, job.ID, path))

	got, err := st.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.TotalRows)
	assert.Equal(t, 2, got.Processed, "processed counts deduplicated records, not raw rows")
	require.NotNil(t, got.Result)
	assert.Equal(t, 2, got.Result.CleanedRows)

	raw, err := st.CountRawContacts(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, raw, "raw contacts keep every ingested row")
}

func TestProcessUnreadableFileFailsJob(t *testing.T) {
	p, st := newTestPipeline(t)
	ctx := context.Background()

	job, err := st.CreateJob(ctx, "missing.csv")
	require.NoError(t, err)

	err = p.Process(ctx, job.ID, filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)

	got, err := st.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	assert.NotEmpty(t, got.Error)

	cleaned, err := st.ListCleanedContacts(ctx, job.ID)
	require.NoError(t, err)
	assert.Empty(t, cleaned)
}

func TestProcessUnknownJob(t *testing.T) {
	p, _ := newTestPipeline(t)

	err := p.Process(context.Background(), "no-such-job", "whatever.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job not found")
}
