// Package pipeline runs a cleaning job end to end: ingest, dedup, enrich,
// persist.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/crm-cleaner/internal/dedupe"
	"github.com/sells-group/crm-cleaner/internal/enrich"
	"github.com/sells-group/crm-cleaner/internal/fetcher"
	"github.com/sells-group/crm-cleaner/internal/model"
	"github.com/sells-group/crm-cleaner/internal/store"
)

// Pipeline processes uploaded contact files against a Store.
type Pipeline struct {
	store store.Store
	orch  *enrich.Orchestrator
}

// New creates a Pipeline.
func New(st store.Store, orch *enrich.Orchestrator) *Pipeline {
	return &Pipeline{store: st, orch: orch}
}

// Process runs the full cleaning flow for one job. The job row must already
// exist; on any failure the job is marked failed with the error message and
// the error is returned.
func (p *Pipeline) Process(ctx context.Context, jobID, path string) error {
	if err := p.store.UpdateJobStatus(ctx, jobID, model.JobStatusInProgress); err != nil {
		return eris.Wrapf(err, "pipeline: start job %s", jobID)
	}

	records, err := fetcher.ReadSource(ctx, path)
	if err != nil {
		return p.fail(ctx, jobID, eris.Wrapf(err, "pipeline: read source for job %s", jobID))
	}

	if err := p.store.SetJobTotalRows(ctx, jobID, len(records)); err != nil {
		return p.fail(ctx, jobID, eris.Wrapf(err, "pipeline: set total rows for job %s", jobID))
	}
	for _, rec := range records {
		if err := p.store.AppendRawContact(ctx, jobID, rec); err != nil {
			return p.fail(ctx, jobID, eris.Wrapf(err, "pipeline: persist raw contact for job %s", jobID))
		}
	}

	deduped := dedupe.Deduplicate(records)
	zap.L().Info("deduplicated contacts",
		zap.String("job_id", jobID),
		zap.Int("input", len(records)),
		zap.Int("kept", len(deduped)))

	var enrichedRows, fieldTotal int
	for _, rec := range deduped {
		cleaned, populated := p.orch.Enrich(ctx, rec)
		if populated > 0 {
			enrichedRows++
			fieldTotal += populated
		}
		if err := p.store.AppendCleanedContact(ctx, jobID, cleaned); err != nil {
			return p.fail(ctx, jobID, eris.Wrapf(err, "pipeline: persist cleaned contact for job %s", jobID))
		}
	}

	result := &model.JobResult{
		CleanedRows:     len(deduped),
		EnrichedRows:    enrichedRows,
		InferenceFields: fieldTotal,
	}
	// Processed counts the records that survived deduplication and went
	// through enrichment, not the raw input rows.
	if err := p.store.CompleteJob(ctx, jobID, len(deduped), result); err != nil {
		return p.fail(ctx, jobID, eris.Wrapf(err, "pipeline: complete job %s", jobID))
	}

	zap.L().Info("job completed",
		zap.String("job_id", jobID),
		zap.Int("total_rows", len(records)),
		zap.Int("cleaned_rows", result.CleanedRows),
		zap.Int("enriched_rows", result.EnrichedRows),
		zap.Int("inference_fields", result.InferenceFields))
	return nil
}

// fail records the failure on the job and passes the error through. The
// status write is best effort; a store that is itself failing should not
// mask the original error.
func (p *Pipeline) fail(ctx context.Context, jobID string, err error) error {
	if ferr := p.store.FailJob(ctx, jobID, err.Error()); ferr != nil {
		zap.L().Error("failed to mark job failed",
			zap.String("job_id", jobID),
			zap.Error(ferr))
	}
	zap.L().Error("job failed", zap.String("job_id", jobID), zap.Error(err))
	return err
}
