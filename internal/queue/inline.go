package queue

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Runner processes one dispatched task.
type Runner interface {
	Process(ctx context.Context, jobID, path string) error
}

// InlinePool runs tasks in-process on a bounded worker pool. It is the
// dispatcher used when no broker is configured.
type InlinePool struct {
	ctx    context.Context
	runner Runner
	g      *errgroup.Group
}

// NewInlinePool creates an InlinePool running at most maxConcurrent tasks
// at once. ctx bounds the lifetime of all dispatched work.
func NewInlinePool(ctx context.Context, runner Runner, maxConcurrent int) *InlinePool {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	g := &errgroup.Group{}
	g.SetLimit(maxConcurrent)
	return &InlinePool{ctx: ctx, runner: runner, g: g}
}

// Dispatch schedules the task on the pool. Processing failures are recorded
// on the job by the runner, so they are logged here rather than propagated.
func (p *InlinePool) Dispatch(task Task) error {
	p.g.Go(func() error {
		if err := p.runner.Process(p.ctx, task.JobID, task.FilePath); err != nil {
			zap.L().Error("inline worker: task failed",
				zap.String("job_id", task.JobID),
				zap.Error(err))
		}
		return nil
	})
	return nil
}

// Close waits for all in-flight tasks to finish.
func (p *InlinePool) Close() error {
	return p.g.Wait()
}
