package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/pingerus/monitor-core/internal/domain/job"
)

type Runner struct {
	Log         *zap.Logger
	Queue       job.Queue
	Handler     *Handler
	Concurrency int
}

func New(log *zap.Logger, q job.Queue, h *Handler, concurrency int) *Runner {
	if concurrency <= 0 {
		concurrency = 10
	}
	return &Runner{Log: log.With(zap.String("component", "worker")), Queue: q, Handler: h, Concurrency: concurrency}
}

// Run blocks consuming the Dispatch Queue until ctx is cancelled. Per spec
// §5's cancellation rule: stop accepting new jobs and let in-flight ones
// finish under their own deadline. job.Queue.Consume's context-aware fetch
// loop stops fetching on cancellation, and each job is handled on a context
// detached from ctx's cancellation so an in-flight probe is not aborted.
func (r *Runner) Run(ctx context.Context) error {
	err := r.Queue.Consume(ctx, r.Concurrency, func(ctx context.Context, j job.HealthCheckJob) error {
		return r.Handler.Handle(context.WithoutCancel(ctx), j)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		r.Log.Warn("worker pool stopped with error", zap.Error(err))
		return err
	}
	return nil
}
