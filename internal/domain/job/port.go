package job

import "context"

// Handler processes one dequeued job. A returned error triggers the queue's
// retry policy (spec §4.2); success acknowledges (commits) the job.
type Handler func(ctx context.Context, j HealthCheckJob) error

// Queue is the Dispatch Queue port: a durable, at-least-once job buffer with
// concurrency and rate limits (spec §4.2).
type Queue interface {
	Enqueue(ctx context.Context, j HealthCheckJob, opts EnqueueOptions) error
	Consume(ctx context.Context, concurrency int, h Handler) error
	Close() error
}
