// Package queue implements the Dispatch Queue port (internal/domain/job)
// on top of Kafka: two topics split by priority, a shared rate limiter
// across all consumers of a queue, retry-with-backoff around the caller's
// handler, and a forensic ledger of completions/failures.
package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pingerus/monitor-core/internal/domain/job"
	"github.com/pingerus/monitor-core/internal/domain/ledger"
	"github.com/pingerus/monitor-core/internal/idgen"
	"github.com/pingerus/monitor-core/internal/obs/retry"
	"github.com/pingerus/monitor-core/internal/ratelimit"
	kafkarepo "github.com/pingerus/monitor-core/internal/repository/kafka"
)

type Config struct {
	Brokers             []string
	Topic               string
	PriorityTopic       string
	GroupID             string
	RateLimitMax        int
	RateLimitPeriod     time.Duration
	KeepLastCompletions int
	KeepLastFailures    int
}

var _ job.Queue = (*Queue)(nil)

// Queue is the Dispatch Queue described in spec §4.2. Enqueue publishes to
// one of two Kafka topics by priority; Consume drains both, preferring the
// priority topic, gating dispatch through a shared rate limiter and
// recording every outcome to the ledger.
type Queue struct {
	cfg Config

	normalProducer   *kafkarepo.Producer
	priorityProducer *kafkarepo.Producer

	limiter *ratelimit.Bucket
	ledger  ledger.Repo
	newID   func() string
	policy  retry.Policy
	log     *zap.Logger
}

func New(cfg Config, ledgerRepo ledger.Repo, log *zap.Logger) *Queue {
	if log == nil {
		log = zap.L()
	}
	if cfg.KeepLastCompletions <= 0 {
		cfg.KeepLastCompletions = 1000
	}
	if cfg.KeepLastFailures <= 0 {
		cfg.KeepLastFailures = 5000
	}
	log = log.With(zap.String("component", "dispatch_queue"))
	return &Queue{
		cfg:              cfg,
		normalProducer:   kafkarepo.NewProducer(cfg.Brokers, cfg.Topic),
		priorityProducer: kafkarepo.NewProducer(cfg.Brokers, cfg.PriorityTopic),
		limiter:          ratelimit.New(cfg.RateLimitMax, cfg.RateLimitPeriod),
		ledger:           ledgerRepo,
		newID:            idgen.MonotonicULIDGenerator(),
		policy:           retry.DefaultQueuePolicy(log),
		log:              log,
	}
}

func (q *Queue) Enqueue(ctx context.Context, j job.HealthCheckJob, opts job.EnqueueOptions) error {
	jobID := opts.JobID
	if jobID == "" {
		jobID = job.ID(j.LinkID, time.Now().UnixMilli())
	}
	p := q.normalProducer
	if opts.Priority == job.PriorityHigh {
		p = q.priorityProducer
	}
	if err := kafkarepo.PublishJob(ctx, p, j, jobID); err != nil {
		return fmt.Errorf("enqueue job %s: %w", jobID, err)
	}
	return nil
}

// Consume starts one consumer group member per topic and fans each out
// across goroutines sharing that topic's reader: concurrency/2 for the
// scheduled topic and the remainder for the priority topic, at least one
// each, so the priority topic is never starved behind a backlog on the
// scheduled one.
func (q *Queue) Consume(ctx context.Context, concurrency int, h job.Handler) error {
	if concurrency <= 0 {
		concurrency = 1
	}
	normalWorkers := concurrency / 2
	if normalWorkers < 1 {
		normalWorkers = 1
	}
	priorityWorkers := concurrency - normalWorkers
	if priorityWorkers < 1 {
		priorityWorkers = 1
	}

	normalConsumer := kafkarepo.BootstrapConsumer(ctx, &kafkarepo.ConsumerConfig{
		Brokers: q.cfg.Brokers, GroupID: q.cfg.GroupID, Topic: q.cfg.Topic, Logger: q.log,
	}, q.log)
	priorityConsumer := kafkarepo.BootstrapConsumer(ctx, &kafkarepo.ConsumerConfig{
		Brokers: q.cfg.Brokers, GroupID: q.cfg.GroupID, Topic: q.cfg.PriorityTopic, Logger: q.log,
	}, q.log)
	defer normalConsumer.Close()
	defer priorityConsumer.Close()

	raw := q.wrapHandler(h)

	errCh := make(chan error, 2)
	go func() { errCh <- priorityConsumer.ConsumeConcurrent(ctx, priorityWorkers, raw) }()
	go func() { errCh <- normalConsumer.ConsumeConcurrent(ctx, normalWorkers, raw) }()

	first := <-errCh
	second := <-errCh
	if first != nil {
		return first
	}
	return second
}

// wrapHandler applies the rate limit, the retry policy, and ledger
// recording around a caller-supplied job.Handler.
func (q *Queue) wrapHandler(h job.Handler) kafkarepo.Handler {
	return func(ctx context.Context, _, value []byte) error {
		env, err := kafkarepo.DecodeEnvelope(value)
		if err != nil {
			q.log.Error("dropping undecodable message", zap.Error(err))
			return nil // not retryable; acknowledge and move on
		}

		if err := q.limiter.Wait(ctx); err != nil {
			return err
		}

		attempt := 0
		handlerErr := retry.Do(ctx, func() error {
			attempt++
			return h(ctx, env.ToJob())
		}, q.policy)

		if handlerErr != nil {
			entry := ledger.Entry{ID: q.newID(), JobID: env.JobID, LinkID: env.LinkID, Attempt: attempt, Error: handlerErr.Error()}
			if err := q.ledger.RecordFailure(ctx, entry, q.cfg.KeepLastFailures); err != nil {
				q.log.Warn("failed to record ledger failure", zap.Error(err))
			}
			return handlerErr
		}

		entry := ledger.Entry{ID: q.newID(), JobID: env.JobID, LinkID: env.LinkID, Attempt: attempt}
		if err := q.ledger.RecordCompletion(ctx, entry, q.cfg.KeepLastCompletions); err != nil {
			q.log.Warn("failed to record ledger completion", zap.Error(err))
		}
		return nil
	}
}

func (q *Queue) Close() error {
	q.limiter.Close()
	var firstErr error
	if err := q.normalProducer.Close(); err != nil {
		firstErr = err
	}
	if err := q.priorityProducer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
