package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/pingerus/monitor-core/internal/domain/job"
	"github.com/pingerus/monitor-core/internal/domain/monitor"
	"github.com/pingerus/monitor-core/internal/services/scheduler/repo"
)

type Usecase struct {
	Monitors     repo.Monitors
	Dispatcher   repo.Dispatcher
	LeaseHorizon time.Duration
}

func NewUC(monitors repo.Monitors, dispatcher repo.Dispatcher, leaseHorizon time.Duration) *Usecase {
	if leaseHorizon <= 0 {
		leaseHorizon = 30 * time.Second
	}
	return &Usecase{Monitors: monitors, Dispatcher: dispatcher, LeaseHorizon: leaseHorizon}
}

// Tick implements spec §4.1: fetch up to limit due monitor IDs, then lease
// and enqueue each individually so a mid-tick crash only re-enqueues the
// tail (the already-leased-and-enqueued head is not re-dispatched).
func (u *Usecase) Tick(ctx context.Context, limit int) (fetched, sent, errs int, err error) {
	if limit <= 0 {
		limit = 100
	}

	tr := otel.Tracer("scheduler.uc")
	ctxTick, span := tr.Start(ctx, "scheduler.tick", trace.WithAttributes(attribute.Int("batch.limit", limit)))
	defer span.End()

	ids, ferr := u.Monitors.FetchDueIDs(ctxTick, limit)
	if ferr != nil {
		span.RecordError(ferr)
		return 0, 0, 1, fmt.Errorf("fetch due ids: %w", ferr)
	}
	if len(ids) == 0 {
		span.SetAttributes(attribute.Int("batch.fetched", 0))
		return 0, 0, 0, nil
	}
	span.SetAttributes(attribute.Int("batch.fetched", len(ids)))

	for _, id := range ids {
		ok, lostRace := u.leaseAndEnqueue(ctxTick, tr, id)
		switch {
		case ok:
			sent++
		case !lostRace:
			errs++
		}
	}

	span.SetAttributes(attribute.Int("batch.sent", sent), attribute.Int("batch.errors", errs))
	return len(ids), sent, errs, nil
}

func (u *Usecase) leaseAndEnqueue(ctx context.Context, tr trace.Tracer, id string) (ok, lostRace bool) {
	ctx, sp := tr.Start(ctx, "scheduler.lease_and_enqueue", trace.WithAttributes(attribute.String("monitor.id", id)))
	defer sp.End()

	m, err := u.Monitors.Lease(ctx, id, u.LeaseHorizon)
	if err != nil {
		if errors.Is(err, monitor.ErrNotEligible) {
			// Lost the race to another replica, or deactivated mid-tick: not an error.
			sp.SetAttributes(attribute.String("lease.status", "lost_race"))
			return false, true
		}
		sp.RecordError(err)
		return false, false
	}

	j := job.HealthCheckJob{
		LinkID:         m.ID,
		ExternalURLID:  m.ExternalURLID,
		ExternalUserID: m.ExternalUserID,
		LongURL:        m.LongURL,
		ShortURL:       m.ShortURL,
		Environment:    m.Environment,
	}
	jobID := job.ID(m.ID, time.Now().UnixMilli())
	if err := u.Dispatcher.Enqueue(ctx, j, job.EnqueueOptions{Priority: job.PriorityNormal, JobID: jobID}); err != nil {
		sp.RecordError(err)
		sp.SetAttributes(attribute.String("enqueue.status", "error"))
		return false, false
	}
	sp.SetAttributes(attribute.String("enqueue.status", "ok"))
	return true, false
}
