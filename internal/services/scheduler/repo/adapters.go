// Package repo narrows the full monitor/job domain ports down to the
// slice the Scheduler actually calls, mirroring the teacher's
// services/scheduler/repo adapter pattern.
package repo

import (
	"context"
	"time"

	"github.com/pingerus/monitor-core/internal/domain/job"
	"github.com/pingerus/monitor-core/internal/domain/monitor"
)

type Monitors struct{ R monitor.Repo }

func (m Monitors) FetchDueIDs(ctx context.Context, limit int) ([]string, error) {
	return m.R.FetchDueIDs(ctx, limit)
}

func (m Monitors) Lease(ctx context.Context, id string, leaseHorizon time.Duration) (*monitor.Monitor, error) {
	return m.R.Lease(ctx, id, leaseHorizon)
}

type Dispatcher struct{ Q job.Queue }

func (d Dispatcher) Enqueue(ctx context.Context, j job.HealthCheckJob, opts job.EnqueueOptions) error {
	return d.Q.Enqueue(ctx, j, opts)
}
