// Package repo narrows the State Sink and History Sink ports down to what
// the Worker Pool calls, mirroring the teacher's per-service repo adapter
// pattern.
package repo

import (
	"context"

	"github.com/pingerus/monitor-core/internal/domain/historysink"
	"github.com/pingerus/monitor-core/internal/domain/monitor"
)

type StateSink struct{ R monitor.Repo }

func (s StateSink) RecordResult(ctx context.Context, u monitor.ResultUpdate) error {
	return s.R.RecordResult(ctx, u)
}

type HistorySink struct{ S historysink.Sink }

func (h HistorySink) RecordHealthCheck(ctx context.Context, env monitor.Environment, r historysink.Record) error {
	return h.S.RecordHealthCheck(ctx, env, r)
}
