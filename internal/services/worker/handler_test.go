package worker_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pingerus/monitor-core/internal/domain/historysink"
	"github.com/pingerus/monitor-core/internal/domain/job"
	"github.com/pingerus/monitor-core/internal/domain/monitor"
	"github.com/pingerus/monitor-core/internal/services/probe"
	"github.com/pingerus/monitor-core/internal/services/worker"
	workerrepo "github.com/pingerus/monitor-core/internal/services/worker/repo"
)

type fakeStateSink struct {
	monitor.Repo
	updates []monitor.ResultUpdate
	err     error
}

func (f *fakeStateSink) RecordResult(ctx context.Context, u monitor.ResultUpdate) error {
	if f.err != nil {
		return f.err
	}
	f.updates = append(f.updates, u)
	return nil
}

type fakeHistorySink struct {
	records []historysink.Record
	err     error
}

func (f *fakeHistorySink) RecordHealthCheck(ctx context.Context, env monitor.Environment, r historysink.Record) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, r)
	return nil
}

func TestHandle_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	engine := probe.New(probe.Config{})
	state := &fakeStateSink{}
	history := &fakeHistorySink{}
	h := worker.NewHandler(engine, workerrepo.StateSink{R: state}, workerrepo.HistorySink{S: history}, zap.NewNop())

	err := h.Handle(context.Background(), job.HealthCheckJob{
		LinkID:      "link-1",
		LongURL:     srv.URL,
		Environment: monitor.EnvDev,
	})
	require.NoError(t, err)
	require.Len(t, state.updates, 1)
	assert.True(t, state.updates[0].IsHealthy)
	assert.Equal(t, monitor.StatusUp, state.updates[0].Status)
	require.Len(t, history.records, 1)
	assert.Equal(t, "up", string(history.records[0].HealthStatus))
}

func TestHandle_SinkFailuresDoNotFailTheJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	engine := probe.New(probe.Config{})
	state := &fakeStateSink{err: errors.New("db down")}
	history := &fakeHistorySink{err: errors.New("endpoint unreachable")}
	h := worker.NewHandler(engine, workerrepo.StateSink{R: state}, workerrepo.HistorySink{S: history}, zap.NewNop())

	err := h.Handle(context.Background(), job.HealthCheckJob{
		LinkID:      "link-2",
		LongURL:     srv.URL,
		Environment: monitor.EnvProd,
	})
	assert.NoError(t, err, "both sink failures must be non-fatal to the job")
}

func TestHandle_ProbeFailureIsRecordedAsDown(t *testing.T) {
	engine := probe.New(probe.Config{Timeout: 1})
	state := &fakeStateSink{}
	history := &fakeHistorySink{}
	h := worker.NewHandler(engine, workerrepo.StateSink{R: state}, workerrepo.HistorySink{S: history}, zap.NewNop())

	err := h.Handle(context.Background(), job.HealthCheckJob{
		LinkID:      "link-3",
		LongURL:     "http://127.0.0.1:1",
		Environment: monitor.EnvDev,
	})
	require.NoError(t, err)
	require.Len(t, state.updates, 1)
	assert.False(t, state.updates[0].IsHealthy)
	assert.Equal(t, monitor.StatusDown, state.updates[0].Status)
}
