package scheduler_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingerus/monitor-core/internal/domain/job"
	"github.com/pingerus/monitor-core/internal/domain/monitor"
	"github.com/pingerus/monitor-core/internal/services/scheduler"
	"github.com/pingerus/monitor-core/internal/services/scheduler/repo"
)

type fakeMonitorRepo struct {
	monitor.Repo
	dueIDs   []string
	leaseErr map[string]error
	leased   []string
}

func (f *fakeMonitorRepo) FetchDueIDs(ctx context.Context, limit int) ([]string, error) {
	return f.dueIDs, nil
}

func (f *fakeMonitorRepo) Lease(ctx context.Context, id string, horizon time.Duration) (*monitor.Monitor, error) {
	if err, ok := f.leaseErr[id]; ok {
		return nil, err
	}
	f.leased = append(f.leased, id)
	return &monitor.Monitor{ID: id, ExternalURLID: id, LongURL: "https://example.com"}, nil
}

type fakeQueue struct {
	job.Queue
	enqueued []job.HealthCheckJob
	failFor  map[string]bool
}

func (f *fakeQueue) Enqueue(ctx context.Context, j job.HealthCheckJob, opts job.EnqueueOptions) error {
	if f.failFor[j.LinkID] {
		return errors.New("enqueue boom")
	}
	f.enqueued = append(f.enqueued, j)
	return nil
}

func TestTick_EmptyBatch(t *testing.T) {
	mr := &fakeMonitorRepo{}
	q := &fakeQueue{}
	uc := scheduler.NewUC(repo.Monitors{R: mr}, repo.Dispatcher{Q: q}, time.Second)

	fetched, sent, errs, err := uc.Tick(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, fetched)
	assert.Zero(t, sent)
	assert.Zero(t, errs)
}

func TestTick_LeasesAndEnqueuesEachDueID(t *testing.T) {
	mr := &fakeMonitorRepo{dueIDs: []string{"a", "b", "c"}}
	q := &fakeQueue{}
	uc := scheduler.NewUC(repo.Monitors{R: mr}, repo.Dispatcher{Q: q}, time.Second)

	fetched, sent, errs, err := uc.Tick(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 3, fetched)
	assert.Equal(t, 3, sent)
	assert.Zero(t, errs)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, mr.leased)
	assert.Len(t, q.enqueued, 3)
}

func TestTick_LostRaceIsNotAnError(t *testing.T) {
	mr := &fakeMonitorRepo{
		dueIDs:   []string{"a", "b"},
		leaseErr: map[string]error{"b": monitor.ErrNotEligible},
	}
	q := &fakeQueue{}
	uc := scheduler.NewUC(repo.Monitors{R: mr}, repo.Dispatcher{Q: q}, time.Second)

	fetched, sent, errs, err := uc.Tick(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, fetched)
	assert.Equal(t, 1, sent)
	assert.Equal(t, 0, errs)
	assert.Equal(t, []string{"a"}, mr.leased)
}

func TestTick_EnqueueFailureCountsAsError(t *testing.T) {
	mr := &fakeMonitorRepo{dueIDs: []string{"a"}}
	q := &fakeQueue{failFor: map[string]bool{"a": true}}
	uc := scheduler.NewUC(repo.Monitors{R: mr}, repo.Dispatcher{Q: q}, time.Second)

	fetched, sent, errs, err := uc.Tick(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, fetched)
	assert.Zero(t, sent)
	assert.Equal(t, 1, errs)
}

func TestTick_FetchErrorPropagates(t *testing.T) {
	mr := &fakeMonitorRepoErr{}
	q := &fakeQueue{}
	uc := scheduler.NewUC(repo.Monitors{R: mr}, repo.Dispatcher{Q: q}, time.Second)

	_, _, _, err := uc.Tick(context.Background(), 10)
	require.Error(t, err)
}

type fakeMonitorRepoErr struct{ monitor.Repo }

func (f *fakeMonitorRepoErr) FetchDueIDs(ctx context.Context, limit int) ([]string, error) {
	return nil, errors.New("db down")
}
