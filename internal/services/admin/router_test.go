package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pingerus/monitor-core/internal/domain/job"
	"github.com/pingerus/monitor-core/internal/domain/monitor"
	"github.com/pingerus/monitor-core/internal/services/admin"
)

func init() { gin.SetMode(gin.TestMode) }

type fakeMonitorRepo struct {
	monitor.Repo
	byID        map[string]*monitor.Monitor
	registerFn  func(in monitor.RegisterInput) (*monitor.Monitor, bool, error)
	deactivated []string
}

func (f *fakeMonitorRepo) Register(ctx context.Context, in monitor.RegisterInput) (*monitor.Monitor, bool, error) {
	return f.registerFn(in)
}

func (f *fakeMonitorRepo) GetByID(ctx context.Context, id string) (*monitor.Monitor, error) {
	if m, ok := f.byID[id]; ok {
		return m, nil
	}
	return nil, monitor.ErrNotFound
}

func (f *fakeMonitorRepo) Deactivate(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return monitor.ErrNotFound
	}
	f.deactivated = append(f.deactivated, id)
	return nil
}

type fakeQueue struct {
	job.Queue
	enqueued []job.HealthCheckJob
}

func (f *fakeQueue) Enqueue(ctx context.Context, j job.HealthCheckJob, opts job.EnqueueOptions) error {
	f.enqueued = append(f.enqueued, j)
	return nil
}

func newTestRouter(repo *fakeMonitorRepo, q *fakeQueue, production bool) *gin.Engine {
	svc := &admin.Service{Monitors: repo, Queue: q, Log: zap.NewNop()}
	return admin.NewRouter(svc, admin.Config{APISecret: "s3cret", Production: production})
}

func TestRegister_CreatesNewMonitor(t *testing.T) {
	repo := &fakeMonitorRepo{
		registerFn: func(in monitor.RegisterInput) (*monitor.Monitor, bool, error) {
			return &monitor.Monitor{ID: "new-id"}, false, nil
		},
	}
	r := newTestRouter(repo, &fakeQueue{}, false)

	body, _ := json.Marshal(map[string]any{
		"convexUrlId":  "u1",
		"convexUserId": "usr1",
		"longUrl":      "https://example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/monitors/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "new-id", resp["linkId"])
}

func TestRegister_ProductionRequiresBearerToken(t *testing.T) {
	repo := &fakeMonitorRepo{
		registerFn: func(in monitor.RegisterInput) (*monitor.Monitor, bool, error) {
			return &monitor.Monitor{ID: "new-id"}, false, nil
		},
	}
	r := newTestRouter(repo, &fakeQueue{}, true)

	body, _ := json.Marshal(map[string]any{
		"convexUrlId":  "u1",
		"convexUserId": "usr1",
		"longUrl":      "https://example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/monitors/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegister_NonProductionAllowsMissingToken(t *testing.T) {
	repo := &fakeMonitorRepo{
		registerFn: func(in monitor.RegisterInput) (*monitor.Monitor, bool, error) {
			return &monitor.Monitor{ID: "new-id"}, false, nil
		},
	}
	r := newTestRouter(repo, &fakeQueue{}, false)

	body, _ := json.Marshal(map[string]any{
		"convexUrlId":  "u1",
		"convexUserId": "usr1",
		"longUrl":      "https://example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/monitors/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestForceCheck_EnqueuesHighPriorityJob(t *testing.T) {
	repo := &fakeMonitorRepo{byID: map[string]*monitor.Monitor{
		"m1": {ID: "m1", LongURL: "https://example.com"},
	}}
	q := &fakeQueue{}
	r := newTestRouter(repo, q, false)

	req := httptest.NewRequest(http.MethodPost, "/monitors/m1/force-check", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, q.enqueued, 1)
}

func TestForceCheck_UnknownMonitorIs404(t *testing.T) {
	repo := &fakeMonitorRepo{byID: map[string]*monitor.Monitor{}}
	r := newTestRouter(repo, &fakeQueue{}, false)

	req := httptest.NewRequest(http.MethodPost, "/monitors/missing/force-check", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeactivate_RemovesMonitor(t *testing.T) {
	repo := &fakeMonitorRepo{byID: map[string]*monitor.Monitor{"m1": {ID: "m1"}}}
	r := newTestRouter(repo, &fakeQueue{}, false)

	req := httptest.NewRequest(http.MethodDelete, "/monitors/m1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"m1"}, repo.deactivated)
}

func TestHealthEndpoint_NoAuthRequired(t *testing.T) {
	r := newTestRouter(&fakeMonitorRepo{}, &fakeQueue{}, true)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
