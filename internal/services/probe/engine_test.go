package probe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/pingerus/monitor-core/internal/domain/probe"
	"github.com/pingerus/monitor-core/internal/services/probe"
)

func TestCheck_HealthyGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := probe.New(probe.Config{DegradedThresholdMS: 3000})
	result := e.Check(context.Background(), srv.URL)
	assert.True(t, result.IsHealthy)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestCheck_BotChallengeRetriesWithGET(t *testing.T) {
	var headCount, getCount int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			atomic.AddInt32(&headCount, 1)
			w.WriteHeader(http.StatusForbidden)
		case http.MethodGet:
			atomic.AddInt32(&getCount, 1)
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	e := probe.New(probe.Config{DegradedThresholdMS: 3000})
	result := e.Check(context.Background(), srv.URL)

	assert.Equal(t, int32(1), atomic.LoadInt32(&headCount))
	assert.Equal(t, int32(1), atomic.LoadInt32(&getCount))
	assert.True(t, result.IsHealthy)
	assert.Equal(t, http.StatusOK, result.StatusCode)
}

func TestCheck_NonChallengeStatusDoesNotRetry(t *testing.T) {
	var headCount int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&headCount, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e := probe.New(probe.Config{DegradedThresholdMS: 3000})
	result := e.Check(context.Background(), srv.URL)

	assert.Equal(t, int32(1), atomic.LoadInt32(&headCount))
	assert.False(t, result.IsHealthy)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)
}

func TestCheck_DeadlineExceededClassifiesAsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := probe.New(probe.Config{Timeout: 5 * time.Millisecond})
	result := e.Check(context.Background(), srv.URL)

	require.False(t, result.IsHealthy)
	assert.Equal(t, domain.ErrDeadlineExceeded, result.ErrKind)
	assert.Equal(t, 408, result.StatusCode)
}
