package probe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pingerus/monitor-core/internal/domain/monitor"
	"github.com/pingerus/monitor-core/internal/domain/probe"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		statusCode int
		latencyMS  int
		threshold  int
		wantHealth bool
		wantStatus monitor.Status
	}{
		{"ok fast", 200, 50, 3000, true, monitor.StatusUp},
		{"ok slow", 200, 4000, 3000, true, monitor.StatusDegraded},
		{"redirect counts healthy", 301, 100, 3000, true, monitor.StatusUp},
		{"client error", 404, 100, 3000, false, monitor.StatusDown},
		{"server error", 503, 100, 3000, false, monitor.StatusDown},
		{"boundary latency not degraded", 200, 3000, 3000, true, monitor.StatusUp},
		{"boundary latency degraded", 200, 3001, 3000, true, monitor.StatusDegraded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			healthy, status := probe.Classify(tc.statusCode, tc.latencyMS, tc.threshold)
			assert.Equal(t, tc.wantHealth, healthy)
			assert.Equal(t, tc.wantStatus, status)
		})
	}
}

func TestFailure(t *testing.T) {
	t.Run("timeout reports 408", func(t *testing.T) {
		r := probe.Failure(probe.ErrDeadlineExceeded, 10000, "context deadline exceeded")
		assert.Equal(t, 408, r.StatusCode)
		assert.False(t, r.IsHealthy)
		assert.Equal(t, monitor.StatusDown, r.HealthStatus)
	})

	t.Run("transport error reports 0", func(t *testing.T) {
		r := probe.Failure(probe.ErrTransport, 10, "connection refused")
		assert.Equal(t, 0, r.StatusCode)
		assert.False(t, r.IsHealthy)
		assert.Equal(t, monitor.StatusDown, r.HealthStatus)
	})
}
