// Package historysink defines the port to the external record-of-truth
// service each probe observation is forwarded to (spec §4.5).
package historysink

import (
	"context"
	"time"

	"github.com/pingerus/monitor-core/internal/domain/monitor"
)

// Record is the payload for one linkHealth.recordHealthCheck RPC.
type Record struct {
	URLID        string
	UserID       string
	ShortURL     string
	LongURL      string
	StatusCode   int
	LatencyMS    int
	IsHealthy    bool
	HealthStatus monitor.Status
	ErrorMessage string
	CheckedAt    time.Time
}

// Sink writes one Record to the History Sink instance selected by
// environment. All errors are treated as transient by callers (spec §4.5) —
// the port itself just reports success or failure.
type Sink interface {
	RecordHealthCheck(ctx context.Context, env monitor.Environment, r Record) error
}
