// Package job defines the Dispatch Queue envelope and its enqueue options.
package job

import (
	"fmt"

	"github.com/pingerus/monitor-core/internal/domain/monitor"
)

// Priority controls queue ordering: scheduled ticks use Normal, force-checks
// use High so they are drained ahead of pending scheduled work (spec §4.2).
type Priority int

const (
	PriorityNormal Priority = iota
	PriorityHigh
)

// HealthCheckJob is the immutable queue payload described in spec §3.
type HealthCheckJob struct {
	LinkID         string
	ExternalURLID  string
	ExternalUserID string
	LongURL        string
	ShortURL       string
	Environment    monitor.Environment
}

// EnqueueOptions mirrors spec §4.2's enqueue(job, opts) contract.
type EnqueueOptions struct {
	Priority Priority
	JobID    string
}

// ID builds the queue job identity "{linkId}-{enqueue_epoch_ms}" from spec
// §3, which permits force-checks to coexist with scheduled checks for the
// same monitor without colliding.
func ID(linkID string, enqueueEpochMS int64) string {
	return fmt.Sprintf("%s-%d", linkID, enqueueEpochMS)
}
