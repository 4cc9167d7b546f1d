package monitor

import (
	"context"
	"errors"
	"time"
)

// ErrNotEligible signals a lost race: by the time Lease took its row lock,
// the monitor was no longer eligible (already leased, deactivated, or its
// next_check_at moved forward by another replica).
var ErrNotEligible = errors.New("monitor not eligible")

// ErrNotFound signals no row with the given id/external id exists.
var ErrNotFound = errors.New("monitor not found")

// ResultUpdate is the State Sink write described in spec §4.5: one row
// update keyed by monitor ID, carrying the latest observation.
type ResultUpdate struct {
	ID         string
	CheckedAt  time.Time
	Status     Status
	StatusCode int
	LatencyMS  int
	IsHealthy  bool
}

// Repo is the State Sink port: the relational store holding Monitor rows.
type Repo interface {
	Register(ctx context.Context, in RegisterInput) (m *Monitor, alreadyRegistered bool, err error)
	GetByID(ctx context.Context, id string) (*Monitor, error)
	Deactivate(ctx context.Context, id string) error

	// FetchDueIDs selects up to limit eligible monitor IDs, ordered by
	// next_check_at ascending (oldest-overdue first, per spec §4.1 step 2).
	// It takes no lock — Lease re-checks eligibility under a row lock.
	FetchDueIDs(ctx context.Context, limit int) ([]string, error)

	// Lease re-checks eligibility for id under a row lock and, if still
	// eligible, advances next_check_at and scheduler_locked_until in the
	// same transaction (invariant I2), committing before returning. It
	// returns ErrNotEligible if another replica's lease or a concurrent
	// deactivation won the race — that is not an error condition, just a
	// lost race, and the caller should skip the row.
	Lease(ctx context.Context, id string, leaseHorizon time.Duration) (*Monitor, error)

	// RecordResult applies invariant I3: clears the lease, sets the
	// last-observation cache, and increments/resets consecutive_failures.
	RecordResult(ctx context.Context, u ResultUpdate) error
}
