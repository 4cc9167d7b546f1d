// Package ledger holds the operator-forensics record of queue outcomes
// (spec §4.2: "the last 5000 failures are retained... the last 1000
// completions are retained"). It carries no correctness meaning — the
// scheduler lease (I2) is what makes re-scheduling safe, not this ledger.
package ledger

import (
	"context"
	"time"
)

type Entry struct {
	ID        string
	JobID     string
	LinkID    string
	Attempt   int
	Error     string
	CreatedAt time.Time
}

// Repo persists completion/failure ledger rows and enforces the bounded
// retention window per kind.
type Repo interface {
	RecordCompletion(ctx context.Context, e Entry, keepLast int) error
	RecordFailure(ctx context.Context, e Entry, keepLast int) error
}
