package postgres

import (
	"context"
	"fmt"

	"github.com/pingerus/monitor-core/internal/domain/ledger"
)

var _ ledger.Repo = (*LedgerRepo)(nil)

// LedgerRepo persists operator-forensics rows for queue outcomes, carrying
// no correctness meaning (spec §4.2, §9 open question on retention counts).
// Grounded on the teacher's outbox.go batch-SQL idiom, adapted from a
// pick/mark-success cycle into an insert-then-trim cycle since there is no
// "pending work" to pick here — only a bounded history to keep. Each
// insert+trim pair runs inside the teacher's Transactor so a crash between
// the two statements never leaves the retained window over its bound.
type LedgerRepo struct {
	db *DB
	tx Transactor
}

func NewLedgerRepo(db *DB, tx Transactor) *LedgerRepo { return &LedgerRepo{db: db, tx: tx} }

const (
	qLedgerInsertCompletion = `
INSERT INTO job_completions (id, job_id, link_id, attempt, error, created_at)
VALUES ($1, $2, $3, $4, '', now());`

	qLedgerTrimCompletions = `
DELETE FROM job_completions
WHERE id NOT IN (
	SELECT id FROM job_completions ORDER BY id DESC LIMIT $1
);`

	qLedgerInsertFailure = `
INSERT INTO job_failures (id, job_id, link_id, attempt, error, created_at)
VALUES ($1, $2, $3, $4, $5, now());`

	qLedgerTrimFailures = `
DELETE FROM job_failures
WHERE id NOT IN (
	SELECT id FROM job_failures ORDER BY id DESC LIMIT $1
);`
)

func (r *LedgerRepo) RecordCompletion(ctx context.Context, e ledger.Entry, keepLast int) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		eq := r.db.execQueryer(ctx)
		if _, err := eq.Exec(ctx, qLedgerInsertCompletion, e.ID, e.JobID, e.LinkID, e.Attempt); err != nil {
			return fmt.Errorf("insert completion: %w", err)
		}
		if _, err := eq.Exec(ctx, qLedgerTrimCompletions, keepLast); err != nil {
			return fmt.Errorf("trim completions: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record completion: %w", err)
	}
	return nil
}

func (r *LedgerRepo) RecordFailure(ctx context.Context, e ledger.Entry, keepLast int) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	err := r.tx.WithTx(ctx, func(ctx context.Context) error {
		eq := r.db.execQueryer(ctx)
		if _, err := eq.Exec(ctx, qLedgerInsertFailure, e.ID, e.JobID, e.LinkID, e.Attempt, e.Error); err != nil {
			return fmt.Errorf("insert failure: %w", err)
		}
		if _, err := eq.Exec(ctx, qLedgerTrimFailures, keepLast); err != nil {
			return fmt.Errorf("trim failures: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("record failure: %w", err)
	}
	return nil
}
