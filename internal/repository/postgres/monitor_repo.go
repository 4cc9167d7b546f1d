package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pingerus/monitor-core/internal/domain/monitor"
)

var _ monitor.Repo = (*MonitorRepo)(nil)

type MonitorRepo struct{ db *DB }

func NewMonitorRepo(db *DB) *MonitorRepo { return &MonitorRepo{db: db} }

const (
	qRegister = `
INSERT INTO monitored_links
	(id, external_url_id, external_user_id, long_url, short_url, environment,
	 interval_ms, next_check_at, is_active, current_status, consecutive_failures)
VALUES
	($1, $2, $3, $4, $5, $6, $7, now(), TRUE, 'pending', 0)
ON CONFLICT (external_url_id) DO NOTHING
RETURNING id, external_url_id, external_user_id, long_url, short_url, environment,
	interval_ms, next_check_at, scheduler_locked_until, is_active, current_status,
	last_checked_at, last_status_code, last_latency_ms, consecutive_failures,
	created_at, updated_at;
`

	qGetByExternalURLID = `
SELECT id, external_url_id, external_user_id, long_url, short_url, environment,
	interval_ms, next_check_at, scheduler_locked_until, is_active, current_status,
	last_checked_at, last_status_code, last_latency_ms, consecutive_failures,
	created_at, updated_at
FROM monitored_links WHERE external_url_id = $1;
`

	qGetByID = `
SELECT id, external_url_id, external_user_id, long_url, short_url, environment,
	interval_ms, next_check_at, scheduler_locked_until, is_active, current_status,
	last_checked_at, last_status_code, last_latency_ms, consecutive_failures,
	created_at, updated_at
FROM monitored_links WHERE id = $1;
`

	qDeactivate = `UPDATE monitored_links SET is_active = FALSE, updated_at = now() WHERE id = $1;`

	qFetchDueIDs = `
SELECT id
FROM monitored_links
WHERE is_active = TRUE
  AND next_check_at <= now()
  AND (scheduler_locked_until IS NULL OR scheduler_locked_until <= now())
ORDER BY next_check_at ASC, id ASC
LIMIT $1;
`

	qLeaseSelect = `
SELECT id, external_url_id, external_user_id, long_url, short_url, environment,
	interval_ms, next_check_at, scheduler_locked_until, is_active, current_status,
	last_checked_at, last_status_code, last_latency_ms, consecutive_failures,
	created_at, updated_at
FROM monitored_links
WHERE id = $1
  AND is_active = TRUE
  AND next_check_at <= now()
  AND (scheduler_locked_until IS NULL OR scheduler_locked_until <= now())
FOR UPDATE SKIP LOCKED;
`

	qLeaseAdvance = `
UPDATE monitored_links
SET next_check_at = now() + ($2 * INTERVAL '1 millisecond'),
    scheduler_locked_until = now() + ($3 * INTERVAL '1 millisecond'),
    updated_at = now()
WHERE id = $1;
`

	qRecordResult = `
UPDATE monitored_links
SET last_checked_at = $2,
    current_status = $3,
    last_status_code = $4,
    last_latency_ms = $5,
    scheduler_locked_until = NULL,
    consecutive_failures = CASE WHEN $6 THEN 0 ELSE consecutive_failures + 1 END,
    updated_at = now()
WHERE id = $1;
`
)

func scanMonitor(row pgx.Row) (*monitor.Monitor, error) {
	var m monitor.Monitor
	var env string
	var status string
	if err := row.Scan(
		&m.ID, &m.ExternalURLID, &m.ExternalUserID, &m.LongURL, &m.ShortURL, &env,
		&m.IntervalMS, &m.NextCheckAt, &m.SchedulerLockedUntil, &m.IsActive, &status,
		&m.LastCheckedAt, &m.LastStatusCode, &m.LastLatencyMS, &m.ConsecutiveFailures,
		&m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, monitor.ErrNotFound
		}
		return nil, fmt.Errorf("scan monitor: %w", err)
	}
	m.Environment = monitor.Environment(env)
	m.CurrentStatus = monitor.Status(status)
	return &m, nil
}

func (r *MonitorRepo) Register(ctx context.Context, in monitor.RegisterInput) (*monitor.Monitor, bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	env := in.Environment
	if env == "" {
		env = monitor.EnvProd
	}
	intervalMS := in.IntervalMS
	if intervalMS < 1000 {
		intervalMS = 1000
	}

	id := uuid.NewString()
	row := r.db.Pool.QueryRow(ctx, qRegister,
		id, in.ExternalURLID, in.ExternalUserID, in.LongURL, in.ShortURL, string(env), intervalMS,
	)
	m, err := scanMonitor(row)
	if err == nil {
		return m, false, nil
	}
	if !errors.Is(err, monitor.ErrNotFound) {
		return nil, false, err
	}

	// ON CONFLICT DO NOTHING produced no row: already registered.
	existing, gerr := scanMonitor(r.db.Pool.QueryRow(ctx, qGetByExternalURLID, in.ExternalURLID))
	if gerr != nil {
		return nil, false, fmt.Errorf("lookup existing monitor: %w", gerr)
	}
	return existing, true, nil
}

func (r *MonitorRepo) GetByID(ctx context.Context, id string) (*monitor.Monitor, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()
	return scanMonitor(r.db.Pool.QueryRow(ctx, qGetByID, id))
}

func (r *MonitorRepo) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()
	cmd, err := r.db.Pool.Exec(ctx, qDeactivate, id)
	if err != nil {
		return fmt.Errorf("deactivate monitor: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return monitor.ErrNotFound
	}
	return nil
}

func (r *MonitorRepo) FetchDueIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 100
	}
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.Pool.Query(ctx, qFetchDueIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch due ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan due id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *MonitorRepo) Lease(ctx context.Context, id string, leaseHorizon time.Duration) (*monitor.Monitor, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin lease tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	m, err := scanMonitor(tx.QueryRow(ctx, qLeaseSelect, id))
	if err != nil {
		if errors.Is(err, monitor.ErrNotFound) {
			return nil, monitor.ErrNotEligible
		}
		return nil, fmt.Errorf("lease select: %w", err)
	}

	intervalMS := m.IntervalMS
	if intervalMS < 1000 {
		intervalMS = 1000
	}
	if _, err := tx.Exec(ctx, qLeaseAdvance, id, intervalMS, leaseHorizon.Milliseconds()); err != nil {
		return nil, fmt.Errorf("lease advance: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit lease: %w", err)
	}
	return m, nil
}

func (r *MonitorRepo) RecordResult(ctx context.Context, u monitor.ResultUpdate) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	eq := r.db.execQueryer(ctx)
	_, err := eq.Exec(ctx, qRecordResult,
		u.ID, u.CheckedAt, string(u.Status), u.StatusCode, u.LatencyMS, u.IsHealthy,
	)
	if err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}
