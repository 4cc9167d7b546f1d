// Package monitor holds the canonical Monitor entity: one row per URL under
// watch, its scheduling lease, and its last-observation cache.
package monitor

import "time"

type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusUp       Status = "up"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// Monitor is the canonical entity: one row per URL being watched.
type Monitor struct {
	ID             string
	ExternalURLID  string
	ExternalUserID string

	LongURL     string
	ShortURL    string
	Environment Environment

	IntervalMS           int64
	NextCheckAt          time.Time
	SchedulerLockedUntil *time.Time
	IsActive             bool

	CurrentStatus       Status
	LastCheckedAt       *time.Time
	LastStatusCode      *int
	LastLatencyMS       *int
	ConsecutiveFailures int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// RegisterInput is what the Admin API collects to create or upsert a Monitor.
type RegisterInput struct {
	ExternalURLID  string
	ExternalUserID string
	LongURL        string
	ShortURL       string
	IntervalMS     int64
	Environment    Environment
}
