package config

import (
	"time"

	"github.com/pingerus/monitor-core/internal/obs"
	"github.com/pingerus/monitor-core/internal/repository/postgres"
)

type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	PriorityTopic string   `mapstructure:"priority_topic"`
	GroupID       string   `mapstructure:"group_id"`
}

type QueueConfig struct {
	RateLimitMax        int           `mapstructure:"rate_limit_max"`
	RateLimitPeriod     time.Duration `mapstructure:"rate_limit_period"`
	KeepLastCompletions int           `mapstructure:"keep_last_completions"`
	KeepLastFailures    int           `mapstructure:"keep_last_failures"`
}

type ProbeConfig struct {
	Timeout             time.Duration `mapstructure:"timeout"`
	DegradedThresholdMS int           `mapstructure:"degraded_threshold_ms"`
	VerifyTLS           bool          `mapstructure:"verify_tls"`
	FollowRedirects     bool          `mapstructure:"follow_redirects"`
}

type SchedulerConfig struct {
	Tick         time.Duration `mapstructure:"tick"`
	BatchLimit   int           `mapstructure:"batch_limit"`
	LeaseHorizon time.Duration `mapstructure:"lease_horizon"`
}

type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

type AdminConfig struct {
	Addr string `mapstructure:"addr"`
}

type HistorySinkConfig struct {
	DevEndpoint  string        `mapstructure:"dev_endpoint"`
	ProdEndpoint string        `mapstructure:"prod_endpoint"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// Config is the process-wide configuration surface, shared by every role
// (Admin API, Scheduler, Worker Pool) the supervisor may start. Role gates
// themselves live in RootEnv, read before this is ever unmarshalled.
type Config struct {
	DB          postgres.Config   `mapstructure:"db"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	Queue       QueueConfig       `mapstructure:"queue"`
	Probe       ProbeConfig       `mapstructure:"probe"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Worker      WorkerConfig      `mapstructure:"worker"`
	Admin       AdminConfig       `mapstructure:"admin"`
	HistorySink HistorySinkConfig `mapstructure:"history_sink"`
	OTel        obs.OTELConfig    `mapstructure:"otel"`
	MetricsAddr string            `mapstructure:"metrics_addr"`
	LogLevel    string            `mapstructure:"log_level"`
}
