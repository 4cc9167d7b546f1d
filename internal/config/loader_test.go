package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pingerus/monitor-core/internal/config"
)

func TestLoad_DefaultsWithNoFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "pingerus.checks.scheduled", cfg.Kafka.Topic)
	assert.Equal(t, "pingerus.checks.priority", cfg.Kafka.PriorityTopic)
	assert.Equal(t, 50, cfg.Queue.RateLimitMax)
	assert.Equal(t, 10*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, 3000, cfg.Probe.DegradedThresholdMS)
	assert.Equal(t, 500, cfg.Scheduler.BatchLimit)
	assert.Equal(t, 10, cfg.Worker.Concurrency)
	assert.Equal(t, ":3001", cfg.Admin.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestApplyRootEnv_OverlaysOntoConfig(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	env := &config.RootEnv{
		DatabaseURL:         "postgres://u:p@host:5432/db",
		KafkaBrokers:        []string{"broker-1:9092", "broker-2:9092"},
		SchedulerIntervalMS: 5000,
		SchedulerBatchSize:  250,
		WorkerConcurrency:   20,
		CheckTimeoutMS:      8000,
		DegradedThresholdMS: 2000,
		LogLevel:            "debug",
		Port:                4000,
	}
	config.ApplyRootEnv(cfg, env)

	assert.Equal(t, env.DatabaseURL, cfg.DB.URL)
	assert.Equal(t, env.KafkaBrokers, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.Scheduler.Tick)
	assert.Equal(t, 250, cfg.Scheduler.BatchLimit)
	assert.Equal(t, 20, cfg.Worker.Concurrency)
	assert.Equal(t, 8*time.Second, cfg.Probe.Timeout)
	assert.Equal(t, 2000, cfg.Probe.DegradedThresholdMS)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":4000", cfg.Admin.Addr)
}
