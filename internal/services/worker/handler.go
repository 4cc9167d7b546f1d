package worker

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/pingerus/monitor-core/internal/domain/historysink"
	"github.com/pingerus/monitor-core/internal/domain/job"
	"github.com/pingerus/monitor-core/internal/domain/monitor"
	"github.com/pingerus/monitor-core/internal/obs"
	"github.com/pingerus/monitor-core/internal/services/probe"
	"github.com/pingerus/monitor-core/internal/services/worker/repo"
)

// Handler implements spec §4.3's per-job sequence: probe, then attempt both
// sinks independently. Handle always returns nil: Probe.Check reports
// transport failures as a down Result rather than an error, and both sink
// writes are logged/telemetered on error but never propagate, so a sink
// outage cannot turn into a re-probing storm.
type Handler struct {
	Probe   *probe.Engine
	State   repo.StateSink
	History repo.HistorySink
	Log     *zap.Logger

	mProbes     prometheus.Counter
	mUp         prometheus.Counter
	mDown       prometheus.Counter
	mStateErr   prometheus.Counter
	mHistoryErr prometheus.Counter
	mLatency    prometheus.Histogram
}

func NewHandler(probeEngine *probe.Engine, state repo.StateSink, history repo.HistorySink, log *zap.Logger) *Handler {
	return &Handler{
		Probe:   probeEngine,
		State:   state,
		History: history,
		Log:     log.With(zap.String("component", "worker")),
		mProbes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_probes_total", Help: "Probes executed",
		}),
		mUp: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_probe_up_total", Help: "Healthy probe outcomes",
		}),
		mDown: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_probe_down_total", Help: "Unhealthy probe outcomes",
		}),
		mStateErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_state_sink_errors_total", Help: "State Sink write failures (non-fatal to the job)",
		}),
		mHistoryErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_history_sink_errors_total", Help: "History Sink write failures (non-fatal to the job)",
		}),
		mLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "worker_probe_latency_seconds", Help: "Probe latency", Buckets: prometheus.DefBuckets,
		}),
	}
}

func (h *Handler) Handle(ctx context.Context, j job.HealthCheckJob) error {
	h.mProbes.Inc()
	result := h.Probe.Check(ctx, j.LongURL)
	h.mLatency.Observe(float64(result.LatencyMS) / 1000)
	if result.IsHealthy {
		h.mUp.Inc()
	} else {
		h.mDown.Inc()
	}

	checkedAt := time.Now()

	if err := h.State.RecordResult(ctx, monitor.ResultUpdate{
		ID:         j.LinkID,
		CheckedAt:  checkedAt,
		Status:     result.HealthStatus,
		StatusCode: result.StatusCode,
		LatencyMS:  result.LatencyMS,
		IsHealthy:  result.IsHealthy,
	}); err != nil {
		h.mStateErr.Inc()
		obs.WithTrace(ctx, h.Log).Warn("state sink write failed", zap.String("monitor_id", j.LinkID), zap.Error(err))
	}

	if err := h.History.RecordHealthCheck(ctx, j.Environment, historysink.Record{
		URLID:        j.ExternalURLID,
		UserID:       j.ExternalUserID,
		ShortURL:     j.ShortURL,
		LongURL:      j.LongURL,
		StatusCode:   result.StatusCode,
		LatencyMS:    result.LatencyMS,
		IsHealthy:    result.IsHealthy,
		HealthStatus: result.HealthStatus,
		ErrorMessage: result.ErrorMessage,
		CheckedAt:    checkedAt,
	}); err != nil {
		h.mHistoryErr.Inc()
		obs.WithTrace(ctx, h.Log).Warn("history sink write failed", zap.String("monitor_id", j.LinkID), zap.Error(err))
	}

	return nil
}
