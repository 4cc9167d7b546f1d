package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

type Config struct {
	Tick         time.Duration
	BatchLimit   int
	LeaseHorizon time.Duration
}

// Runner drives Usecase.Tick on a ticker. A single process only ever runs
// one ticker (spec §5: "The Scheduler is a single logical ticker within a
// process"), but ticks can still overrun their period against a slow DB;
// the inFlight guard skips a tick rather than overlapping two.
type Runner struct {
	log *zap.Logger
	uc  *Usecase
	cfg Config

	inFlight atomic.Bool

	mFetched prometheus.Counter
	mSent    prometheus.Counter
	mErr     prometheus.Counter
	mSkipped prometheus.Counter
	mLoopDur prometheus.Histogram
}

func New(log *zap.Logger, uc *Usecase, cfg Config) *Runner {
	if cfg.Tick <= 0 {
		cfg.Tick = 10 * time.Second
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 500
	}
	return &Runner{
		log: log.With(zap.String("component", "scheduler")),
		uc:  uc,
		cfg: cfg,
		mFetched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_monitors_fetched_total", Help: "Due monitors fetched from the State Sink",
		}),
		mSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_jobs_enqueued_total", Help: "Jobs enqueued to the Dispatch Queue",
		}),
		mErr: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_errors_total", Help: "Errors encountered in the scheduler loop",
		}),
		mSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "scheduler_ticks_skipped_total", Help: "Ticks skipped because the previous tick was still running",
		}),
		mLoopDur: promauto.NewHistogram(prometheus.HistogramOpts{
			Name: "scheduler_tick_duration_seconds", Help: "Scheduler tick duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (r *Runner) tick(ctx context.Context) {
	if !r.inFlight.CompareAndSwap(false, true) {
		r.mSkipped.Inc()
		r.log.Warn("skipping tick: previous tick still in flight")
		return
	}
	defer r.inFlight.Store(false)

	start := time.Now()
	fetched, sent, errs, err := r.uc.Tick(ctx, r.cfg.BatchLimit)
	if err != nil {
		r.mErr.Inc()
		r.log.Warn("tick error", zap.Error(err))
	}
	if fetched > 0 {
		r.mFetched.Add(float64(fetched))
		r.mSent.Add(float64(sent))
		if errs > 0 {
			r.mErr.Add(float64(errs))
		}
		r.log.Debug("tick complete", zap.Int("fetched", fetched), zap.Int("sent", sent), zap.Int("errors", errs))
	}
	r.mLoopDur.Observe(time.Since(start).Seconds())
}

// Run blocks until ctx is cancelled. Per spec §5's cancellation rule, an
// in-flight tick is allowed to complete — the caller's ctx is passed
// straight through to Tick, and shutdown simply stops scheduling new ones.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Tick)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}
