package bootstrap

import (
	"context"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/pingerus/monitor-core/internal/config"
	"github.com/pingerus/monitor-core/internal/domain/historysink"
	"github.com/pingerus/monitor-core/internal/domain/job"
	"github.com/pingerus/monitor-core/internal/domain/monitor"
	"github.com/pingerus/monitor-core/internal/obs"
	"github.com/pingerus/monitor-core/internal/repository/postgres"
	adminsvc "github.com/pingerus/monitor-core/internal/services/admin"
	"github.com/pingerus/monitor-core/internal/services/probe"
	schedulersvc "github.com/pingerus/monitor-core/internal/services/scheduler"
	schedulerrepo "github.com/pingerus/monitor-core/internal/services/scheduler/repo"
	workersvc "github.com/pingerus/monitor-core/internal/services/worker"
	workerrepo "github.com/pingerus/monitor-core/internal/services/worker/repo"
)

// registerMetrics always runs — it carries no domain role, just the
// process's own health/metrics surface (spec's ambient observability,
// carried regardless of role gates).
func registerMetrics(lc fx.Lifecycle, cfg *config.Config, db *postgres.DB, log *zap.Logger) {
	var srv *http.Server
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			srv = obs.BootstrapMetricsServer(cfg.MetricsAddr, db.Pool.Ping, log)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if srv == nil {
				return nil
			}
			return srv.Shutdown(ctx)
		},
	})
}

func registerScheduler(lc fx.Lifecycle, env *config.RootEnv, cfg *config.Config, runnerCtx context.Context,
	monitors monitor.Repo, q job.Queue, log *zap.Logger) {
	if !env.RunScheduler {
		return
	}
	uc := schedulersvc.NewUC(schedulerrepo.Monitors{R: monitors}, schedulerrepo.Dispatcher{Q: q}, cfg.Scheduler.LeaseHorizon)
	runner := schedulersvc.New(log, uc, schedulersvc.Config{
		Tick:         cfg.Scheduler.Tick,
		BatchLimit:   cfg.Scheduler.BatchLimit,
		LeaseHorizon: cfg.Scheduler.LeaseHorizon,
	})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := runner.Run(runnerCtx); err != nil && runnerCtx.Err() == nil {
					log.Error("scheduler stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

func registerWorker(lc fx.Lifecycle, env *config.RootEnv, cfg *config.Config, runnerCtx context.Context,
	monitors monitor.Repo, q job.Queue, probeEngine *probe.Engine, historySink historysink.Sink, log *zap.Logger) {
	if !env.RunWorker {
		return
	}
	handler := workersvc.NewHandler(probeEngine, workerrepo.StateSink{R: monitors}, workerrepo.HistorySink{S: historySink}, log)
	runner := workersvc.New(log, q, handler, cfg.Worker.Concurrency)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := runner.Run(runnerCtx); err != nil && runnerCtx.Err() == nil {
					log.Error("worker pool stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
	})
}

func registerAdmin(lc fx.Lifecycle, env *config.RootEnv, cfg *config.Config,
	monitors monitor.Repo, q job.Queue, log *zap.Logger) {
	if !env.RunAPI {
		return
	}
	svc := &adminsvc.Service{Monitors: monitors, Queue: q, Log: log}
	router := adminsvc.NewRouter(svc, adminsvc.Config{
		APISecret:  env.MonitoringAPISecret,
		Production: env.Environment == "prod",
	})
	srv := &http.Server{
		Addr:    cfg.Admin.Addr,
		Handler: obs.WrapHTTPHandler("admin", router),
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("admin server stopped unexpectedly", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error { return srv.Shutdown(ctx) },
	})
}

// New assembles the process-wide supervisor: the core module provides one
// instance of every shared dependency, and the three role modules each
// decide for themselves — reading RootEnv — whether they have anything to
// register.
func New(env *config.RootEnv) *fx.App {
	return fx.New(
		fx.Supply(env),
		coreModule,
		fx.Invoke(registerMetrics, registerScheduler, registerWorker, registerAdmin),
		fx.StopTimeout(shutdownGrace),
	)
}
