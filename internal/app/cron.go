package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	pkgcron "github.com/kalpit-muncho/dashboard-core/internal/pkg/cron"
)

const telemetryRetention = 30 * 24 * time.Hour

// registerCronJobs wires the scheduled background jobs.
func (a *App) registerCronJobs(deps *moduleDeps) {
	logger := a.logger.Named("cron")

	a.sched.Register(pkgcron.Job{
		Name:        "banner_expiry_sweep",
		Description: "deactivate banners past their display window",
		Interval:    10 * time.Minute,
		Fn: func(ctx context.Context) error {
			swept, err := deps.bannerSvc.SweepExpired(ctx)
			if err != nil {
				logger.Warn("banner expiry sweep failed", zap.Error(err))
				return err
			}
			if swept > 0 {
				logger.Info("banner expiry sweep", zap.Int("deactivated", swept))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "prune_upstream_logs",
		Description: "delete request telemetry older than 30 days",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			if err := deps.sink.Prune(telemetryRetention); err != nil {
				logger.Warn("telemetry prune failed", zap.Error(err))
				return err
			}
			return nil
		},
	})
}
