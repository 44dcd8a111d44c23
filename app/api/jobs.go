package api

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/stridehub/strideboard/app/api/types"
	"github.com/stridehub/strideboard/pkg/utils"
)

// recomputeTimeout bounds each scheduled run.
const recomputeTimeout = 2 * time.Minute

// SetupScheduler registers the maintenance jobs:
//   - rank recompute + cache invalidation (RANK_RECOMPUTE_CRON, default
//     hourly) so partially written ranks self-heal even when no mutation
//     arrives
//   - streak rollover (STREAK_ROLLOVER_CRON, default shortly after midnight
//     UTC) zeroing streaks for users with no completion since the previous
//     midnight
//
// Set either variable to "off" to disable that job.
func SetupScheduler(ctx context.Context, app *types.App) error {
	recomputeSpec := utils.Env("RANK_RECOMPUTE_CRON", "0 0 * * * *")
	rolloverSpec := utils.Env("STREAK_ROLLOVER_CRON", "0 10 0 * * *")

	if recomputeSpec == "off" && rolloverSpec == "off" {
		app.Logger.Info("Scheduled maintenance disabled")
		return nil
	}

	app.Cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	// Guards against overlapping runs when a pass outlasts the tick interval.
	var inFlight atomic.Bool

	if recomputeSpec != "off" {
		if _, err := app.Cron.AddFunc(recomputeSpec, func() {
			if !inFlight.CompareAndSwap(false, true) {
				app.Logger.Debug("Skipping rank recompute, previous run still in flight")
				return
			}
			defer inFlight.Store(false)

			rctx, cancel := context.WithTimeout(ctx, recomputeTimeout)
			defer cancel()
			if err := app.Service.RecalculateAndInvalidate(rctx); err != nil {
				app.Logger.Warn("Scheduled rank recompute failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if rolloverSpec != "off" {
		if _, err := app.Cron.AddFunc(rolloverSpec, func() {
			if !inFlight.CompareAndSwap(false, true) {
				app.Logger.Debug("Skipping streak rollover, previous run still in flight")
				return
			}
			defer inFlight.Store(false)

			rctx, cancel := context.WithTimeout(ctx, recomputeTimeout)
			defer cancel()

			// Users with no completion since the previous midnight lose their streak.
			now := time.Now().UTC()
			cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
			if err := app.Service.RolloverStreaks(rctx, cutoff); err != nil {
				app.Logger.Warn("Scheduled streak rollover failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	return nil
}
