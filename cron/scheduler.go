package cron

import (
	"context"
	"fmt"
	"time"

	"lexassist/services/license"
	"lexassist/utils"

	robfig "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sweepTimeout = 2 * time.Minute

// Sweeper expires and flags licenses.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (*license.SweepResult, error)
}

// zapCronLogger adapts zap to robfig's logger.
type zapCronLogger struct {
	log *zap.SugaredLogger
}

func (l zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}

// StartScheduler runs the license sweep on spec (standard cron syntax or
// descriptors such as "@every 15m"). Stop the returned cron on shutdown.
func StartScheduler(spec string, sweeper Sweeper) (*robfig.Cron, error) {
	logger := zapCronLogger{log: utils.GetLogger().Sugar()}
	c := robfig.New(
		robfig.WithLogger(logger),
		robfig.WithChain(robfig.Recover(logger), robfig.SkipIfStillRunning(logger)),
	)
	if _, err := c.AddFunc(spec, sweepJob(sweeper, time.Now)); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	c.Start()
	utils.GetLogger().Info("License sweep scheduled", zap.String("schedule", spec))
	return c, nil
}

func sweepJob(sweeper Sweeper, now func() time.Time) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		if _, err := sweeper.Sweep(ctx, now()); err != nil {
			utils.GetLogger().Error("License sweep failed", zap.Error(err))
		}
	}
}
