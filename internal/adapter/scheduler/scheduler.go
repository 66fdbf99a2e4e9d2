package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"repayment-engine/internal/usecase/latefee"
	"repayment-engine/pkg/civil"
)

// Runner is the part of the late fee calculator the scheduler drives.
type Runner interface {
	Run(ctx context.Context, opts latefee.RunOptions) (*latefee.RunResult, error)
}

// LateFeeScheduler triggers one automatic calculator run per cron tick,
// evaluated in the lender's timezone. Overlapping ticks are skipped.
type LateFeeScheduler struct {
	cron   *cron.Cron
	runner Runner
	log    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func New(spec string, runner Runner, log *zap.Logger) (*LateFeeScheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cl := cronLogger{s: log.Sugar()}
	c := cron.New(
		cron.WithLocation(civil.Lender),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	s := &LateFeeScheduler{cron: c, runner: runner, log: log, ctx: ctx, cancel: cancel}
	if _, err := c.AddFunc(spec, func() { s.RunOnce(s.ctx) }); err != nil {
		cancel()
		return nil, fmt.Errorf("late fee schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *LateFeeScheduler) Start() {
	s.log.Info("late fee scheduler started")
	s.cron.Start()
}

// Stop cancels a run in progress and waits for it to return, or for ctx.
func (s *LateFeeScheduler) Stop(ctx context.Context) error {
	s.once.Do(s.cancel)
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce is the job body: an automatic run that writes its own log row.
func (s *LateFeeScheduler) RunOnce(ctx context.Context) {
	res, err := s.runner.Run(ctx, latefee.RunOptions{})
	if err != nil {
		s.log.Error("scheduled late fee run failed", zap.Error(err))
		return
	}
	if res.Skipped {
		s.log.Info("scheduled late fee run skipped")
	}
}

// cronLogger adapts zap to cron's logger.
type cronLogger struct{ s *zap.SugaredLogger }

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
