package latefee

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"repayment-engine/internal/domain/installment"
	"repayment-engine/internal/domain/latefee"
	"repayment-engine/internal/domain/loan"
	"repayment-engine/internal/domain/processing"
	"repayment-engine/internal/domain/uow"
	"repayment-engine/pkg/civil"
	"repayment-engine/pkg/money"
)

// logWriteTimeout bounds the processing log write, which outlives a
// cancelled run context.
const logWriteTimeout = 5 * time.Second

type Calculator struct {
	installments  installment.Repository
	logs          processing.Repository
	uow           uow.UnitOfWork
	defaultPolicy latefee.Policy
	log           *zap.Logger
	now           func() time.Time
}

// NewCalculator: defaultPolicy applies to products without a policy row.
func NewCalculator(installments installment.Repository, logs processing.Repository, tx uow.UnitOfWork, defaultPolicy latefee.Policy, log *zap.Logger) *Calculator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Calculator{
		installments:  installments,
		logs:          logs,
		uow:           tx,
		defaultPolicy: defaultPolicy,
		log:           log,
		now:           time.Now,
	}
}

func (c *Calculator) WithClock(now func() time.Time) *Calculator {
	c.now = now
	return c
}

// Run accrues today's late fees for every overdue installment and writes
// one processing log row. The returned error is non-nil only when the run
// failed; the result is populated either way.
func (c *Calculator) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	started := c.now()
	todayStart := civil.StartOfDay(started)
	res := &RunResult{IsManualRun: opts.Manual, TotalFeeAmount: decimal.Zero}

	if !opts.Manual {
		done, err := c.logs.AutomaticSucceededSince(ctx, todayStart)
		if err != nil {
			return c.finish(ctx, started, res, fmt.Errorf("check processing log: %w", err))
		}
		if done {
			c.log.Info("late fee run skipped: already processed today",
				zap.String("date", civil.DateString(started)))
			res.Success = true
			res.Skipped = true
			return res, nil
		}
	}

	return c.finish(ctx, started, res, c.scan(ctx, todayStart, res))
}

func (c *Calculator) scan(ctx context.Context, todayStart time.Time, res *RunResult) error {
	overdue, err := c.installments.ListOverdue(ctx, todayStart)
	if err != nil {
		return fmt.Errorf("list overdue installments: %w", err)
	}
	res.OverdueRepayments = len(overdue)

	policies := make(map[string]latefee.Policy)
	for _, it := range overdue {
		n, amount, err := c.accrue(ctx, it.ID, todayStart, policies)
		if err != nil {
			return fmt.Errorf("installment %s: %w", it.InstallmentID, err)
		}
		res.FeesCalculated += n
		res.TotalFeeAmount = res.TotalFeeAmount.Add(amount)
	}
	return nil
}

// accrue charges one installment inside its own transaction, holding the
// installment row lock. Already-charged fees are skipped by the unique index.
func (c *Calculator) accrue(ctx context.Context, installmentID uint64, todayStart time.Time, policies map[string]latefee.Policy) (int, decimal.Decimal, error) {
	var (
		count int
		total = decimal.Zero
	)
	err := c.uow.WithinInstallmentTx(ctx, installmentID, func(r uow.Repos, it *installment.Installment) error {
		// re-check under the lock; a payment may have landed since the scan
		if !it.IsOverdue(todayStart) {
			return nil
		}
		l, err := r.Loans.GetByIDForUpdate(ctx, it.LoanID)
		if err != nil {
			return fmt.Errorf("load loan: %w", err)
		}
		policy, err := c.policyFor(ctx, r.Policies, l.ProductCode, policies)
		if err != nil {
			return err
		}

		days := civil.DaysBetween(it.DueDate, todayStart)
		prev, err := r.LateFees.Latest(ctx, it.ID)
		if err != nil {
			return fmt.Errorf("latest fee: %w", err)
		}
		cumulative := decimal.Zero
		if prev != nil {
			cumulative = prev.CumulativeFees
		}

		charge := func(rec *latefee.Record) error {
			rec.InstallmentID = it.ID
			rec.CalculationDate = todayStart
			rec.DaysOverdue = days
			rec.CumulativeFees = cumulative.Add(rec.FeeAmount)
			rec.Status = latefee.StatusActive
			inserted, err := r.LateFees.CreateIfAbsent(ctx, rec)
			if err != nil {
				return fmt.Errorf("insert %s fee: %w", rec.FeeType, err)
			}
			if !inserted {
				c.log.Debug("late fee already charged today",
					zap.String("installment_id", it.InstallmentID),
					zap.String("fee_type", string(rec.FeeType)))
				return nil
			}
			cumulative = rec.CumulativeFees
			count++
			total = total.Add(rec.FeeAmount)
			return nil
		}

		if policy.DailyEnabled() {
			base := it.Remaining()
			fee := money.Round2(base.Mul(money.Percent(policy.DailyRate)))
			if fee.IsPositive() {
				if err := charge(&latefee.Record{
					FeeType:    latefee.FeeTypeDaily,
					Rate:       policy.DailyRate,
					BaseAmount: base,
					FeeAmount:  fee,
				}); err != nil {
					return err
				}
			}
		}
		if policy.FixedDue(days) {
			if err := charge(&latefee.Record{
				FeeType:    latefee.FeeTypeFixed,
				Rate:       decimal.Zero,
				BaseAmount: policy.FixedAmount,
				FeeAmount:  money.Round2(policy.FixedAmount),
			}); err != nil {
				return err
			}
		}

		if it.DaysOverdue != days {
			it.DaysOverdue = days
			if err := r.Installments.Save(ctx, it); err != nil {
				return fmt.Errorf("save installment: %w", err)
			}
		}
		if l.Status == loan.StatusActive {
			l.Status = loan.StatusOverdue
			l.StatusUpdatedAt = c.now().UTC()
			if err := r.Loans.Save(ctx, l); err != nil {
				return fmt.Errorf("flag loan overdue: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, decimal.Zero, err
	}
	return count, total, nil
}

func (c *Calculator) policyFor(ctx context.Context, repo latefee.PolicyRepository, productCode string, cache map[string]latefee.Policy) (latefee.Policy, error) {
	if p, ok := cache[productCode]; ok {
		return p, nil
	}
	p, err := repo.GetByProductCode(ctx, productCode)
	switch {
	case err == nil:
		cache[productCode] = *p
		return *p, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		def := c.defaultPolicy
		def.ProductCode = productCode
		cache[productCode] = def
		return def, nil
	default:
		return latefee.Policy{}, fmt.Errorf("load policy %q: %w", productCode, err)
	}
}

func (c *Calculator) finish(ctx context.Context, started time.Time, res *RunResult, runErr error) (*RunResult, error) {
	res.ProcessingTimeMs = c.now().Sub(started).Milliseconds()
	res.Success = runErr == nil
	entry := &processing.Log{
		ProcessedAt:      started,
		Status:           processing.StatusSuccess,
		FeesCalculated:   res.FeesCalculated,
		TotalFeeAmount:   res.TotalFeeAmount,
		OverdueCount:     res.OverdueRepayments,
		ProcessingTimeMs: res.ProcessingTimeMs,
		IsManualRun:      res.IsManualRun,
	}
	if runErr != nil {
		res.ErrorMessage = runErr.Error()
		entry.Status = processing.StatusFailed
		entry.ErrorMessage = res.ErrorMessage
	}

	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logWriteTimeout)
	defer cancel()
	if err := c.logs.Create(logCtx, entry); err != nil {
		c.log.Error("write processing log", zap.Error(err))
		if runErr == nil {
			res.Success = false
			res.ErrorMessage = err.Error()
			return res, fmt.Errorf("write processing log: %w", err)
		}
	}

	fields := []zap.Field{
		zap.Bool("manual", res.IsManualRun),
		zap.Int("overdue", res.OverdueRepayments),
		zap.Int("fees", res.FeesCalculated),
		zap.String("total", res.TotalFeeAmount.StringFixed(2)),
		zap.Int64("ms", res.ProcessingTimeMs),
	}
	if runErr != nil {
		c.log.Error("late fee run failed", append(fields, zap.Error(runErr))...)
		return res, runErr
	}
	c.log.Info("late fee run complete", fields...)
	return res, nil
}
