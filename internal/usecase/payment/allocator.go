package payment

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
	"repayment-engine/internal/domain/uow"
	"repayment-engine/pkg/civil"
	"repayment-engine/pkg/money"
)

type Allocator struct {
	installments installment.Repository
	fees         latefee.Repository
	uow          uow.UnitOfWork
	log          *zap.Logger
	now          func() time.Time
}

func NewAllocator(installments installment.Repository, fees latefee.Repository, tx uow.UnitOfWork, log *zap.Logger) *Allocator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Allocator{installments: installments, fees: fees, uow: tx, log: log, now: time.Now}
}

func (a *Allocator) WithClock(now func() time.Time) *Allocator {
	a.now = now
	return a
}

// Allocate applies one settled payment: the installment's remaining
// scheduled amount first, then ACTIVE late fees oldest first. Reading the
// fees and writing the outcome happen under the installment row lock.
func (a *Allocator) Allocate(ctx context.Context, in PaymentSettled) (*AllocationResult, error) {
	paid := money.Round2(in.Amount)
	if !paid.IsPositive() {
		return nil, ErrInvalidAmount
	}
	settledAt := in.SettledAt
	if settledAt.IsZero() {
		settledAt = a.now()
	}
	settledAt = settledAt.UTC()

	target, err := a.installments.GetByInstallmentID(ctx, in.InstallmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstallmentNotFound
		}
		return nil, err
	}

	var res *AllocationResult
	err = a.uow.WithinInstallmentTx(ctx, target.ID, func(r uow.Repos, it *installment.Installment) error {
		fees, err := r.LateFees.ListActive(ctx, it.ID)
		if err != nil {
			return fmt.Errorf("list active fees: %w", err)
		}
		if it.PaymentState.Terminal() && len(fees) == 0 {
			return ErrInstallmentSettled
		}

		res, err = a.apply(ctx, r, it, fees, paid, settledAt)
		if err != nil {
			return err
		}
		return a.updateLoan(ctx, r, it, res)
	})
	if err != nil {
		return nil, err
	}

	a.log.Info("payment allocated",
		zap.String("installment_id", res.InstallmentID),
		zap.String("amount", paid.StringFixed(2)),
		zap.String("state", string(res.PaymentState)),
		zap.String("fees_paid", res.LateFeesPaid.StringFixed(2)),
		zap.String("fees_waived", res.LateFeesWaived.StringFixed(2)),
		zap.String("remaining", res.RemainingPayment.StringFixed(2)))
	return res, nil
}

func (a *Allocator) apply(ctx context.Context, r uow.Repos, it *installment.Installment, fees []*latefee.Record, paid decimal.Decimal, settledAt time.Time) (*AllocationResult, error) {
	scheduled := it.Remaining()
	totalFees := decimal.Zero
	for _, f := range fees {
		totalFees = totalFees.Add(f.FeeAmount)
	}
	res := &AllocationResult{
		Success:           true,
		InstallmentID:     it.InstallmentID,
		AppliedToSchedule: decimal.Zero,
		LateFeesPaid:      decimal.Zero,
		LateFeesWaived:    decimal.Zero,
		TotalLateFees:     totalFees,
		RemainingPayment:  decimal.Zero,
		UnappliedExcess:   decimal.Zero,
	}

	switch {
	case money.EqualWithinCent(paid, scheduled):
		// on-time-equivalent settlement forgives every ACTIVE fee
		res.AppliedToSchedule = scheduled
		if _, err := r.LateFees.Settle(ctx, feeIDs(fees), latefee.StatusWaived, settledAt); err != nil {
			return nil, fmt.Errorf("waive fees: %w", err)
		}
		res.LateFeesWaived = totalFees
		a.settle(it, settledAt, false)

	case paid.LessThan(scheduled):
		res.AppliedToSchedule = paid
		it.ActualAmountPaid = it.ActualAmountPaid.Add(paid)
		it.PaymentState = installment.StatePartial

	default:
		res.AppliedToSchedule = scheduled
		excess := paid.Sub(scheduled)
		var covered []uint64
		for _, f := range fees {
			if excess.LessThan(f.FeeAmount) && !money.EqualWithinCent(excess, f.FeeAmount) {
				break
			}
			covered = append(covered, f.ID)
			excess = money.NonNegative(excess.Sub(f.FeeAmount))
			res.LateFeesPaid = res.LateFeesPaid.Add(f.FeeAmount)
		}
		if _, err := r.LateFees.Settle(ctx, covered, latefee.StatusPaid, settledAt); err != nil {
			return nil, fmt.Errorf("pay fees: %w", err)
		}
		if len(covered) == len(fees) {
			res.RemainingPayment = excess
		} else {
			res.UnappliedExcess = excess
		}
		a.settle(it, settledAt, len(covered) > 0 && len(covered) == len(fees))
	}

	if err := r.Installments.Save(ctx, it); err != nil {
		return nil, fmt.Errorf("save installment: %w", err)
	}
	res.PaymentState = it.PaymentState
	return res, nil
}

// settle marks the scheduled obligation as fully paid. feesCleared is true
// when this payment also paid off every ACTIVE late fee.
func (a *Allocator) settle(it *installment.Installment, settledAt time.Time, feesCleared bool) {
	wasTerminal := it.PaymentState.Terminal()
	it.ActualAmountPaid = it.ScheduledAmount
	switch {
	case feesCleared:
		it.PaymentState = installment.StateCompleted
	case wasTerminal:
		return
	case civil.DaysBetween(settledAt, it.DueDate) > 0:
		it.PaymentState = installment.StatePrepaid
	default:
		it.PaymentState = installment.StatePaid
	}
	if !wasTerminal {
		at := settledAt
		it.PaidAt = &at
	}
}

func (a *Allocator) updateLoan(ctx context.Context, r uow.Repos, it *installment.Installment, res *AllocationResult) error {
	l, err := r.Loans.GetByIDForUpdate(ctx, it.LoanID)
	if err != nil {
		return fmt.Errorf("load loan: %w", err)
	}
	items, err := r.Installments.ListByLoan(ctx, l.ID)
	if err != nil {
		return fmt.Errorf("list installments: %w", err)
	}

	todayStart := civil.StartOfDay(a.now())
	allTerminal, anyOverdue := true, false
	for _, other := range items {
		if other.ID == it.ID {
			other = it
		}
		if !other.PaymentState.Terminal() {
			allTerminal = false
		}
		if other.IsOverdue(todayStart) {
			anyOverdue = true
		}
	}
	status := loan.StatusOverdue
	switch {
	case allTerminal:
		status = loan.StatusPaid
	case !anyOverdue:
		status = loan.StatusActive
	}

	l.OutstandingBalance = money.NonNegative(l.OutstandingBalance.Sub(res.AppliedToSchedule))
	if status != l.Status {
		l.Status = status
		l.StatusUpdatedAt = a.now().UTC()
	}
	if err := r.Loans.Save(ctx, l); err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	res.LoanStatus = l.Status
	res.OutstandingBalance = l.OutstandingBalance
	return nil
}

// AmountDue is read-only: remaining scheduled amount plus ACTIVE fees.
func (a *Allocator) AmountDue(ctx context.Context, installmentID string) (*AmountDue, error) {
	it, err := a.installments.GetByInstallmentID(ctx, installmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstallmentNotFound
		}
		return nil, err
	}
	fees, err := a.fees.ListActive(ctx, it.ID)
	if err != nil {
		return nil, err
	}

	todayStart := civil.StartOfDay(a.now())
	out := &AmountDue{
		InstallmentID:      it.InstallmentID,
		PaymentState:       it.PaymentState,
		IsOverdue:          it.IsOverdue(todayStart),
		DaysOverdue:        it.DaysOverdue,
		ScheduledRemaining: it.Remaining(),
		ActiveLateFees:     decimal.Zero,
		Breakdown:          make([]FeeLine, 0, len(fees)),
	}
	if out.IsOverdue {
		out.DaysOverdue = civil.DaysBetween(it.DueDate, todayStart)
	}
	for _, f := range fees {
		out.ActiveLateFees = out.ActiveLateFees.Add(f.FeeAmount)
		out.Breakdown = append(out.Breakdown, FeeLine{
			ID:              f.ID,
			FeeType:         f.FeeType,
			CalculationDate: civil.DateString(f.CalculationDate),
			DaysOverdue:     f.DaysOverdue,
			Amount:          f.FeeAmount,
		})
	}
	out.TotalDue = out.ScheduledRemaining.Add(out.ActiveLateFees)
	return out, nil
}

func feeIDs(fees []*latefee.Record) []uint64 {
	ids := make([]uint64, 0, len(fees))
	for _, f := range fees {
		ids = append(ids, f.ID)
	}
	return ids
}
