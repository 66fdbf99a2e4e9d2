package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"repayment-engine/internal/domain/installment"
	"repayment-engine/internal/domain/loan"
	"repayment-engine/internal/domain/schedule"
	"repayment-engine/internal/domain/uow"
	"repayment-engine/pkg/id"
)

var ErrInvalidInput = errors.New("invalid input")

type Usecase struct {
	loans        loan.Repository
	installments installment.Repository
	uow          uow.UnitOfWork
	log          *zap.Logger
	now          func() time.Time
}

// NewUsecase: reads go through the repos, writes through the UoW.
func NewUsecase(loans loan.Repository, installments installment.Repository, tx uow.UnitOfWork, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{loans: loans, installments: installments, uow: tx, log: log, now: time.Now}
}

// WithClock overrides the time source used for defaults and overdue flags.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// Disburse creates the loan and its whole schedule atomically.
func (u *Usecase) Disburse(ctx context.Context, in DisburseInput) (*LoanDTO, error) {
	if in.ProductCode == "" {
		return nil, fmt.Errorf("%w: product code is required", ErrInvalidInput)
	}
	if in.DisbursedAt.IsZero() {
		in.DisbursedAt = u.now()
	}
	plan, err := schedule.Generate(schedule.Terms{
		Principal:   in.Principal,
		MonthlyRate: in.MonthlyRate,
		TermMonths:  in.TermMonths,
		DisbursedAt: in.DisbursedAt,
	})
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	l := &loan.Loan{
		LoanID:             id.NewID32(),
		BorrowerID:         in.BorrowerID,
		ProductCode:        in.ProductCode,
		Principal:          in.Principal,
		MonthlyRate:        in.MonthlyRate,
		TermMonths:         in.TermMonths,
		DisbursedAt:        in.DisbursedAt.UTC(),
		TotalInterest:      plan.TotalInterest,
		TotalAmount:        plan.TotalAmount,
		OutstandingBalance: plan.TotalAmount,
		Status:             loan.StatusActive,
		StatusUpdatedAt:    now,
	}

	var items []*installment.Installment
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		items = installmentsFor(l.ID, plan)
		return r.Installments.CreateBatch(ctx, items)
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("loan disbursed",
		zap.String("loan_id", l.LoanID),
		zap.String("total_amount", l.TotalAmount.StringFixed(2)),
		zap.Int("installments", len(items)),
		zap.Int("days_in_first_period", plan.DaysInFirstPeriod))
	return toDTO(l, items, u.now()), nil
}

func (u *Usecase) Get(ctx context.Context, loanID string) (*LoanDTO, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrNotFound
		}
		return nil, err
	}
	items, err := u.installments.ListByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	return toDTO(l, items, u.now()), nil
}

// RepairSchedule regenerates the schedule of a loan whose persisted
// installment count no longer matches its term. The old set is deleted and
// the full set recreated in one transaction. A schedule that already carries
// payments or late fees is never regenerated.
func (u *Usecase) RepairSchedule(ctx context.Context, loanID string) (*LoanDTO, error) {
	var (
		out   *loan.Loan
		items []*installment.Installment
		had   int64
	)
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *loan.Loan) error {
		n, err := r.Installments.CountByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		if n == int64(l.TermMonths) {
			return loan.ErrScheduleIntact
		}
		touched, err := r.Installments.CountTouchedByLoan(ctx, l.ID)
		if err != nil {
			return err
		}
		if touched > 0 {
			return loan.ErrScheduleInUse
		}
		had = n

		plan, err := schedule.Generate(schedule.Terms{
			Principal:   l.Principal,
			MonthlyRate: l.MonthlyRate,
			TermMonths:  l.TermMonths,
			DisbursedAt: l.DisbursedAt,
		})
		if err != nil {
			return err
		}
		if err := r.Installments.DeleteByLoan(ctx, l.ID); err != nil {
			return err
		}
		items = installmentsFor(l.ID, plan)
		if err := r.Installments.CreateBatch(ctx, items); err != nil {
			return err
		}
		out = l
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loan.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.log.Warn("schedule repaired",
		zap.String("loan_id", loanID),
		zap.Int64("previous_count", had),
		zap.Int("term_months", out.TermMonths))
	return toDTO(out, items, u.now()), nil
}

func installmentsFor(loanID uint64, plan *schedule.Plan) []*installment.Installment {
	items := make([]*installment.Installment, 0, len(plan.Lines))
	for _, line := range plan.Lines {
		items = append(items, &installment.Installment{
			InstallmentID:     id.NewID32(),
			LoanID:            loanID,
			InstallmentNumber: line.Number,
			DueDate:           line.DueDate,
			ScheduledAmount:   line.Amount,
			PrincipalPortion:  line.Principal,
			InterestPortion:   line.Interest,
			PaymentState:      installment.StatePending,
		})
	}
	return items
}
