package uow

import (
	"context"

	"repayment-engine/internal/domain/installment"
	"repayment-engine/internal/domain/latefee"
	"repayment-engine/internal/domain/loan"
	"repayment-engine/internal/domain/processing"
)

// Repos are bound to the surrounding transaction.
type Repos struct {
	Loans          loan.Repository
	Installments   installment.Repository
	LateFees       latefee.Repository
	Policies       latefee.PolicyRepository
	ProcessingLogs processing.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
	// lock the installment row first; fee accrual and payment allocation on
	// the same installment serialize on this lock
	WithinInstallmentTx(ctx context.Context, id uint64, fn func(r Repos, i *installment.Installment) error) error
}
