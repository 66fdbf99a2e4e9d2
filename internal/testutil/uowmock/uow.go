package uowmock

import (
	"context"
	"errors"

	"repayment-engine/internal/domain/installment"
	"repayment-engine/internal/domain/loan"
	"repayment-engine/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn            func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinLoanTxFn        func(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error
	WithinInstallmentTxFn func(ctx context.Context, id uint64, fn func(r uow.Repos, i *installment.Installment) error) error
}

// Convenience fluent setters
func New() *UoW { return &UoW{} }
func (m *UoW) WithWithinTx(fn func(context.Context, func(uow.Repos) error) error) *UoW {
	m.WithinTxFn = fn
	return m
}
func (m *UoW) WithWithinLoanTx(fn func(context.Context, string, func(uow.Repos, *loan.Loan) error) error) *UoW {
	m.WithinLoanTxFn = fn
	return m
}
func (m *UoW) WithWithinInstallmentTx(fn func(context.Context, uint64, func(uow.Repos, *installment.Installment) error) error) *UoW {
	m.WithinInstallmentTxFn = fn
	return m
}
func (m *UoW) Reset() { *m = UoW{} }

// Passthrough runs every callback directly against repos, the way a real
// transaction would but without commit/rollback. Locked reads go through
// the repos' ForUpdate getters.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		},
		WithinLoanTxFn: func(ctx context.Context, loanID string, fn func(uow.Repos, *loan.Loan) error) error {
			l, err := repos.Loans.GetByLoanIDForUpdate(ctx, loanID)
			if err != nil {
				return err
			}
			return fn(repos, l)
		},
		WithinInstallmentTxFn: func(ctx context.Context, id uint64, fn func(uow.Repos, *installment.Installment) error) error {
			i, err := repos.Installments.GetByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			return fn(repos, i)
		},
	}
}

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	if m.WithinLoanTxFn != nil {
		return m.WithinLoanTxFn(ctx, loanID, fn)
	}
	return errUnimplemented
}
func (m *UoW) WithinInstallmentTx(ctx context.Context, id uint64, fn func(r uow.Repos, i *installment.Installment) error) error {
	if m.WithinInstallmentTxFn != nil {
		return m.WithinInstallmentTxFn(ctx, id, fn)
	}
	return errUnimplemented
}
