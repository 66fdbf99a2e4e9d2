package installmentmock

import (
	"context"
	"time"

	domain "repayment-engine/internal/domain/installment"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateBatchFn                 func(ctx context.Context, items []*domain.Installment) error
	SaveFn                        func(ctx context.Context, i *domain.Installment) error
	GetByInstallmentIDFn          func(ctx context.Context, installmentID string) (*domain.Installment, error)
	GetByIDForUpdateFn            func(ctx context.Context, id uint64) (*domain.Installment, error)
	GetByInstallmentIDForUpdateFn func(ctx context.Context, installmentID string) (*domain.Installment, error)
	ListByLoanFn                  func(ctx context.Context, loanID uint64) ([]*domain.Installment, error)
	CountByLoanFn                 func(ctx context.Context, loanID uint64) (int64, error)
	CountTouchedByLoanFn          func(ctx context.Context, loanID uint64) (int64, error)
	DeleteByLoanFn                func(ctx context.Context, loanID uint64) error
	ListOverdueFn                 func(ctx context.Context, before time.Time) ([]*domain.Installment, error)
}

func (m *Repo) CreateBatch(ctx context.Context, items []*domain.Installment) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, items)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, i *domain.Installment) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, i)
	}
	return nil
}

func (m *Repo) GetByInstallmentID(ctx context.Context, installmentID string) (*domain.Installment, error) {
	if m.GetByInstallmentIDFn != nil {
		return m.GetByInstallmentIDFn(ctx, installmentID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.Installment, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByInstallmentIDForUpdate(ctx context.Context, installmentID string) (*domain.Installment, error) {
	if m.GetByInstallmentIDForUpdateFn != nil {
		return m.GetByInstallmentIDForUpdateFn(ctx, installmentID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByLoan(ctx context.Context, loanID uint64) ([]*domain.Installment, error) {
	if m.ListByLoanFn != nil {
		return m.ListByLoanFn(ctx, loanID)
	}
	return nil, nil
}

func (m *Repo) CountByLoan(ctx context.Context, loanID uint64) (int64, error) {
	if m.CountByLoanFn != nil {
		return m.CountByLoanFn(ctx, loanID)
	}
	return 0, nil
}

func (m *Repo) CountTouchedByLoan(ctx context.Context, loanID uint64) (int64, error) {
	if m.CountTouchedByLoanFn != nil {
		return m.CountTouchedByLoanFn(ctx, loanID)
	}
	return 0, nil
}

func (m *Repo) DeleteByLoan(ctx context.Context, loanID uint64) error {
	if m.DeleteByLoanFn != nil {
		return m.DeleteByLoanFn(ctx, loanID)
	}
	return nil
}

func (m *Repo) ListOverdue(ctx context.Context, before time.Time) ([]*domain.Installment, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx, before)
	}
	return nil, nil
}
