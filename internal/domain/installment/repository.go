package installment

import (
	"context"
	"time"
)

type Repository interface {
	// CreateBatch inserts a whole schedule in one statement.
	CreateBatch(ctx context.Context, items []*Installment) error
	Save(ctx context.Context, i *Installment) error
	GetByInstallmentID(ctx context.Context, installmentID string) (*Installment, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*Installment, error)
	GetByInstallmentIDForUpdate(ctx context.Context, installmentID string) (*Installment, error)
	ListByLoan(ctx context.Context, loanID uint64) ([]*Installment, error)
	CountByLoan(ctx context.Context, loanID uint64) (int64, error)
	// CountTouchedByLoan counts installments that left PENDING or have late
	// fee records.
	CountTouchedByLoan(ctx context.Context, loanID uint64) (int64, error)
	DeleteByLoan(ctx context.Context, loanID uint64) error
	// ListOverdue returns open installments due strictly before `before`.
	ListOverdue(ctx context.Context, before time.Time) ([]*Installment, error)
}
