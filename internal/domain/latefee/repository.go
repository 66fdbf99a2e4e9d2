package latefee

import (
	"context"
	"time"
)

type Repository interface {
	// CreateIfAbsent inserts r unless a record with the same
	// (installment, calculation date, fee type) exists. inserted=false means
	// the storage constraint rejected it as already charged.
	CreateIfAbsent(ctx context.Context, r *Record) (inserted bool, err error)
	// Latest returns the most recent record for the installment, or nil.
	Latest(ctx context.Context, installmentID uint64) (*Record, error)
	ListByInstallment(ctx context.Context, installmentID uint64) ([]*Record, error)
	// ListActive returns ACTIVE records ordered oldest first.
	ListActive(ctx context.Context, installmentID uint64) ([]*Record, error)
	// Settle moves ACTIVE records to a terminal status. Records that are no
	// longer ACTIVE are left untouched; the number changed is returned.
	Settle(ctx context.Context, ids []uint64, to Status, at time.Time) (int64, error)
}

type PolicyRepository interface {
	GetByProductCode(ctx context.Context, productCode string) (*Policy, error)
	Upsert(ctx context.Context, p *Policy) error
}
