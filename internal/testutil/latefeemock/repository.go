package latefeemock

import (
	"context"
	"time"

	domain "repayment-engine/internal/domain/latefee"
)

var (
	_ domain.Repository       = (*Repo)(nil)
	_ domain.PolicyRepository = (*PolicyRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateIfAbsentFn    func(ctx context.Context, r *domain.Record) (bool, error)
	LatestFn            func(ctx context.Context, installmentID uint64) (*domain.Record, error)
	ListByInstallmentFn func(ctx context.Context, installmentID uint64) ([]*domain.Record, error)
	ListActiveFn        func(ctx context.Context, installmentID uint64) ([]*domain.Record, error)
	SettleFn            func(ctx context.Context, ids []uint64, to domain.Status, at time.Time) (int64, error)
}

func (m *Repo) CreateIfAbsent(ctx context.Context, r *domain.Record) (bool, error) {
	if m.CreateIfAbsentFn != nil {
		return m.CreateIfAbsentFn(ctx, r)
	}
	return true, nil
}

func (m *Repo) Latest(ctx context.Context, installmentID uint64) (*domain.Record, error) {
	if m.LatestFn != nil {
		return m.LatestFn(ctx, installmentID)
	}
	return nil, nil
}

func (m *Repo) ListByInstallment(ctx context.Context, installmentID uint64) ([]*domain.Record, error) {
	if m.ListByInstallmentFn != nil {
		return m.ListByInstallmentFn(ctx, installmentID)
	}
	return nil, nil
}

func (m *Repo) ListActive(ctx context.Context, installmentID uint64) ([]*domain.Record, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx, installmentID)
	}
	return nil, nil
}

func (m *Repo) Settle(ctx context.Context, ids []uint64, to domain.Status, at time.Time) (int64, error) {
	if m.SettleFn != nil {
		return m.SettleFn(ctx, ids, to, at)
	}
	return int64(len(ids)), nil
}

// PolicyRepo is a function-backed mock that satisfies domain.PolicyRepository.
type PolicyRepo struct {
	GetByProductCodeFn func(ctx context.Context, productCode string) (*domain.Policy, error)
	UpsertFn           func(ctx context.Context, p *domain.Policy) error
}

func (m *PolicyRepo) GetByProductCode(ctx context.Context, productCode string) (*domain.Policy, error) {
	if m.GetByProductCodeFn != nil {
		return m.GetByProductCodeFn(ctx, productCode)
	}
	return nil, context.Canceled
}

func (m *PolicyRepo) Upsert(ctx context.Context, p *domain.Policy) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, p)
	}
	return nil
}
