package processingmock

import (
	"context"
	"time"

	domain "repayment-engine/internal/domain/processing"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                  func(ctx context.Context, l *domain.Log) error
	LatestFn                  func(ctx context.Context) (*domain.Log, error)
	LatestFailedFn            func(ctx context.Context) (*domain.Log, error)
	CountSinceFn              func(ctx context.Context, since time.Time) (int64, error)
	AutomaticSucceededSinceFn func(ctx context.Context, since time.Time) (bool, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Log) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Latest(ctx context.Context) (*domain.Log, error) {
	if m.LatestFn != nil {
		return m.LatestFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) LatestFailed(ctx context.Context) (*domain.Log, error) {
	if m.LatestFailedFn != nil {
		return m.LatestFailedFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	if m.CountSinceFn != nil {
		return m.CountSinceFn(ctx, since)
	}
	return 0, nil
}

func (m *Repo) AutomaticSucceededSince(ctx context.Context, since time.Time) (bool, error) {
	if m.AutomaticSucceededSinceFn != nil {
		return m.AutomaticSucceededSinceFn(ctx, since)
	}
	return false, nil
}
