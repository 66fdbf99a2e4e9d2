package mysql

import (
	"context"
	"time"

	"repayment-engine/internal/domain/processing"

	"gorm.io/gorm"
)

type ProcessingLogRepository struct{ db *gorm.DB }

func NewProcessingLogRepository(db *gorm.DB) *ProcessingLogRepository {
	return &ProcessingLogRepository{db: db}
}

func (r *ProcessingLogRepository) Create(ctx context.Context, l *processing.Log) error {
	l.ProcessedAt = l.ProcessedAt.UTC()
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *ProcessingLogRepository) Latest(ctx context.Context) (*processing.Log, error) {
	var out processing.Log
	res := r.db.WithContext(ctx).Order("processed_at DESC, id DESC").First(&out)
	return &out, res.Error
}

func (r *ProcessingLogRepository) LatestFailed(ctx context.Context) (*processing.Log, error) {
	var out processing.Log
	res := r.db.WithContext(ctx).
		Where("status = ?", processing.StatusFailed).
		Order("processed_at DESC, id DESC").
		First(&out)
	return &out, res.Error
}

func (r *ProcessingLogRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&processing.Log{}).
		Where("processed_at >= ?", since.UTC()).
		Count(&n)
	return n, res.Error
}

func (r *ProcessingLogRepository) AutomaticSucceededSince(ctx context.Context, since time.Time) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&processing.Log{}).
		Where("status = ? AND is_manual_run = ? AND processed_at >= ?", processing.StatusSuccess, false, since.UTC()).
		Count(&n)
	return n > 0, res.Error
}
