package mysql

import (
	"context"
	"errors"
	"time"

	"repayment-engine/internal/domain/latefee"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LateFeeRepository struct{ db *gorm.DB }

func NewLateFeeRepository(db *gorm.DB) *LateFeeRepository { return &LateFeeRepository{db: db} }

// CreateIfAbsent relies on ux_late_fee_installment_day_type: a conflicting
// insert affects no rows (sqlite ON CONFLICT DO NOTHING, mysql
// ON DUPLICATE KEY UPDATE id=id).
func (r *LateFeeRepository) CreateIfAbsent(ctx context.Context, rec *latefee.Record) (bool, error) {
	rec.CalculationDate = rec.CalculationDate.UTC()
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *LateFeeRepository) Latest(ctx context.Context, installmentID uint64) (*latefee.Record, error) {
	var out latefee.Record
	res := r.db.WithContext(ctx).
		Where("installment_id = ?", installmentID).
		Order("calculation_date DESC, id DESC").
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *LateFeeRepository) ListByInstallment(ctx context.Context, installmentID uint64) ([]*latefee.Record, error) {
	var out []*latefee.Record
	res := r.db.WithContext(ctx).
		Where("installment_id = ?", installmentID).
		Order("calculation_date ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LateFeeRepository) ListActive(ctx context.Context, installmentID uint64) ([]*latefee.Record, error) {
	var out []*latefee.Record
	res := r.db.WithContext(ctx).
		Where("installment_id = ? AND status = ?", installmentID, latefee.StatusActive).
		Order("calculation_date ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LateFeeRepository) Settle(ctx context.Context, ids []uint64, to latefee.Status, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if to == latefee.StatusActive {
		return 0, errors.New("late fee records cannot be re-activated")
	}
	res := r.db.WithContext(ctx).
		Model(&latefee.Record{}).
		Where("id IN ? AND status = ?", ids, latefee.StatusActive).
		Updates(map[string]any{"status": to, "settled_at": at.UTC()})
	return res.RowsAffected, res.Error
}

type PolicyRepository struct{ db *gorm.DB }

func NewPolicyRepository(db *gorm.DB) *PolicyRepository { return &PolicyRepository{db: db} }

func (r *PolicyRepository) GetByProductCode(ctx context.Context, productCode string) (*latefee.Policy, error) {
	var out latefee.Policy
	res := r.db.WithContext(ctx).Where("product_code = ?", productCode).First(&out)
	return &out, res.Error
}

func (r *PolicyRepository) Upsert(ctx context.Context, p *latefee.Policy) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"daily_rate", "fixed_amount", "fixed_frequency_days", "updated_at"}),
		}).
		Create(p).Error
}
