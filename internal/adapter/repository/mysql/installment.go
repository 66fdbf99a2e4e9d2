package mysql

import (
	"context"
	"time"

	"repayment-engine/internal/domain/installment"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InstallmentRepository struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

func (r *InstallmentRepository) CreateBatch(ctx context.Context, items []*installment.Installment) error {
	if len(items) == 0 {
		return nil
	}
	for _, it := range items {
		normalizeInstallmentTimes(it)
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *InstallmentRepository) Save(ctx context.Context, i *installment.Installment) error {
	normalizeInstallmentTimes(i)
	return r.db.WithContext(ctx).Save(i).Error
}

func (r *InstallmentRepository) GetByInstallmentID(ctx context.Context, installmentID string) (*installment.Installment, error) {
	var out installment.Installment
	res := r.db.WithContext(ctx).Where("installment_id = ?", installmentID).First(&out)
	return &out, res.Error
}

func (r *InstallmentRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*installment.Installment, error) {
	var out installment.Installment
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&out, id)
	return &out, res.Error
}

func (r *InstallmentRepository) GetByInstallmentIDForUpdate(ctx context.Context, installmentID string) (*installment.Installment, error) {
	var out installment.Installment
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("installment_id = ?", installmentID).
		First(&out)
	return &out, res.Error
}

func (r *InstallmentRepository) ListByLoan(ctx context.Context, loanID uint64) ([]*installment.Installment, error) {
	var out []*installment.Installment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("installment_number ASC").
		Find(&out)
	return out, res.Error
}

func (r *InstallmentRepository) CountByLoan(ctx context.Context, loanID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&installment.Installment{}).Where("loan_id = ?", loanID).Count(&n)
	return n, res.Error
}

func (r *InstallmentRepository) CountTouchedByLoan(ctx context.Context, loanID uint64) (int64, error) {
	var n int64
	res := r.db.WithContext(ctx).Model(&installment.Installment{}).
		Where("loan_id = ?", loanID).
		Where("(payment_state <> ? OR EXISTS (SELECT 1 FROM late_fee_records f WHERE f.installment_id = installments.id))",
			installment.StatePending).
		Count(&n)
	return n, res.Error
}

func (r *InstallmentRepository) DeleteByLoan(ctx context.Context, loanID uint64) error {
	return r.db.WithContext(ctx).Where("loan_id = ?", loanID).Delete(&installment.Installment{}).Error
}

func (r *InstallmentRepository) ListOverdue(ctx context.Context, before time.Time) ([]*installment.Installment, error) {
	var out []*installment.Installment
	res := r.db.WithContext(ctx).
		Where("payment_state IN ? AND due_date < ?", installment.OpenStates, before.UTC()).
		Order("due_date ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func normalizeInstallmentTimes(i *installment.Installment) {
	i.DueDate = i.DueDate.UTC()
	if i.PaidAt != nil {
		t := i.PaidAt.UTC()
		i.PaidAt = &t
	}
}
