package latefee

import (
	"time"

	"github.com/shopspring/decimal"
)

type FeeType string

const (
	FeeTypeDaily FeeType = "DAILY"
	FeeTypeFixed FeeType = "FIXED"
)

// Status of a fee record. ACTIVE is the only non-terminal state.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusPaid   Status = "PAID"
	StatusWaived Status = "WAIVED"
)

// Record is one immutable fee accrual. The unique index on
// (installment_id, calculation_date, fee_type) is what keeps repeated or
// concurrent calculator runs from charging twice on the same day.
type Record struct {
	ID              uint64          `gorm:"primaryKey;column:id" json:"id"`
	InstallmentID   uint64          `gorm:"column:installment_id;not null;uniqueIndex:ux_late_fee_installment_day_type,priority:1;index:idx_late_fee_installment_status,priority:1" json:"-"`
	CalculationDate time.Time       `gorm:"column:calculation_date;not null;uniqueIndex:ux_late_fee_installment_day_type,priority:2" json:"calculation_date"`
	FeeType         FeeType         `gorm:"column:fee_type;size:8;not null;uniqueIndex:ux_late_fee_installment_day_type,priority:3" json:"fee_type"`
	DaysOverdue     int             `gorm:"column:days_overdue;not null" json:"days_overdue"`
	Rate            decimal.Decimal `gorm:"column:rate;type:decimal(9,4);not null;default:0" json:"rate"`
	BaseAmount      decimal.Decimal `gorm:"column:base_amount;type:decimal(18,2);not null;default:0" json:"base_amount"`
	FeeAmount       decimal.Decimal `gorm:"column:fee_amount;type:decimal(18,2);not null" json:"fee_amount"`
	CumulativeFees  decimal.Decimal `gorm:"column:cumulative_fees;type:decimal(18,2);not null" json:"cumulative_fees"`
	Status          Status          `gorm:"column:status;size:8;not null;default:'ACTIVE';index:idx_late_fee_installment_status,priority:2" json:"status"`
	SettledAt       *time.Time      `gorm:"column:settled_at" json:"settled_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Record) TableName() string { return "late_fee_records" }

// Policy is the per-product late-fee configuration. Either fee type may be
// switched off: DailyRate <= 0 disables the daily fee, FixedAmount <= 0 or
// FixedFrequencyDays <= 0 disables the fixed fee.
type Policy struct {
	ID                 uint64          `gorm:"primaryKey;column:id" json:"-"`
	ProductCode        string          `gorm:"column:product_code;size:32;not null;uniqueIndex:ux_late_fee_policies_product" json:"product_code"`
	DailyRate          decimal.Decimal `gorm:"column:daily_rate;type:decimal(9,4);not null;default:0" json:"daily_rate"`
	FixedAmount        decimal.Decimal `gorm:"column:fixed_amount;type:decimal(18,2);not null;default:0" json:"fixed_amount"`
	FixedFrequencyDays int             `gorm:"column:fixed_frequency_days;not null;default:0" json:"fixed_frequency_days"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Policy) TableName() string { return "late_fee_policies" }

func (p Policy) DailyEnabled() bool { return p.DailyRate.IsPositive() }

func (p Policy) FixedEnabled() bool {
	return p.FixedAmount.IsPositive() && p.FixedFrequencyDays > 0
}

// FixedDue reports whether the fixed fee falls due at this overdue day count.
func (p Policy) FixedDue(daysOverdue int) bool {
	return p.FixedEnabled() && daysOverdue > 0 && daysOverdue%p.FixedFrequencyDays == 0
}
