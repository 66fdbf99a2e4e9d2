package installment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentState tracks how much of the scheduled obligation has been settled.
// It never encodes lateness; see IsOverdue.
type PaymentState string

const (
	StatePending   PaymentState = "PENDING"
	StatePartial   PaymentState = "PARTIAL"
	StatePaid      PaymentState = "PAID"
	StatePrepaid   PaymentState = "PREPAID"
	StateCompleted PaymentState = "COMPLETED"
)

var ErrNotFound = errors.New("installment not found")

// OpenStates are the states that still owe part of the scheduled amount.
var OpenStates = []PaymentState{StatePending, StatePartial}

// Terminal reports whether no further payment can be applied.
func (s PaymentState) Terminal() bool {
	switch s {
	case StatePaid, StatePrepaid, StateCompleted:
		return true
	}
	return false
}

type Installment struct {
	ID                uint64          `gorm:"primaryKey;column:id" json:"-"`
	InstallmentID     string          `gorm:"column:installment_id;size:32;not null;uniqueIndex:ux_installments_public_id" json:"installment_id"`
	LoanID            uint64          `gorm:"column:loan_id;not null;uniqueIndex:ux_installments_loan_number,priority:1" json:"-"`
	InstallmentNumber int             `gorm:"column:installment_number;not null;uniqueIndex:ux_installments_loan_number,priority:2" json:"installment_number"`
	DueDate           time.Time       `gorm:"column:due_date;not null;index:idx_installments_state_due,priority:2" json:"due_date"`
	ScheduledAmount   decimal.Decimal `gorm:"column:scheduled_amount;type:decimal(18,2);not null" json:"scheduled_amount"`
	PrincipalPortion  decimal.Decimal `gorm:"column:principal_portion;type:decimal(18,2);not null" json:"principal_portion"`
	InterestPortion   decimal.Decimal `gorm:"column:interest_portion;type:decimal(18,2);not null" json:"interest_portion"`
	PaymentState      PaymentState    `gorm:"column:payment_state;size:16;not null;default:'PENDING';index:idx_installments_state_due,priority:1" json:"payment_state"`
	ActualAmountPaid  decimal.Decimal `gorm:"column:actual_amount_paid;type:decimal(18,2);not null;default:0" json:"actual_amount_paid"`
	PaidAt            *time.Time      `gorm:"column:paid_at" json:"paid_at,omitempty"`
	DaysOverdue       int             `gorm:"column:days_overdue;not null;default:0" json:"days_overdue"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Installment) TableName() string { return "installments" }

// Remaining is the part of the scheduled amount not yet paid, never negative.
func (i *Installment) Remaining() decimal.Decimal {
	r := i.ScheduledAmount.Sub(i.ActualAmountPaid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// IsOverdue is the derived lateness predicate: due before the start of the
// lender's current day and not yet settled.
func (i *Installment) IsOverdue(todayStart time.Time) bool {
	return !i.PaymentState.Terminal() && i.DueDate.Before(todayStart)
}
