package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusOverdue Status = "OVERDUE"
	StatusPaid    Status = "PAID"
)

var (
	ErrNotFound       = errors.New("loan not found")
	ErrScheduleIntact = errors.New("schedule already matches term; repair not allowed")
	// ErrScheduleInUse blocks repair once payments or late fees reference the schedule.
	ErrScheduleInUse  = errors.New("schedule has payments or late fees; repair not allowed")
)

// Loan is created at disbursement. Principal, rate and term never change
// afterwards; status and outstanding balance are moved by the late-fee
// calculator and the payment allocator.
type Loan struct {
	ID                 uint64          `gorm:"primaryKey;column:id" json:"-"`
	LoanID             string          `gorm:"column:loan_id;size:32;not null;uniqueIndex:ux_loans_loan_id" json:"loan_id"`
	BorrowerID         string          `gorm:"column:borrower_id;size:32;index:idx_loans_borrower" json:"borrower_id"`
	ProductCode        string          `gorm:"column:product_code;size:32;not null" json:"product_code"`
	Principal          decimal.Decimal `gorm:"column:principal;type:decimal(18,2);not null" json:"principal"`
	MonthlyRate        decimal.Decimal `gorm:"column:monthly_rate;type:decimal(9,4);not null" json:"monthly_rate"`
	TermMonths         int             `gorm:"column:term_months;not null" json:"term_months"`
	DisbursedAt        time.Time       `gorm:"column:disbursed_at;not null" json:"disbursed_at"`
	TotalInterest      decimal.Decimal `gorm:"column:total_interest;type:decimal(18,2);not null" json:"total_interest"`
	TotalAmount        decimal.Decimal `gorm:"column:total_amount;type:decimal(18,2);not null" json:"total_amount"`
	OutstandingBalance decimal.Decimal `gorm:"column:outstanding_balance;type:decimal(18,2);not null" json:"outstanding_balance"`
	Status             Status          `gorm:"column:status;size:16;not null;default:'ACTIVE';index:idx_loans_status" json:"status"`
	StatusUpdatedAt    time.Time       `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt          time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }
