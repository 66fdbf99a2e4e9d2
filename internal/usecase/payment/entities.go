package payment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"repayment-engine/internal/domain/installment"
	"repayment-engine/internal/domain/latefee"
	"repayment-engine/internal/domain/loan"
)

var (
	ErrInstallmentNotFound = errors.New("installment not found")
	ErrInvalidAmount       = errors.New("payment amount must be positive")
	ErrInstallmentSettled  = errors.New("installment already settled")
)

// PaymentSettled is the wallet's settled-payment event. The allocator does
// not deduplicate: deliver each event exactly once.
type PaymentSettled struct {
	InstallmentID string
	Amount        decimal.Decimal
	SettledAt     time.Time // zero means now
}

type AllocationResult struct {
	Success           bool                     `json:"success"`
	InstallmentID     string                   `json:"installment_id"`
	PaymentState      installment.PaymentState `json:"payment_state"`
	AppliedToSchedule decimal.Decimal          `json:"applied_to_schedule"`
	LateFeesPaid      decimal.Decimal          `json:"late_fees_paid"`
	LateFeesWaived    decimal.Decimal          `json:"late_fees_waived"`
	TotalLateFees     decimal.Decimal          `json:"total_late_fees"`
	RemainingPayment  decimal.Decimal          `json:"remaining_payment"`

	// UnappliedExcess is excess that stopped at a fee it could not fully
	// cover. Fees are never split, so this is returned to the caller too.
	UnappliedExcess    decimal.Decimal `json:"unapplied_excess"`
	LoanStatus         loan.Status     `json:"loan_status"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
}

type FeeLine struct {
	ID              uint64          `json:"id"`
	FeeType         latefee.FeeType `json:"fee_type"`
	CalculationDate string          `json:"calculation_date"`
	DaysOverdue     int             `json:"days_overdue"`
	Amount          decimal.Decimal `json:"amount"`
}

type AmountDue struct {
	InstallmentID      string                   `json:"installment_id"`
	PaymentState       installment.PaymentState `json:"payment_state"`
	IsOverdue          bool                     `json:"is_overdue"`
	DaysOverdue        int                      `json:"days_overdue"`
	ScheduledRemaining decimal.Decimal          `json:"scheduled_remaining"`
	ActiveLateFees     decimal.Decimal          `json:"active_late_fees"`
	TotalDue           decimal.Decimal          `json:"total_due"`
	Breakdown          []FeeLine                `json:"breakdown"`
}
