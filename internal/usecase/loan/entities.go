package loan

import (
	"time"

	"github.com/shopspring/decimal"

	"repayment-engine/internal/domain/installment"
	"repayment-engine/internal/domain/loan"
	"repayment-engine/pkg/civil"
)

type DisburseInput struct {
	BorrowerID  string
	ProductCode string
	Principal   decimal.Decimal
	MonthlyRate decimal.Decimal // percent, e.g. 1.5
	TermMonths  int
	DisbursedAt time.Time // zero means now
}

type InstallmentDTO struct {
	InstallmentID    string                   `json:"installment_id"`
	Number           int                      `json:"installment_number"`
	DueDate          time.Time                `json:"due_date"`
	DueDateLocal     string                   `json:"due_date_local"`
	ScheduledAmount  decimal.Decimal          `json:"scheduled_amount"`
	PrincipalPortion decimal.Decimal          `json:"principal_portion"`
	InterestPortion  decimal.Decimal          `json:"interest_portion"`
	PaymentState     installment.PaymentState `json:"payment_state"`
	ActualAmountPaid decimal.Decimal          `json:"actual_amount_paid"`
	PaidAt           *time.Time               `json:"paid_at,omitempty"`
	DaysOverdue      int                      `json:"days_overdue"`
	IsOverdue        bool                     `json:"is_overdue"`
}

type LoanDTO struct {
	LoanID             string           `json:"loan_id"`
	BorrowerID         string           `json:"borrower_id"`
	ProductCode        string           `json:"product_code"`
	Principal          decimal.Decimal  `json:"principal"`
	MonthlyRate        decimal.Decimal  `json:"monthly_rate"`
	TermMonths         int              `json:"term_months"`
	DisbursedAt        time.Time        `json:"disbursed_at"`
	TotalInterest      decimal.Decimal  `json:"total_interest"`
	TotalAmount        decimal.Decimal  `json:"total_amount"`
	OutstandingBalance decimal.Decimal  `json:"outstanding_balance"`
	Status             loan.Status      `json:"status"`
	Installments       []InstallmentDTO `json:"installments"`
}

func toDTO(l *loan.Loan, items []*installment.Installment, now time.Time) *LoanDTO {
	todayStart := civil.StartOfDay(now)
	dto := &LoanDTO{
		LoanID:             l.LoanID,
		BorrowerID:         l.BorrowerID,
		ProductCode:        l.ProductCode,
		Principal:          l.Principal,
		MonthlyRate:        l.MonthlyRate,
		TermMonths:         l.TermMonths,
		DisbursedAt:        l.DisbursedAt,
		TotalInterest:      l.TotalInterest,
		TotalAmount:        l.TotalAmount,
		OutstandingBalance: l.OutstandingBalance,
		Status:             l.Status,
		Installments:       make([]InstallmentDTO, 0, len(items)),
	}
	for _, it := range items {
		dto.Installments = append(dto.Installments, InstallmentDTO{
			InstallmentID:    it.InstallmentID,
			Number:           it.InstallmentNumber,
			DueDate:          it.DueDate,
			DueDateLocal:     civil.DateString(it.DueDate),
			ScheduledAmount:  it.ScheduledAmount,
			PrincipalPortion: it.PrincipalPortion,
			InterestPortion:  it.InterestPortion,
			PaymentState:     it.PaymentState,
			ActualAmountPaid: it.ActualAmountPaid,
			PaidAt:           it.PaidAt,
			DaysOverdue:      it.DaysOverdue,
			IsOverdue:        it.IsOverdue(todayStart),
		})
	}
	return dto
}
