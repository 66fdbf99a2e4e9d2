// Package schedule computes flat-rate installment schedules.
//
// Interest is flat and non-compounding: total = principal * rate * term.
// The first installment is pro-rated by the civil days between disbursement
// and the first due date using a 30-day month; installments 2..n-1 share the
// remainder evenly, rounded down to the cent, and the last installment absorbs
// every rounding residue so the schedule reconciles to the cent.
package schedule

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"repayment-engine/pkg/civil"
	"repayment-engine/pkg/money"
)

var ErrInvalidTerms = errors.New("principal, monthly rate and term must all be positive")

// daysPerMonth is the fixed day-count convention, not calendar accurate.
var daysPerMonth = decimal.NewFromInt(30)

type Terms struct {
	Principal   decimal.Decimal
	MonthlyRate decimal.Decimal // percent per month, e.g. 1.5
	TermMonths  int
	DisbursedAt time.Time
}

func (t Terms) Validate() error {
	if !t.Principal.IsPositive() || !t.MonthlyRate.IsPositive() || t.TermMonths <= 0 {
		return ErrInvalidTerms
	}
	if t.DisbursedAt.IsZero() {
		return errors.New("disbursement time is required")
	}
	return nil
}

type Line struct {
	Number    int
	DueDate   time.Time
	Amount    decimal.Decimal
	Principal decimal.Decimal
	Interest  decimal.Decimal
}

type Plan struct {
	TotalInterest     decimal.Decimal
	TotalAmount       decimal.Decimal
	DaysInFirstPeriod int
	Lines             []Line
}

// FirstDueDate applies the day-20 cutoff: before the cutoff the first due
// date is the 1st of next month, otherwise the 1st of the month after.
func FirstDueDate(disbursedAt time.Time) time.Time {
	if civil.DayOfMonth(disbursedAt) < civil.CutoffDay {
		return civil.FirstOfMonthEnd(disbursedAt, 1)
	}
	return civil.FirstOfMonthEnd(disbursedAt, 2)
}

// Generate builds the full schedule. It is deterministic for equal Terms.
func Generate(t Terms) (*Plan, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	n := t.TermMonths
	term := decimal.NewFromInt(int64(n))
	rate := money.Percent(t.MonthlyRate)

	rawInterest := t.Principal.Mul(rate).Mul(term)
	totalInterest := money.Round2(rawInterest)
	totalAmount := money.Round2(t.Principal.Add(rawInterest))
	principal := totalAmount.Sub(totalInterest)

	firstDue := FirstDueDate(t.DisbursedAt)
	days := civil.DaysBetween(t.DisbursedAt, firstDue)
	plan := &Plan{
		TotalInterest:     totalInterest,
		TotalAmount:       totalAmount,
		DaysInFirstPeriod: days,
		Lines:             make([]Line, 0, n),
	}

	dueDate := func(k int) time.Time { return civil.FirstOfMonthEnd(firstDue, k-1) }

	if n == 1 {
		plan.Lines = append(plan.Lines, Line{
			Number: 1, DueDate: firstDue,
			Amount: totalAmount, Principal: principal, Interest: totalInterest,
		})
		return plan, nil
	}

	dayCount := decimal.NewFromInt(int64(days))
	dailyRate := rate.Div(daysPerMonth)
	firstInterest := money.Round2(t.Principal.Mul(dailyRate).Mul(dayCount))
	firstPrincipal := money.Round2(t.Principal.Mul(dayCount).Div(term.Mul(daysPerMonth)))
	plan.Lines = append(plan.Lines, Line{
		Number: 1, DueDate: firstDue,
		Amount:    firstPrincipal.Add(firstInterest),
		Principal: firstPrincipal,
		Interest:  firstInterest,
	})

	// base shares round down so the plug never goes negative
	rest := decimal.NewFromInt(int64(n - 1))
	baseInterest := totalInterest.Sub(firstInterest).Div(rest).Truncate(2)
	basePrincipal := principal.Sub(firstPrincipal).Div(rest).Truncate(2)

	scheduledPrincipal, scheduledInterest := firstPrincipal, firstInterest
	for k := 2; k < n; k++ {
		plan.Lines = append(plan.Lines, Line{
			Number: k, DueDate: dueDate(k),
			Amount:    basePrincipal.Add(baseInterest),
			Principal: basePrincipal,
			Interest:  baseInterest,
		})
		scheduledPrincipal = scheduledPrincipal.Add(basePrincipal)
		scheduledInterest = scheduledInterest.Add(baseInterest)
	}

	lastPrincipal := principal.Sub(scheduledPrincipal)
	lastInterest := totalInterest.Sub(scheduledInterest)
	plan.Lines = append(plan.Lines, Line{
		Number: n, DueDate: dueDate(n),
		Amount:    lastPrincipal.Add(lastInterest),
		Principal: lastPrincipal,
		Interest:  lastInterest,
	})
	return plan, nil
}

// Total sums the scheduled amounts of all lines.
func (p *Plan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.Lines {
		total = total.Add(l.Amount)
	}
	return total
}
