package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repayment-engine/pkg/civil"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func localDate(y int, m time.Month, d, hh int) time.Time {
	return time.Date(y, m, d, hh, 0, 0, 0, civil.Lender)
}

// localFirst is local 23:59:59 on the 1st, as stored.
func localFirst(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 23, 59, 59, 0, civil.Lender).UTC()
}

func TestGenerate_EndToEndExample(t *testing.T) {
	plan, err := Generate(Terms{
		Principal:   dec("10000"),
		MonthlyRate: dec("1.5"),
		TermMonths:  6,
		DisbursedAt: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, plan.TotalInterest.Equal(dec("900")), "total interest %s", plan.TotalInterest)
	assert.True(t, plan.TotalAmount.Equal(dec("10900")), "total amount %s", plan.TotalAmount)
	assert.Equal(t, 17, plan.DaysInFirstPeriod)
	require.Len(t, plan.Lines, 6)
	assert.Equal(t, localFirst(2025, time.February), plan.Lines[0].DueDate)
	assert.Equal(t, "10900.00", plan.Total().StringFixed(2))

	first := plan.Lines[0]
	assert.True(t, first.Interest.Equal(dec("85")), "first interest %s", first.Interest)
	assert.True(t, first.Principal.Equal(dec("944.44")), "first principal %s", first.Principal)
	assert.True(t, first.Amount.Equal(dec("1029.44")), "first amount %s", first.Amount)

	for _, l := range plan.Lines[1:5] {
		assert.True(t, l.Amount.Equal(dec("1974.11")), "base #%d amount %s", l.Number, l.Amount)
		assert.True(t, l.Interest.Equal(dec("163")), "base #%d interest %s", l.Number, l.Interest)
	}
	last := plan.Lines[5]
	assert.True(t, last.Principal.Equal(dec("1811.12")), "plug principal %s", last.Principal)
	assert.True(t, last.Interest.Equal(dec("163")), "plug interest %s", last.Interest)
	assert.True(t, last.Amount.Equal(dec("1974.12")), "plug amount %s", last.Amount)
}

func TestFirstDueDate_Cutoff(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want time.Time
	}{
		{"day 19", localDate(2025, 3, 19, 12), localFirst(2025, time.April)},
		{"day 20", localDate(2025, 3, 20, 9), localFirst(2025, time.May)},
		{"day 25", localDate(2025, 3, 25, 9), localFirst(2025, time.May)},
		{"dec 25 rolls the year", localDate(2025, 12, 25, 9), localFirst(2026, time.February)},
		{"dec 5", localDate(2025, 12, 5, 9), localFirst(2026, time.January)},
		{"nov 30", localDate(2025, 11, 30, 9), localFirst(2026, time.January)},
		// 16:30 UTC on the 19th is already the 20th in the lender zone.
		{"utc 19th late evening", time.Date(2025, 3, 19, 16, 30, 0, 0, time.UTC), localFirst(2025, time.May)},
		{"utc 19th afternoon", time.Date(2025, 3, 19, 15, 30, 0, 0, time.UTC), localFirst(2025, time.April)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstDueDate(tt.at))
		})
	}
}

func TestGenerate_DueDatesOnTheFirst(t *testing.T) {
	plan, err := Generate(Terms{
		Principal: dec("5000"), MonthlyRate: dec("2"), TermMonths: 14,
		DisbursedAt: localDate(2025, 11, 22, 10),
	})
	require.NoError(t, err)
	want := localFirst(2026, time.January)
	for i, l := range plan.Lines {
		assert.Equal(t, i+1, l.Number)
		assert.Equal(t, want, l.DueDate, "installment %d", l.Number)
		want = civil.FirstOfMonthEnd(want, 1)
	}
	assert.Equal(t, localFirst(2027, time.February), plan.Lines[13].DueDate)
}

func TestGenerate_ReconcilesToTheCent(t *testing.T) {
	principals := []string{"10000", "1234.56", "999999.99", "250", "7777.77"}
	rates := []string{"1.5", "0.99", "2.75", "3", "0.3333"}
	terms := []int{1, 2, 3, 5, 6, 7, 12, 24, 36}
	dates := []time.Time{
		localDate(2025, 1, 1, 0),
		localDate(2025, 1, 31, 23),
		localDate(2024, 2, 19, 8),
		localDate(2024, 2, 29, 8),
		localDate(2025, 12, 20, 8),
	}
	for _, p := range principals {
		for _, r := range rates {
			for _, n := range terms {
				for _, at := range dates {
					name := fmt.Sprintf("%s@%s%%x%d/%s", p, r, n, at.Format("2006-01-02"))
					plan, err := Generate(Terms{Principal: dec(p), MonthlyRate: dec(r), TermMonths: n, DisbursedAt: at})
					require.NoError(t, err, name)

					want := dec(p).Add(dec(p).Mul(dec(r)).Div(decimal.NewFromInt(100)).Mul(decimal.NewFromInt(int64(n)))).Round(2)
					require.True(t, plan.Total().Equal(want), "%s: total %s want %s", name, plan.Total(), want)
					require.Len(t, plan.Lines, n, name)

					principalSum, interestSum := decimal.Zero, decimal.Zero
					for _, l := range plan.Lines {
						require.True(t, l.Amount.Equal(l.Principal.Add(l.Interest)), "%s #%d", name, l.Number)
						require.False(t, l.Amount.IsNegative(), "%s #%d negative", name, l.Number)
						require.True(t, l.Amount.Equal(l.Amount.Round(2)), "%s #%d not cents", name, l.Number)
						principalSum = principalSum.Add(l.Principal)
						interestSum = interestSum.Add(l.Interest)
					}
					require.True(t, interestSum.Equal(plan.TotalInterest), name)
					require.True(t, principalSum.Add(interestSum).Equal(plan.TotalAmount), name)
				}
			}
		}
	}
}

func TestGenerate_SmallSharesKeepPlugNonNegative(t *testing.T) {
	cases := []struct {
		principal, rate string
		term            int
	}{
		{"5", "1.5", 19},
		{"50", "0.01", 5},
		{"1", "0.5", 36},
		{"3.33", "2.9", 24},
	}
	dates := []time.Time{
		localDate(2025, 1, 1, 9),
		localDate(2025, 1, 15, 9),
		localDate(2025, 1, 19, 9),
		localDate(2025, 1, 20, 9),
		localDate(2025, 2, 28, 9),
	}
	for _, c := range cases {
		for _, at := range dates {
			name := fmt.Sprintf("%s@%s%%x%d/%s", c.principal, c.rate, c.term, at.Format("2006-01-02"))
			plan, err := Generate(Terms{Principal: dec(c.principal), MonthlyRate: dec(c.rate), TermMonths: c.term, DisbursedAt: at})
			require.NoError(t, err, name)
			for _, l := range plan.Lines {
				require.False(t, l.Principal.IsNegative(), "%s #%d principal %s", name, l.Number, l.Principal)
				require.False(t, l.Interest.IsNegative(), "%s #%d interest %s", name, l.Number, l.Interest)
				require.False(t, l.Amount.IsNegative(), "%s #%d amount %s", name, l.Number, l.Amount)
			}
			require.True(t, plan.Total().Equal(plan.TotalAmount), name)
		}
	}
}

func TestGenerate_SingleAndTwoInstallments(t *testing.T) {
	one, err := Generate(Terms{Principal: dec("1000"), MonthlyRate: dec("2"), TermMonths: 1, DisbursedAt: localDate(2025, 5, 2, 9)})
	require.NoError(t, err)
	require.Len(t, one.Lines, 1)
	assert.True(t, one.Lines[0].Amount.Equal(dec("1020")))
	assert.True(t, one.Lines[0].Principal.Equal(dec("1000")))

	two, err := Generate(Terms{Principal: dec("1000"), MonthlyRate: dec("2"), TermMonths: 2, DisbursedAt: localDate(2025, 5, 2, 9)})
	require.NoError(t, err)
	require.Len(t, two.Lines, 2)
	// 30 days May 2 -> Jun 1: interest 1000*0.02/30*30 = 20, principal 1000*30/60 = 500
	assert.Equal(t, 30, two.DaysInFirstPeriod)
	assert.True(t, two.Lines[0].Amount.Equal(dec("520")), "first %s", two.Lines[0].Amount)
	assert.True(t, two.Lines[1].Amount.Equal(dec("520")), "last %s", two.Lines[1].Amount)
}

func TestGenerate_InvalidTerms(t *testing.T) {
	at := localDate(2025, 1, 10, 9)
	cases := []Terms{
		{Principal: dec("0"), MonthlyRate: dec("1"), TermMonths: 6, DisbursedAt: at},
		{Principal: dec("-5"), MonthlyRate: dec("1"), TermMonths: 6, DisbursedAt: at},
		{Principal: dec("100"), MonthlyRate: dec("0"), TermMonths: 6, DisbursedAt: at},
		{Principal: dec("100"), MonthlyRate: dec("-1"), TermMonths: 6, DisbursedAt: at},
		{Principal: dec("100"), MonthlyRate: dec("1"), TermMonths: 0, DisbursedAt: at},
	}
	for _, c := range cases {
		_, err := Generate(c)
		assert.ErrorIs(t, err, ErrInvalidTerms)
	}
	_, err := Generate(Terms{Principal: dec("100"), MonthlyRate: dec("1"), TermMonths: 3})
	assert.Error(t, err)
}
