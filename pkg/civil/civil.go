// Package civil holds the lender's calendar rules. Every "today", due date
// and day count is computed in one fixed zone (UTC+8) regardless of the host.
package civil

import "time"

// Lender is the lender's civil timezone.
var Lender = time.FixedZone("UTC+8", 8*60*60)

// CutoffDay: disbursements on or after this day of month skip a month.
const CutoffDay = 20

// In converts t to the lender zone.
func In(t time.Time) time.Time { return t.In(Lender) }

// DayOfMonth returns the lender-local day of month of t.
func DayOfMonth(t time.Time) int { return In(t).Day() }

// StartOfDay returns local 00:00 of t's lender-local day, as a UTC instant.
func StartOfDay(t time.Time) time.Time {
	y, m, d := In(t).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Lender).UTC()
}

// EndOfDay returns local 23:59:59 of t's lender-local day, as a UTC instant.
func EndOfDay(t time.Time) time.Time {
	y, m, d := In(t).Date()
	return time.Date(y, m, d, 23, 59, 59, 0, Lender).UTC()
}

// FirstOfMonthEnd returns local 23:59:59 on the 1st of the month that is
// `offset` months after t's lender-local month, as a UTC instant.
func FirstOfMonthEnd(t time.Time, offset int) time.Time {
	y, m, _ := In(t).Date()
	idx := int(m) - 1 + offset
	y += idx / 12
	idx %= 12
	if idx < 0 {
		idx += 12
		y--
	}
	return time.Date(y, time.Month(idx+1), 1, 23, 59, 59, 0, Lender).UTC()
}

// DaysBetween counts whole lender-local calendar days from a to b
// (negative when b is before a). Clock time inside the day is ignored.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := In(a).Date()
	by, bm, bd := In(b).Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// DateString formats t's lender-local date as YYYY-MM-DD.
func DateString(t time.Time) string { return In(t).Format("2006-01-02") }
