package date

import (
	"fmt"
	"time"
)

// Range represents a range of dates, both boundaries included.
type Range struct{ From, To Date }

// NewRange returns the period p containing d.
func NewRange(d Date, p Period) Range {
	return Range{From: d.StartOf(p), To: d.EndOf(p)}
}

// BudgetMonth returns the budget month containing d, for months that start on startDay.
//
// A start day past the end of a month starts that month on its last day, so a budget month
// starting on the 31st starts on February 28 (or 29).
func BudgetMonth(d Date, startDay int) Range {
	if startDay <= 1 {
		return NewRange(d, Monthly)
	}
	start := monthStart(d.y, d.m, startDay)
	if d.Before(start) {
		start = monthStart(d.y, d.m-1, startDay)
	}
	next := monthStart(start.y, start.m+1, startDay)
	return Range{From: start, To: next.Add(-1)}
}

// monthStart returns the startDay of the given month, clamped to the month's length.
func monthStart(y int, m time.Month, startDay int) Date {
	first := New(y, m, 1)
	last := first.EndOf(Monthly).Day()
	return New(first.y, first.m, min(startDay, last))
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days in the range.
func (r Range) Days() int { return int(r.To.time().Sub(r.From.time()).Hours()/24) + 1 }

// Period returns the period of this range if it's a standard one.
func (r Range) Period() (p Period, ok bool) {
	switch {
	case r.From == r.To:
		return Daily, true
	case r.From.Weekday() == time.Monday && r.From.EndOf(Weekly) == r.To:
		return Weekly, true
	case r.From.Day() == 1 && r.From.EndOf(Monthly) == r.To:
		return Monthly, true
	case r.From.StartOf(Quarterly) == r.From && r.From.EndOf(Quarterly) == r.To:
		return Quarterly, true
	case r.From.StartOf(Yearly) == r.From && r.From.EndOf(Yearly) == r.To:
		return Yearly, true
	default:
		return Daily, false
	}
}

// Identifier names the range: "2025-03", "2025-W37" or "2025-Q3" for standard periods, and
// "from_to" otherwise.
func (r Range) Identifier() string {
	p, ok := r.Period()
	if !ok {
		return fmt.Sprintf("%s_%s", r.From, r.To)
	}

	switch p {
	case Daily:
		return r.From.String()
	case Weekly:
		_, week := r.From.ISOWeek()
		return fmt.Sprintf("%d-W%02d", r.From.Year(), week)
	case Monthly:
		return r.From.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case Yearly:
		return r.From.Format("2006")
	default:
		panic("unknown period")
	}
}

// String returns "from..to".
func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
