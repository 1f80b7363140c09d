// Package projection expands recurring bills, paychecks and one-off expenses
// into a dense daily balance timeline and folds that timeline into monthly
// views.
//
// Everything here is a pure function of its inputs: no I/O, no shared state,
// no caching. Callers may run projections concurrently.
package projection

import (
	"fintrack/internal/core"
)

// PaycheckOccursOn reports whether p pays out on d.
func PaycheckOccursOn(p core.Paycheck, d core.Date) bool {
	anchor := p.Date
	if d.Before(anchor) {
		return false
	}

	switch p.Frequency {
	case core.FrequencyOnce:
		return d.Equal(anchor)

	case core.FrequencyWeekly:
		return d.WeekdayIndex() == targetWeekday(p)

	case core.FrequencyBiweekly:
		days := d.DaysSince(anchor)
		if p.DayOfWeek != nil {
			return d.WeekdayIndex() == *p.DayOfWeek && (days/7)%2 == 0
		}
		return days%14 == 0

	case core.FrequencyBimonthly:
		first, second := bimonthlyDays(p)
		return d.Day() == clampDay(first, d) || d.Day() == clampDay(second, d)

	case core.FrequencyMonthly:
		target := p.DayOfMonth
		if target == 0 {
			target = anchor.Day()
		}
		return d.Day() == clampDay(target, d)

	case core.FrequencyUnknown:
		return d.Equal(anchor)
	}
	return d.Equal(anchor)
}

// BillDueOn reports whether b is charged on d. A due day past the end of the
// month falls on the month's last day.
func BillDueOn(b core.RecurringBill, d core.Date) bool {
	if b.DueDay == d.Day() {
		return true
	}
	last := d.DaysInMonth()
	return b.DueDay > last && d.Day() == last
}

func targetWeekday(p core.Paycheck) int {
	if p.DayOfWeek != nil {
		return *p.DayOfWeek
	}
	return p.Date.WeekdayIndex()
}

// bimonthlyDays returns the two unclamped paydays of a semi-monthly paycheck.
func bimonthlyDays(p core.Paycheck) (int, int) {
	first := p.DayOfMonth
	if first == 0 {
		first = p.Date.Day()
	}
	second := p.SecondDayOfMonth
	if second == 0 {
		if first <= 15 {
			second = first + 15
		} else {
			second = first - 15
		}
	}
	return first, second
}

func clampDay(day int, d core.Date) int {
	return min(day, d.DaysInMonth())
}
