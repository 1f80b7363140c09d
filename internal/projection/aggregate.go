package projection

import (
	"fmt"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// SummarizeMonths folds an ordered run of daily records into one summary per
// calendar month, oldest first. EndBalance is the running balance of the last
// record seen for the month.
func SummarizeMonths(days []DailyRecord) []core.MonthlySummary {
	var out []core.MonthlySummary
	for _, day := range days {
		n := len(out)
		if n == 0 || out[n-1].Year != day.Date.Year() || out[n-1].Month != day.Date.Month() {
			out = append(out, core.MonthlySummary{
				Year:     day.Date.Year(),
				Month:    day.Date.Month(),
				Label:    monthLabel(day.Date),
				Income:   decimal.Zero,
				Bills:    decimal.Zero,
				Expenses: decimal.Zero,
				Net:      decimal.Zero,
			})
			n++
		}
		s := &out[n-1]
		s.Income = s.Income.Add(day.Income())
		s.Bills = s.Bills.Add(day.BillTotal())
		s.Expenses = s.Expenses.Add(day.ExpenseTotal())
		s.Net = s.Income.Sub(s.Bills).Sub(s.Expenses)
		s.EndBalance = day.RunningBalance
	}
	return out
}

// GetMonthlySummary summarises monthsCount whole months starting with the
// month containing start. It runs the calendar timeline from a zero balance
// anchored on the first day of that month, seeding tracked bills from their
// stored AmountPaid. EndBalance is the cumulative net since the first month.
//
// The flows match the account calendar only when that month starts at the
// account anchor. From any other month the payoff state differs, and days
// before the anchor contribute flows that the calendar shows as placeholders.
func GetMonthlySummary(paychecks []core.Paycheck, bills []core.RecurringBill, expenses []core.Expense, start core.Date, monthsCount int) []core.MonthlySummary {
	if monthsCount <= 0 {
		return nil
	}
	first := start.FirstOfMonth()
	last := monthEnd(first, monthsCount)
	in := Inputs{
		Account:   core.Account{StartingBalance: decimal.Zero, BalanceAsOfDate: first},
		Bills:     bills,
		Paychecks: paychecks,
		Expenses:  expenses,
	}
	return SummarizeMonths(GenerateCalendar(in, Range{Start: first, End: last}))
}

// BalanceProjections reports the minimum, maximum and closing running balance
// of every month present in days. Placeholder days before the anchor count
// with their zero balance.
func BalanceProjections(days []DailyRecord) []core.BalanceProjection {
	var out []core.BalanceProjection
	for _, day := range days {
		key := fmt.Sprintf("%04d-%02d", day.Date.Year(), day.Date.Month())
		bal := day.RunningBalance
		n := len(out)
		if n == 0 || out[n-1].Month != key {
			out = append(out, core.BalanceProjection{Month: key, MinBalance: bal, MaxBalance: bal, EndBalance: bal})
			continue
		}
		p := &out[n-1]
		p.MinBalance = decimal.Min(p.MinBalance, bal)
		p.MaxBalance = decimal.Max(p.MaxBalance, bal)
		p.EndBalance = bal
	}
	return out
}

// GetBalanceProjections projects from the first day of the anchor month
// through the end of the months-th month. A non-positive months uses the
// default two-year horizon.
func GetBalanceProjections(in Inputs, months int) []core.BalanceProjection {
	r := Range{}
	if months > 0 {
		r.Start = in.Account.BalanceAsOfDate.FirstOfMonth()
		r.End = monthEnd(r.Start, months)
	}
	return BalanceProjections(GenerateCalendar(in, r))
}

// monthEnd returns the last day of the n-th month counting first's month as 1.
func monthEnd(first core.Date, n int) core.Date {
	return core.NewDate(first.Year(), first.Month()+n, 0)
}

func monthLabel(d core.Date) string {
	return time.Month(d.Month()).String() + " " + fmt.Sprint(d.Year())
}
