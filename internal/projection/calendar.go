package projection

import (
	"iter"
	"slices"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// DefaultHorizonDays is how far past the anchor an open-ended projection runs.
const DefaultHorizonDays = 365 * 2

// Inputs is everything one projection run reads.
type Inputs struct {
	Account   core.Account
	Bills     []core.RecurringBill
	Paychecks []core.Paycheck
	Expenses  []core.Expense
}

// Range bounds a projection. Zero dates fall back to the first day of the
// anchor month and anchor + DefaultHorizonDays respectively.
type Range struct {
	Start core.Date
	End   core.Date
}

// Resolve fills in defaults relative to the account anchor.
func (r Range) Resolve(acct core.Account) (core.Date, core.Date) {
	start, end := r.Start, r.End
	if start.IsZero() {
		start = acct.BalanceAsOfDate.FirstOfMonth()
	}
	if end.IsZero() {
		end = acct.BalanceAsOfDate.AddDays(DefaultHorizonDays)
	}
	return start, end
}

// BillOccurrence is a bill charged on a given day. AmountPaid is the tracked
// running total after that day's updates, nil for untracked bills.
type BillOccurrence struct {
	Bill       core.RecurringBill `json:"bill"`
	AmountPaid *decimal.Decimal   `json:"amountPaid,omitempty"`
}

// DailyRecord is one day of the projection.
type DailyRecord struct {
	Date           core.Date        `json:"date"`
	Bills          []BillOccurrence `json:"bills"`
	Paychecks      []core.Paycheck  `json:"paychecks"`
	Expenses       []core.Expense   `json:"expenses"`
	RunningBalance decimal.Decimal  `json:"runningBalance"`
}

func (r DailyRecord) Income() decimal.Decimal {
	return core.SumAmounts(amounts(r.Paychecks, func(p core.Paycheck) decimal.Decimal { return p.Amount })...)
}

func (r DailyRecord) BillTotal() decimal.Decimal {
	return core.SumAmounts(amounts(r.Bills, func(b BillOccurrence) decimal.Decimal { return b.Bill.Amount })...)
}

func (r DailyRecord) ExpenseTotal() decimal.Decimal {
	return core.SumAmounts(amounts(r.Expenses, func(e core.Expense) decimal.Decimal { return e.Amount })...)
}

func amounts[T any](items []T, amount func(T) decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(items))
	for i, v := range items {
		out[i] = amount(v)
	}
	return out
}

// Net is income minus bills minus expenses for the day.
func (r DailyRecord) Net() decimal.Decimal {
	return r.Income().Sub(r.BillTotal()).Sub(r.ExpenseTotal())
}

// Placeholder reports whether the record precedes the account anchor.
func (r DailyRecord) Placeholder(acct core.Account) bool {
	return r.Date.Before(acct.BalanceAsOfDate)
}

// timeline is the mutable state of a single run.
type timeline struct {
	in       Inputs
	tracker  *PayoffTracker
	expenses map[string][]core.Expense
	balance  decimal.Decimal
}

func newTimeline(in Inputs) *timeline {
	byDay := make(map[string][]core.Expense)
	for _, e := range in.Expenses {
		key := e.Date.String()
		byDay[key] = append(byDay[key], e)
	}
	return &timeline{
		in:       in,
		tracker:  NewPayoffTracker(in.Bills),
		expenses: byDay,
		balance:  in.Account.StartingBalance,
	}
}

// advance applies day d and returns its record. Days before the anchor do not
// touch any state.
func (t *timeline) advance(d core.Date) DailyRecord {
	if d.Before(t.in.Account.BalanceAsOfDate) {
		return DailyRecord{Date: d, RunningBalance: decimal.Zero}
	}

	// Paid-off status is evaluated against the state at the start of the day.
	var due []core.RecurringBill
	for _, b := range t.in.Bills {
		if t.tracker.IsPaidOff(b) {
			continue
		}
		if BillDueOn(b, d) {
			due = append(due, b)
		}
	}

	var paychecks []core.Paycheck
	for _, p := range t.in.Paychecks {
		if PaycheckOccursOn(p, d) {
			paychecks = append(paychecks, p)
		}
	}

	expenses := slices.Clone(t.expenses[d.String()])

	for _, p := range paychecks {
		t.balance = t.balance.Add(p.Amount)
	}
	for _, b := range due {
		t.balance = t.balance.Sub(b.Amount)
		t.tracker.RecordBill(b)
	}
	for _, e := range expenses {
		t.balance = t.balance.Sub(e.Amount)
		t.tracker.RecordExpense(e)
	}

	var occurrences []BillOccurrence
	for _, b := range due {
		occ := BillOccurrence{Bill: b}
		if paid, ok := t.tracker.Paid(b.ID); ok {
			occ.AmountPaid = &paid
		}
		occurrences = append(occurrences, occ)
	}

	return DailyRecord{
		Date:           d,
		Bills:          occurrences,
		Paychecks:      paychecks,
		Expenses:       expenses,
		RunningBalance: t.balance,
	}
}

// Days yields one record per calendar day in the resolved range, oldest
// first. The sequence is lazy and may be ranged over more than once; each
// iteration starts from fresh state. An inverted range yields nothing.
func Days(in Inputs, r Range) iter.Seq[DailyRecord] {
	start, end := r.Resolve(in.Account)
	return func(yield func(DailyRecord) bool) {
		t := newTimeline(in)
		for d := start; !d.After(end); d = d.AddDays(1) {
			if !yield(t.advance(d)) {
				return
			}
		}
	}
}

// GenerateCalendar materialises Days.
func GenerateCalendar(in Inputs, r Range) []DailyRecord {
	return slices.Collect(Days(in, r))
}

// Settlement is the engine state after running through a given day.
type Settlement struct {
	Balance    decimal.Decimal
	AmountPaid map[int64]decimal.Decimal
}

// Settle runs the timeline from the account anchor through the given day and
// returns the resulting balance and tracked amounts. When through precedes the
// anchor nothing is applied.
func Settle(in Inputs, through core.Date) Settlement {
	t := newTimeline(in)
	for d := in.Account.BalanceAsOfDate; !d.After(through); d = d.AddDays(1) {
		t.advance(d)
	}
	return Settlement{Balance: t.balance, AmountPaid: t.tracker.Snapshot()}
}
