package projection

import (
	"maps"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// PayoffTracker accumulates amount paid per tracked bill for the duration of
// one projection run. Only bills with a Total are tracked; the zero value of
// an untracked bill is never materialised.
type PayoffTracker struct {
	totals map[int64]decimal.Decimal
	paid   map[int64]decimal.Decimal
}

// NewPayoffTracker seeds the tracker from each tracked bill's persisted
// AmountPaid.
func NewPayoffTracker(bills []core.RecurringBill) *PayoffTracker {
	t := &PayoffTracker{
		totals: make(map[int64]decimal.Decimal),
		paid:   make(map[int64]decimal.Decimal),
	}
	for _, b := range bills {
		if !b.Tracked() {
			continue
		}
		t.totals[b.ID] = *b.Total
		t.paid[b.ID] = b.AmountPaid
	}
	return t
}

// RecordBill adds one occurrence of b to its running total. Overshoot past
// Total is kept as is.
func (t *PayoffTracker) RecordBill(b core.RecurringBill) {
	if _, ok := t.paid[b.ID]; ok {
		t.paid[b.ID] = t.paid[b.ID].Add(b.Amount)
	}
}

// RecordExpense credits a linked expense against its bill. Expenses linked to
// untracked or unknown bills are ignored.
func (t *PayoffTracker) RecordExpense(e core.Expense) {
	if e.RelatedBillID == nil {
		return
	}
	id := *e.RelatedBillID
	if _, ok := t.paid[id]; ok {
		t.paid[id] = t.paid[id].Add(e.Amount)
	}
}

// IsPaidOff reports whether a tracked bill has reached its total.
func (t *PayoffTracker) IsPaidOff(b core.RecurringBill) bool {
	total, ok := t.totals[b.ID]
	if !ok {
		return false
	}
	return t.paid[b.ID].GreaterThanOrEqual(total)
}

// Paid returns the running amount for id and whether id is tracked.
func (t *PayoffTracker) Paid(id int64) (decimal.Decimal, bool) {
	v, ok := t.paid[id]
	return v, ok
}

// Snapshot copies the current amounts.
func (t *PayoffTracker) Snapshot() map[int64]decimal.Decimal {
	return maps.Clone(t.paid)
}
