package projection

import (
	"testing"

	"fintrack/internal/core"
)

func budgetInputs() Inputs {
	return Inputs{
		Account: account("1000", core.NewDate(2025, 1, 1)),
		Bills:   []core.RecurringBill{{ID: 1, Name: "Rent", Amount: dec("1200"), DueDay: 5}},
		Paychecks: []core.Paycheck{
			{ID: 1, Amount: dec("2000"), Date: core.NewDate(2024, 12, 1), Frequency: core.FrequencyMonthly, DayOfMonth: 1},
		},
		Expenses: []core.Expense{{ID: 1, Name: "Dinner", Amount: dec("50"), Date: core.NewDate(2025, 1, 20)}},
	}
}

func TestSummarizeMonths(t *testing.T) {
	days := GenerateCalendar(budgetInputs(), Range{End: core.NewDate(2025, 2, 28)})
	got := SummarizeMonths(days)

	want := []core.MonthlySummary{
		{Year: 2025, Month: 1, Label: "January 2025", Income: dec("2000"), Bills: dec("1200"), Expenses: dec("50"), Net: dec("750"), EndBalance: dec("1750")},
		{Year: 2025, Month: 2, Label: "February 2025", Income: dec("2000"), Bills: dec("1200"), Expenses: dec("0"), Net: dec("800"), EndBalance: dec("2550")},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(got))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Year != w.Year || g.Month != w.Month || g.Label != w.Label {
			t.Errorf("month %d: got %d-%d %q, want %d-%d %q", i, g.Year, g.Month, g.Label, w.Year, w.Month, w.Label)
		}
		if !g.Income.Equal(w.Income) || !g.Bills.Equal(w.Bills) || !g.Expenses.Equal(w.Expenses) {
			t.Errorf("%s: got income=%s bills=%s expenses=%s", w.Label, g.Income, g.Bills, g.Expenses)
		}
		if !g.Net.Equal(w.Net) || !g.EndBalance.Equal(w.EndBalance) {
			t.Errorf("%s: got net=%s end=%s, want net=%s end=%s", w.Label, g.Net, g.EndBalance, w.Net, w.EndBalance)
		}
	}
}

func TestGetMonthlySummary(t *testing.T) {
	in := budgetInputs()

	t.Run("matches timeline flows", func(t *testing.T) {
		got := GetMonthlySummary(in.Paychecks, in.Bills, in.Expenses, core.NewDate(2025, 1, 15), 2)
		if len(got) != 2 {
			t.Fatalf("expected 2 months, got %d", len(got))
		}
		if got[0].Label != "January 2025" || got[1].Label != "February 2025" {
			t.Fatalf("unexpected labels %q %q", got[0].Label, got[1].Label)
		}
		// The paycheck is anchored before the window and still recurs.
		if !got[0].Income.Equal(dec("2000")) || !got[1].Income.Equal(dec("2000")) {
			t.Fatalf("income %s/%s, want 2000 each", got[0].Income, got[1].Income)
		}
		if !got[0].Net.Equal(dec("750")) || !got[1].EndBalance.Equal(dec("1550")) {
			t.Fatalf("net %s end %s", got[0].Net, got[1].EndBalance)
		}
	})

	t.Run("crosses year boundary", func(t *testing.T) {
		got := GetMonthlySummary(in.Paychecks, in.Bills, nil, core.NewDate(2025, 11, 3), 3)
		labels := []string{"November 2025", "December 2025", "January 2026"}
		for i, l := range labels {
			if got[i].Label != l {
				t.Errorf("month %d label %q, want %q", i, got[i].Label, l)
			}
		}
	})

	t.Run("stops paid off bills", func(t *testing.T) {
		bills := []core.RecurringBill{{ID: 9, Name: "Phone plan", Amount: dec("50"), DueDay: 1, Total: decPtr("100"), AmountPaid: dec("50")}}
		got := GetMonthlySummary(nil, bills, nil, core.NewDate(2025, 1, 1), 3)
		if !got[0].Bills.Equal(dec("50")) || !got[1].Bills.IsZero() || !got[2].Bills.IsZero() {
			t.Fatalf("bills %s %s %s", got[0].Bills, got[1].Bills, got[2].Bills)
		}
	})

	t.Run("no months", func(t *testing.T) {
		if got := GetMonthlySummary(in.Paychecks, in.Bills, in.Expenses, core.NewDate(2025, 1, 1), 0); got != nil {
			t.Fatalf("expected nil, got %v", got)
		}
	})
}

func TestBalanceProjections(t *testing.T) {
	in := Inputs{
		Account: account("500", core.NewDate(2025, 1, 10)),
		Bills:   []core.RecurringBill{{ID: 1, Name: "Insurance", Amount: dec("100"), DueDay: 15}},
	}

	got := BalanceProjections(GenerateCalendar(in, Range{End: core.NewDate(2025, 1, 31)}))
	if len(got) != 1 {
		t.Fatalf("expected 1 month, got %d", len(got))
	}
	p := got[0]
	if p.Month != "2025-01" {
		t.Fatalf("month %q", p.Month)
	}
	if !p.MinBalance.IsZero() || !p.MaxBalance.Equal(dec("500")) || !p.EndBalance.Equal(dec("400")) {
		t.Fatalf("got min=%s max=%s end=%s, want 0/500/400", p.MinBalance, p.MaxBalance, p.EndBalance)
	}
}

func TestGetBalanceProjections(t *testing.T) {
	in := Inputs{
		Account: account("500", core.NewDate(2025, 1, 10)),
		Bills:   []core.RecurringBill{{ID: 1, Name: "Insurance", Amount: dec("100"), DueDay: 15}},
	}

	got := GetBalanceProjections(in, 2)
	if len(got) != 2 {
		t.Fatalf("expected 2 months, got %d", len(got))
	}
	feb := got[1]
	if feb.Month != "2025-02" || !feb.MinBalance.Equal(dec("300")) || !feb.MaxBalance.Equal(dec("400")) || !feb.EndBalance.Equal(dec("300")) {
		t.Fatalf("february %+v", feb)
	}

	def := GetBalanceProjections(in, 0)
	if len(def) != 25 {
		t.Fatalf("default horizon produced %d months, want 25", len(def))
	}
}

func TestGetBalanceProjections_NegativeMinimum(t *testing.T) {
	in := Inputs{
		Account:   account("100", core.NewDate(2025, 3, 1)),
		Bills:     []core.RecurringBill{{ID: 1, Name: "Insurance", Amount: dec("150"), DueDay: 10}},
		Paychecks: []core.Paycheck{{ID: 1, Amount: dec("350"), Date: core.NewDate(2025, 3, 20), Frequency: core.FrequencyOnce}},
	}

	got := GetBalanceProjections(in, 1)
	if len(got) != 1 {
		t.Fatalf("expected 1 month, got %d", len(got))
	}
	p := got[0]
	if p.Month != "2025-03" {
		t.Fatalf("month %q", p.Month)
	}
	if !p.MinBalance.Equal(dec("-50")) || !p.MaxBalance.Equal(dec("300")) || !p.EndBalance.Equal(dec("300")) {
		t.Fatalf("got min=%s max=%s end=%s, want -50/300/300", p.MinBalance, p.MaxBalance, p.EndBalance)
	}
}
