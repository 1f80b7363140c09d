package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "fintrack.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestAccountRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetAccount(ctx, 1); !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	acct := core.Account{
		UserID:          1,
		StartingBalance: decimal.RequireFromString("1234.56"),
		CurrentBalance:  decimal.RequireFromString("1000"),
		BalanceAsOfDate: core.NewDate(2025, 2, 14),
	}
	if err := repo.SaveAccount(ctx, acct); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	acct.StartingBalance = decimal.RequireFromString("99.01")
	if err := repo.SaveAccount(ctx, acct); err != nil {
		t.Fatalf("SaveAccount upsert: %v", err)
	}

	got, err := repo.GetAccount(ctx, 1)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if !got.StartingBalance.Equal(acct.StartingBalance) || !got.BalanceAsOfDate.Equal(acct.BalanceAsOfDate) {
		t.Fatalf("got %+v, want %+v", got, acct)
	}

	ids, err := repo.ListUserIDs(ctx)
	if err != nil || len(ids) != 1 || ids[0] != 1 {
		t.Fatalf("ListUserIDs = %v, %v", ids, err)
	}
}

func TestBillsCRUD(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	total := decimal.RequireFromString("500")

	created, err := repo.CreateBills(ctx, 7, []core.RecurringBill{
		{Name: "Rent", Amount: decimal.RequireFromString("1200"), DueDay: 1, Category: "Housing"},
		{Name: "Loan", Amount: decimal.RequireFromString("50.25"), DueDay: 31, Total: &total, Category: "Debt"},
	})
	if err != nil {
		t.Fatalf("CreateBills: %v", err)
	}
	if len(created) != 2 || created[0].ID == 0 || created[1].ID == 0 {
		t.Fatalf("unexpected ids: %+v", created)
	}

	loan, err := repo.GetBill(ctx, 7, created[1].ID)
	if err != nil {
		t.Fatalf("GetBill: %v", err)
	}
	if loan.Total == nil || !loan.Total.Equal(total) || !loan.AmountPaid.IsZero() {
		t.Fatalf("unexpected loan %+v", loan)
	}

	if _, err := repo.GetBill(ctx, 8, created[1].ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("other user read bill: %v", err)
	}

	loan.Name = "Car loan"
	loan.Total = nil
	if err := repo.UpdateBill(ctx, 7, loan); err != nil {
		t.Fatalf("UpdateBill: %v", err)
	}

	if err := repo.DeleteBill(ctx, 7, created[0].ID); err != nil {
		t.Fatalf("DeleteBill: %v", err)
	}
	if err := repo.DeleteBill(ctx, 7, created[0].ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}

	bills, err := repo.ListBills(ctx, 7)
	if err != nil {
		t.Fatalf("ListBills: %v", err)
	}
	if len(bills) != 1 || bills[0].Name != "Car loan" || bills[0].Total != nil {
		t.Fatalf("unexpected bills %+v", bills)
	}
}

func TestPaychecksAndExpenses(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	dow := 4
	billID := int64(3)

	p, err := repo.CreatePaycheck(ctx, 1, core.Paycheck{
		Amount:    decimal.RequireFromString("2100"),
		Date:      core.NewDate(2025, 1, 3),
		Frequency: core.FrequencyBiweekly,
		DayOfWeek: &dow,
		Category:  "Salary",
	})
	if err != nil {
		t.Fatalf("CreatePaycheck: %v", err)
	}
	if _, err := repo.CreatePaycheck(ctx, 1, core.Paycheck{
		Amount:     decimal.RequireFromString("300"),
		Date:       core.NewDate(2025, 1, 1),
		Frequency:  core.FrequencyBimonthly,
		DayOfMonth: 1,
		Category:   "Side",
	}); err != nil {
		t.Fatalf("CreatePaycheck: %v", err)
	}

	paychecks, err := repo.ListPaychecks(ctx, 1)
	if err != nil {
		t.Fatalf("ListPaychecks: %v", err)
	}
	if len(paychecks) != 2 {
		t.Fatalf("expected 2 paychecks, got %d", len(paychecks))
	}
	if got := paychecks[0]; got.ID != p.ID || got.Frequency != core.FrequencyBiweekly || got.DayOfWeek == nil || *got.DayOfWeek != 4 {
		t.Fatalf("unexpected paycheck %+v", got)
	}
	if got := paychecks[1]; got.DayOfWeek != nil || got.DayOfMonth != 1 || got.SecondDayOfMonth != 0 {
		t.Fatalf("unexpected paycheck %+v", got)
	}

	e, err := repo.CreateExpense(ctx, 1, core.Expense{
		Name:          "Extra payment",
		Amount:        decimal.RequireFromString("80"),
		Date:          core.NewDate(2025, 1, 5),
		Category:      "Debt",
		RelatedBillID: &billID,
	})
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if got, err := repo.GetExpense(ctx, 1, e.ID); err != nil || got.Name != "Extra payment" || got.RelatedBillID == nil {
		t.Fatalf("GetExpense = %+v, %v", got, err)
	}
	if got, err := repo.GetPaycheck(ctx, 1, p.ID); err != nil || got.Frequency != core.FrequencyBiweekly {
		t.Fatalf("GetPaycheck = %+v, %v", got, err)
	}
	if _, err := repo.GetPaycheck(ctx, 2, p.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user GetPaycheck: %v", err)
	}
	e.Amount = decimal.RequireFromString("85")
	if err := repo.UpdateExpense(ctx, 1, e); err != nil {
		t.Fatalf("UpdateExpense: %v", err)
	}
	expenses, err := repo.ListExpenses(ctx, 1)
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 1 || !expenses[0].Amount.Equal(decimal.RequireFromString("85")) || expenses[0].RelatedBillID == nil || *expenses[0].RelatedBillID != 3 {
		t.Fatalf("unexpected expenses %+v", expenses)
	}
	if err := repo.DeleteExpense(ctx, 1, e.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if err := repo.DeletePaycheck(ctx, 1, p.ID); err != nil {
		t.Fatalf("DeletePaycheck: %v", err)
	}
	if got, _ := repo.ListExpenses(ctx, 1); len(got) != 0 {
		t.Fatalf("soft deleted expense still listed")
	}
	if _, err := repo.GetExpense(ctx, 1, e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("GetExpense after delete: %v", err)
	}
}

func TestCategories(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	food, err := repo.CreateCategory(ctx, 1, core.Category{Name: "Food", Type: core.CategoryExpense, Color: "red-500"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := repo.CreateCategory(ctx, 1, core.Category{Name: "Food", Type: core.CategoryGeneral, Color: "gray-500"}); !errors.Is(err, core.ErrDuplicateCategory) {
		t.Fatalf("expected ErrDuplicateCategory, got %v", err)
	}
	if _, err := repo.CreateCategory(ctx, 2, core.Category{Name: "Food", Type: core.CategoryGeneral, Color: "gray-500"}); err != nil {
		t.Fatalf("other user: %v", err)
	}
	pay, err := repo.CreateCategory(ctx, 1, core.Category{Name: "Pay", Type: core.CategoryIncome, Color: "green-500"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	pay.Name = "Food"
	if err := repo.UpdateCategory(ctx, 1, pay); !errors.Is(err, core.ErrDuplicateCategory) {
		t.Fatalf("rename clash: expected ErrDuplicateCategory, got %v", err)
	}
	food.Color = "blue-500"
	if err := repo.UpdateCategory(ctx, 1, food); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	got, err := repo.GetCategory(ctx, 1, food.ID)
	if err != nil || got.Color != "blue-500" || got.Type != core.CategoryExpense {
		t.Fatalf("GetCategory = %+v, %v", got, err)
	}
	if _, err := repo.GetCategory(ctx, 2, food.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user get: %v", err)
	}

	if err := repo.DeleteCategory(ctx, 1, food.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, err := repo.CreateCategory(ctx, 1, core.Category{Name: "Food", Type: core.CategoryBill, Color: "rose-500"}); err != nil {
		t.Fatalf("reuse deleted name: %v", err)
	}
	cats, err := repo.ListCategories(ctx, 1)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 2 || cats[0].Name != "Food" || cats[0].Type != core.CategoryBill || cats[1].Name != "Pay" {
		t.Fatalf("ListCategories = %+v", cats)
	}
}

func TestRollAccount(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	total := decimal.RequireFromString("500")

	prev := core.Account{
		UserID:          3,
		StartingBalance: decimal.RequireFromString("800.25"),
		CurrentBalance:  decimal.RequireFromString("800.25"),
		BalanceAsOfDate: core.NewDate(2025, 3, 1),
	}
	if err := repo.SaveAccount(ctx, prev); err != nil {
		t.Fatalf("SaveAccount: %v", err)
	}
	bills, err := repo.CreateBills(ctx, 3, []core.RecurringBill{
		{Name: "Loan", Amount: decimal.RequireFromString("50.25"), DueDay: 2, Total: &total},
	})
	if err != nil {
		t.Fatalf("CreateBills: %v", err)
	}
	loanID := bills[0].ID
	next := prev
	next.StartingBalance = decimal.RequireFromString("750")
	next.CurrentBalance = next.StartingBalance
	next.BalanceAsOfDate = core.NewDate(2025, 3, 10)

	// a deleted bill fails the whole roll
	if err := repo.RollAccount(ctx, prev, next, map[int64]decimal.Decimal{loanID: decimal.RequireFromString("50.25"), 999: decimal.NewFromInt(1)}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if got, _ := repo.GetBill(ctx, 3, loanID); !got.AmountPaid.IsZero() {
		t.Fatalf("bill written by failed roll: %+v", got)
	}

	if err := repo.RollAccount(ctx, prev, next, map[int64]decimal.Decimal{loanID: decimal.RequireFromString("50.25")}); err != nil {
		t.Fatalf("RollAccount: %v", err)
	}
	acct, err := repo.GetAccount(ctx, 3)
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if !acct.StartingBalance.Equal(next.StartingBalance) || !acct.BalanceAsOfDate.Equal(next.BalanceAsOfDate) {
		t.Fatalf("account = %+v", acct)
	}
	if got, _ := repo.GetBill(ctx, 3, loanID); !got.AmountPaid.Equal(decimal.RequireFromString("50.25")) {
		t.Fatalf("loan = %+v", got)
	}

	// prev is now stale
	if err := repo.RollAccount(ctx, prev, next, nil); !errors.Is(err, core.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if err := repo.RollAccount(ctx, core.Account{UserID: 4}, next, nil); !errors.Is(err, core.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestMigrationVersion(t *testing.T) {
	_, path := newTestRepo(t)
	v, dirty, err := MigrationVersion(path)
	if err != nil {
		t.Fatalf("MigrationVersion: %v", err)
	}
	if v != 2 || dirty {
		t.Fatalf("version=%d dirty=%v, want 2 clean", v, dirty)
	}
}
