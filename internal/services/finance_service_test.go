package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/memory"
	"fintrack/internal/projection"

	"github.com/shopspring/decimal"
)

type fakePublisher struct {
	msgs []*amqp.ReportRequestMessage
	err  error
}

func (f *fakePublisher) PublishReportRequest(_ context.Context, msg *amqp.ReportRequestMessage) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService(t *testing.T, pub ReportPublisher) (*FinanceService, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := NewFinanceService(store, pub)
	svc.today = func() core.Date { return core.NewDate(2025, 1, 15) }
	return svc, store
}

func seedAccount(t *testing.T, store *memory.Store, userID int64, balance string, asOf core.Date) {
	t.Helper()
	err := store.SaveAccount(context.Background(), core.Account{
		UserID:          userID,
		StartingBalance: dec(balance),
		CurrentBalance:  dec(balance),
		BalanceAsOfDate: asOf,
	})
	if err != nil {
		t.Fatalf("SaveAccount() error = %v", err)
	}
}

func TestFinanceService_DataCreatesAccount(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	data, err := svc.Data(ctx, 7)
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if !data.Account.BalanceAsOfDate.Equal(core.NewDate(2025, 1, 15)) || !data.Account.StartingBalance.IsZero() {
		t.Errorf("unexpected account %+v", data.Account)
	}
	if _, err := store.GetAccount(ctx, 7); err != nil {
		t.Errorf("account not persisted: %v", err)
	}

	// second call reuses the stored account
	seedAccount(t, store, 7, "42", core.NewDate(2025, 1, 1))
	data, err = svc.Data(ctx, 7)
	if err != nil {
		t.Fatalf("Data() error = %v", err)
	}
	if !data.Account.StartingBalance.Equal(dec("42")) {
		t.Errorf("StartingBalance = %v, want 42", data.Account.StartingBalance)
	}
}

func TestFinanceService_MissingAccount(t *testing.T) {
	svc, _ := newTestService(t, &fakePublisher{})
	ctx := context.Background()

	if _, err := svc.Calendar(ctx, 1, projection.Range{}); !errors.Is(err, core.ErrAccountNotFound) {
		t.Errorf("Calendar() error = %v, want ErrAccountNotFound", err)
	}
	if _, err := svc.BalanceProjections(ctx, 1, 3); !errors.Is(err, core.ErrAccountNotFound) {
		t.Errorf("BalanceProjections() error = %v, want ErrAccountNotFound", err)
	}
	if _, err := svc.ExportCSV(ctx, 1, projection.Range{}); !errors.Is(err, core.ErrAccountNotFound) {
		t.Errorf("ExportCSV() error = %v, want ErrAccountNotFound", err)
	}
	if _, err := svc.RequestReport(ctx, 1, projection.Range{}); !errors.Is(err, core.ErrAccountNotFound) {
		t.Errorf("RequestReport() error = %v, want ErrAccountNotFound", err)
	}
}

func TestFinanceService_Calendar(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	seedAccount(t, store, 1, "1000", core.NewDate(2025, 1, 15))

	if _, err := svc.CreateBill(ctx, 1, core.RecurringBill{Name: "Rent", Amount: dec("500"), DueDay: 20}); err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}
	_, err := svc.CreatePaycheck(ctx, 1, core.Paycheck{
		Amount:    dec("200"),
		Date:      core.NewDate(2025, 1, 17),
		Frequency: core.FrequencyOnce,
	})
	if err != nil {
		t.Fatalf("CreatePaycheck() error = %v", err)
	}

	days, err := svc.Calendar(ctx, 1, projection.Range{Start: core.NewDate(2025, 1, 10), End: core.NewDate(2025, 1, 31)})
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	if len(days) != 22 {
		t.Fatalf("len(days) = %d, want 22", len(days))
	}

	want := map[int]string{10: "0", 15: "1000", 17: "1200", 20: "700", 31: "700"}
	for _, d := range days {
		if w, ok := want[d.Date.Day()]; ok && !d.RunningBalance.Equal(dec(w)) {
			t.Errorf("balance on %s = %v, want %s", d.Date, d.RunningBalance, w)
		}
	}
}

func TestFinanceService_MonthlySummary(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()
	seedAccount(t, store, 1, "0", core.NewDate(2025, 1, 1))

	if _, err := svc.MonthlySummary(ctx, 1, core.Date{}, 0); !errors.Is(err, core.ErrInvalidMonths) {
		t.Errorf("MonthlySummary(0) error = %v, want ErrInvalidMonths", err)
	}

	if _, err := svc.CreateBill(ctx, 1, core.RecurringBill{Name: "Phone", Amount: dec("40"), DueDay: 3}); err != nil {
		t.Fatal(err)
	}
	got, err := svc.MonthlySummary(ctx, 1, core.Date{}, 2)
	if err != nil {
		t.Fatalf("MonthlySummary() error = %v", err)
	}
	if len(got) != 2 || got[0].Label != "January 2025" || got[1].Label != "February 2025" {
		t.Fatalf("unexpected months %+v", got)
	}
	if !got[1].EndBalance.Equal(dec("-80")) {
		t.Errorf("EndBalance = %v, want -80", got[1].EndBalance)
	}
}

func TestFinanceService_ExportCSV(t *testing.T) {
	svc, store := newTestService(t, nil)
	seedAccount(t, store, 1, "100", core.NewDate(2025, 1, 15))

	exp, err := svc.ExportCSV(context.Background(), 1, projection.Range{})
	if err != nil {
		t.Fatalf("ExportCSV() error = %v", err)
	}
	if exp.Filename != "balance-report-2025-01-01-to-2027-01-15.csv" {
		t.Errorf("Filename = %q", exp.Filename)
	}
	if !strings.HasPrefix(string(exp.Body), "MONTHLY SUMMARY\r\n") {
		t.Errorf("unexpected body prefix %q", string(exp.Body)[:40])
	}
	if !strings.Contains(string(exp.Body), "DAILY BREAKDOWN\r\n") {
		t.Error("missing daily section")
	}
}

func TestFinanceService_ImportBills(t *testing.T) {
	svc, store := newTestService(t, nil)
	ctx := context.Background()

	input := "Description,Due Date,Monthly Cost,Remaining\n" +
		"Rent,1,1200.00,\n" +
		"Car Loan,01/15,350.00,7000\n" +
		"Broken,abc,10,\n"

	bills, err := svc.ImportBills(ctx, 3, strings.NewReader(input))
	if err != nil {
		t.Fatalf("ImportBills() error = %v", err)
	}
	if len(bills) != 2 {
		t.Fatalf("imported %d bills, want 2", len(bills))
	}
	if bills[1].DueDay != 15 || bills[1].Total == nil || !bills[1].Total.Equal(dec("7000")) {
		t.Errorf("unexpected loan %+v", bills[1])
	}

	stored, _ := store.ListBills(ctx, 3)
	if len(stored) != 2 {
		t.Errorf("stored %d bills, want 2", len(stored))
	}
	if _, err := store.GetAccount(ctx, 3); err != nil {
		t.Errorf("import should create the account: %v", err)
	}
}

func TestFinanceService_RecordValidation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()

	b, err := svc.CreateBill(ctx, 1, core.RecurringBill{Name: "Gym", Amount: dec("30"), DueDay: 31})
	if err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}
	if b.Category != core.DefaultCategory || b.ID == 0 {
		t.Errorf("unexpected bill %+v", b)
	}

	if _, err := svc.CreateBill(ctx, 1, core.RecurringBill{Name: "Bad", Amount: dec("30"), DueDay: 32}); !errors.Is(err, core.ErrInvalidDueDay) {
		t.Errorf("CreateBill() error = %v, want ErrInvalidDueDay", err)
	}

	missing := int64(999)
	_, err = svc.CreateExpense(ctx, 1, core.Expense{
		Name:          "Payment",
		Amount:        dec("10"),
		Date:          core.NewDate(2025, 2, 1),
		RelatedBillID: &missing,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("CreateExpense() error = %v, want ErrNotFound", err)
	}

	_, err = svc.CreateExpense(ctx, 1, core.Expense{
		Name:          "Payment",
		Amount:        dec("10"),
		Date:          core.NewDate(2025, 2, 1),
		RelatedBillID: &b.ID,
	})
	if err != nil {
		t.Errorf("CreateExpense() with valid bill error = %v", err)
	}

	if err := svc.DeleteBill(ctx, 1, 12345); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteBill() error = %v, want ErrNotFound", err)
	}
	if _, err := svc.UpdateAccount(ctx, 1, core.Account{}); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("UpdateAccount() error = %v, want ErrInvalidDate", err)
	}
}

func TestFinanceService_RequestReport(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without publisher", func(t *testing.T) {
		svc, store := newTestService(t, nil)
		seedAccount(t, store, 1, "0", core.NewDate(2025, 1, 1))
		if _, err := svc.RequestReport(ctx, 1, projection.Range{}); !errors.Is(err, ErrReportsDisabled) {
			t.Errorf("RequestReport() error = %v, want ErrReportsDisabled", err)
		}
	})

	t.Run("publishes request", func(t *testing.T) {
		pub := &fakePublisher{}
		svc, store := newTestService(t, pub)
		seedAccount(t, store, 1, "0", core.NewDate(2025, 1, 1))

		start := core.NewDate(2025, 2, 1)
		msg, err := svc.RequestReport(ctx, 1, projection.Range{Start: start})
		if err != nil {
			t.Fatalf("RequestReport() error = %v", err)
		}
		if len(pub.msgs) != 1 || pub.msgs[0] != msg || msg.UserID != 1 || !msg.Start.Equal(start) {
			t.Errorf("unexpected publish %+v", pub.msgs)
		}
	})

	t.Run("publish failure", func(t *testing.T) {
		pub := &fakePublisher{err: amqp.ErrCircuitOpen}
		svc, store := newTestService(t, pub)
		seedAccount(t, store, 1, "0", core.NewDate(2025, 1, 1))
		if _, err := svc.RequestReport(ctx, 1, projection.Range{}); !errors.Is(err, amqp.ErrCircuitOpen) {
			t.Errorf("RequestReport() error = %v, want ErrCircuitOpen", err)
		}
	})
}
