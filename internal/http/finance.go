package http

import (
	"context"
	"io"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/projection"
	"fintrack/internal/services"
)

// Finance is the service surface the API exposes.
type Finance interface {
	Data(ctx context.Context, userID int64) (services.FinanceData, error)
	Account(ctx context.Context, userID int64) (core.Account, error)
	UpdateAccount(ctx context.Context, userID int64, acct core.Account) (core.Account, error)

	ListBills(ctx context.Context, userID int64) ([]core.RecurringBill, error)
	GetBill(ctx context.Context, userID, id int64) (core.RecurringBill, error)
	CreateBill(ctx context.Context, userID int64, b core.RecurringBill) (core.RecurringBill, error)
	UpdateBill(ctx context.Context, userID int64, b core.RecurringBill) (core.RecurringBill, error)
	DeleteBill(ctx context.Context, userID, id int64) error

	ListPaychecks(ctx context.Context, userID int64) ([]core.Paycheck, error)
	GetPaycheck(ctx context.Context, userID, id int64) (core.Paycheck, error)
	CreatePaycheck(ctx context.Context, userID int64, p core.Paycheck) (core.Paycheck, error)
	UpdatePaycheck(ctx context.Context, userID int64, p core.Paycheck) (core.Paycheck, error)
	DeletePaycheck(ctx context.Context, userID, id int64) error

	ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error)
	GetExpense(ctx context.Context, userID, id int64) (core.Expense, error)
	CreateExpense(ctx context.Context, userID int64, e core.Expense) (core.Expense, error)
	UpdateExpense(ctx context.Context, userID int64, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, userID, id int64) error

	CategoryChoices() services.CategoryChoices
	ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
	GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
	CreateCategory(ctx context.Context, userID int64, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, userID int64, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, userID, id int64) error

	Calendar(ctx context.Context, userID int64, r projection.Range) ([]projection.DailyRecord, error)
	MonthlySummary(ctx context.Context, userID int64, start core.Date, months int) ([]core.MonthlySummary, error)
	BalanceProjections(ctx context.Context, userID int64, months int) ([]core.BalanceProjection, error)
	ExportCSV(ctx context.Context, userID int64, r projection.Range) (services.Export, error)
	ImportBills(ctx context.Context, userID int64, r io.Reader) ([]core.RecurringBill, error)
	RequestReport(ctx context.Context, userID int64, r projection.Range) (*amqp.ReportRequestMessage, error)
}

var _ Finance = (*services.FinanceService)(nil)
