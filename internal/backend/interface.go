package backend

import (
	"context"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// Ports implemented by the record stores. Every method is scoped to one user;
// soft-deleted rows are invisible to all of them.
type (
	AccountStore interface {
		// GetAccount returns core.ErrAccountNotFound when the user has none.
		GetAccount(ctx context.Context, userID int64) (core.Account, error)
		SaveAccount(ctx context.Context, acct core.Account) error
		// RollAccount replaces prev with next and stores the settled AmountPaid
		// of each listed bill, all or nothing. It returns core.ErrConflict when
		// the stored account no longer matches prev.
		RollAccount(ctx context.Context, prev, next core.Account, paid map[int64]decimal.Decimal) error
	}

	BillStore interface {
		ListBills(ctx context.Context, userID int64) ([]core.RecurringBill, error)
		GetBill(ctx context.Context, userID, id int64) (core.RecurringBill, error)
		CreateBills(ctx context.Context, userID int64, bills []core.RecurringBill) ([]core.RecurringBill, error)
		UpdateBill(ctx context.Context, userID int64, b core.RecurringBill) error
		DeleteBill(ctx context.Context, userID, id int64) error
	}

	PaycheckStore interface {
		ListPaychecks(ctx context.Context, userID int64) ([]core.Paycheck, error)
		GetPaycheck(ctx context.Context, userID, id int64) (core.Paycheck, error)
		CreatePaycheck(ctx context.Context, userID int64, p core.Paycheck) (core.Paycheck, error)
		UpdatePaycheck(ctx context.Context, userID int64, p core.Paycheck) error
		DeletePaycheck(ctx context.Context, userID, id int64) error
	}

	ExpenseStore interface {
		ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error)
		GetExpense(ctx context.Context, userID, id int64) (core.Expense, error)
		CreateExpense(ctx context.Context, userID int64, e core.Expense) (core.Expense, error)
		UpdateExpense(ctx context.Context, userID int64, e core.Expense) error
		DeleteExpense(ctx context.Context, userID, id int64) error
	}

	// CategoryStore keeps category names unique per user among live rows;
	// a clash is reported as core.ErrDuplicateCategory.
	CategoryStore interface {
		ListCategories(ctx context.Context, userID int64) ([]core.Category, error)
		GetCategory(ctx context.Context, userID, id int64) (core.Category, error)
		CreateCategory(ctx context.Context, userID int64, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, userID int64, c core.Category) error
		DeleteCategory(ctx context.Context, userID, id int64) error
	}

	// UserLister enumerates users that own an account.
	UserLister interface {
		ListUserIDs(ctx context.Context) ([]int64, error)
	}
)

// Backend represents a unified backend interface that provides all necessary operations
type Backend interface {
	AccountStore
	BillStore
	PaycheckStore
	ExpenseStore
	CategoryStore
	UserLister
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific
	DataDirectory string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
