// Package memory is a process-local record store used for development and
// tests. Data is lost on restart.
package memory

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/csvio"

	"github.com/shopspring/decimal"
)

// SeedUserID owns the bills loaded by NewFromFiles.
const SeedUserID int64 = 1

type Store struct {
	mu        sync.Mutex
	nextID    int64
	accounts  map[int64]core.Account
	bills     map[int64][]core.RecurringBill
	paychecks map[int64][]core.Paycheck
	expenses  map[int64][]core.Expense
	cats      map[int64][]core.Category
}

func New() *Store {
	return &Store{
		accounts:  make(map[int64]core.Account),
		bills:     make(map[int64][]core.RecurringBill),
		paychecks: make(map[int64][]core.Paycheck),
		expenses:  make(map[int64][]core.Expense),
		cats:      make(map[int64][]core.Category),
	}
}

// NewFromFiles seeds the store from base/seed_bills.csv when present. The
// file uses the same layout as a bill import.
func NewFromFiles(base string) *Store {
	s := New()
	f, err := os.Open(filepath.Join(base, "seed_bills.csv"))
	if err != nil {
		return s
	}
	defer f.Close()

	res, err := csvio.ImportBills(f)
	if err != nil {
		slog.Warn("Failed to read seed bills", "path", f.Name(), "error", err)
		return s
	}
	_, _ = s.CreateBills(context.Background(), SeedUserID, res.Bills)
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// GetAccount implements backend.AccountStore
func (s *Store) GetAccount(_ context.Context, userID int64) (core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return core.Account{}, core.ErrAccountNotFound
	}
	return acct, nil
}

// SaveAccount implements backend.AccountStore
func (s *Store) SaveAccount(_ context.Context, acct core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[acct.UserID] = acct
	return nil
}

// RollAccount implements backend.AccountStore
func (s *Store) RollAccount(_ context.Context, prev, next core.Account, paid map[int64]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[prev.UserID]
	if !ok {
		return core.ErrAccountNotFound
	}
	if !cur.StartingBalance.Equal(prev.StartingBalance) || !cur.CurrentBalance.Equal(prev.CurrentBalance) ||
		!cur.BalanceAsOfDate.Equal(prev.BalanceAsOfDate) {
		return core.ErrConflict
	}

	bills := s.bills[prev.UserID]
	idx := make(map[int64]int, len(paid))
	for id := range paid {
		i := slices.IndexFunc(bills, func(b core.RecurringBill) bool { return b.ID == id })
		if i < 0 {
			return core.ErrNotFound
		}
		idx[id] = i
	}
	for id, amount := range paid {
		bills[idx[id]].AmountPaid = amount
	}
	next.UserID = prev.UserID
	s.accounts[prev.UserID] = next
	return nil
}

// ListUserIDs implements backend.UserLister
func (s *Store) ListUserIDs(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]int64, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *Store) ListBills(_ context.Context, userID int64) ([]core.RecurringBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.bills[userID]), nil
}

func (s *Store) GetBill(_ context.Context, userID, id int64) (core.RecurringBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.bills[userID], id, func(x core.RecurringBill) int64 { return x.ID })
}

func (s *Store) CreateBills(_ context.Context, userID int64, bills []core.RecurringBill) ([]core.RecurringBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringBill, 0, len(bills))
	for _, b := range bills {
		b.ID = s.id()
		out = append(out, b)
	}
	s.bills[userID] = append(s.bills[userID], out...)
	return out, nil
}

func (s *Store) UpdateBill(_ context.Context, userID int64, b core.RecurringBill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return replace(s.bills[userID], b, func(x core.RecurringBill) int64 { return x.ID })
}

func (s *Store) DeleteBill(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.bills, userID, id, func(x core.RecurringBill) int64 { return x.ID })
}

func (s *Store) ListPaychecks(_ context.Context, userID int64) ([]core.Paycheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.paychecks[userID]), nil
}

func (s *Store) GetPaycheck(_ context.Context, userID, id int64) (core.Paycheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.paychecks[userID], id, func(x core.Paycheck) int64 { return x.ID })
}

func (s *Store) CreatePaycheck(_ context.Context, userID int64, p core.Paycheck) (core.Paycheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	s.paychecks[userID] = append(s.paychecks[userID], p)
	return p, nil
}

func (s *Store) UpdatePaycheck(_ context.Context, userID int64, p core.Paycheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return replace(s.paychecks[userID], p, func(x core.Paycheck) int64 { return x.ID })
}

func (s *Store) DeletePaycheck(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.paychecks, userID, id, func(x core.Paycheck) int64 { return x.ID })
}

func (s *Store) ListExpenses(_ context.Context, userID int64) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.expenses[userID])
	slices.SortStableFunc(out, func(a, b core.Expense) int { return a.Date.Compare(b.Date.Time) })
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, userID, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.expenses[userID], id, func(x core.Expense) int64 { return x.ID })
}

func (s *Store) CreateExpense(_ context.Context, userID int64, e core.Expense) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = s.id()
	s.expenses[userID] = append(s.expenses[userID], e)
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, userID int64, e core.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return replace(s.expenses[userID], e, func(x core.Expense) int64 { return x.ID })
}

func (s *Store) DeleteExpense(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.expenses, userID, id, func(x core.Expense) int64 { return x.ID })
}

func (s *Store) ListCategories(_ context.Context, userID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.cats[userID])
	slices.SortStableFunc(out, func(a, b core.Category) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, userID, id int64) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(s.cats[userID], id, func(x core.Category) int64 { return x.ID })
}

func (s *Store) CreateCategory(_ context.Context, userID int64, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(userID, c) {
		return core.Category{}, core.ErrDuplicateCategory
	}
	c.ID = s.id()
	s.cats[userID] = append(s.cats[userID], c)
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, userID int64, c core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nameTaken(userID, c) {
		return core.ErrDuplicateCategory
	}
	return replace(s.cats[userID], c, func(x core.Category) int64 { return x.ID })
}

func (s *Store) DeleteCategory(_ context.Context, userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return remove(s.cats, userID, id, func(x core.Category) int64 { return x.ID })
}

// nameTaken reports whether another category of userID already uses c's name.
func (s *Store) nameTaken(userID int64, c core.Category) bool {
	return slices.ContainsFunc(s.cats[userID], func(x core.Category) bool {
		return x.ID != c.ID && x.Name == c.Name
	})
}

func find[T any](items []T, id int64, key func(T) int64) (T, error) {
	i := slices.IndexFunc(items, func(x T) bool { return key(x) == id })
	if i < 0 {
		var zero T
		return zero, core.ErrNotFound
	}
	return items[i], nil
}

// replace overwrites the element of items sharing v's id.
func replace[T any](items []T, v T, id func(T) int64) error {
	for i := range items {
		if id(items[i]) == id(v) {
			items[i] = v
			return nil
		}
	}
	return core.ErrNotFound
}

func remove[T any](m map[int64][]T, userID, id int64, key func(T) int64) error {
	items := m[userID]
	i := slices.IndexFunc(items, func(x T) bool { return key(x) == id })
	if i < 0 {
		return core.ErrNotFound
	}
	m[userID] = slices.Delete(items, i, i+1)
	return nil
}
