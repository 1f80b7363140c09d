package services

import (
	"context"
	"errors"
	"fmt"

	"fintrack/internal/core"
)

func (s *FinanceService) ListBills(ctx context.Context, userID int64) ([]core.RecurringBill, error) {
	return s.store.ListBills(ctx, userID)
}

func (s *FinanceService) GetBill(ctx context.Context, userID, id int64) (core.RecurringBill, error) {
	b, err := s.store.GetBill(ctx, userID, id)
	if err != nil {
		return core.RecurringBill{}, fmt.Errorf("get bill %d: %w", id, err)
	}
	return b, nil
}

// CreateBill validates and stores a bill. An empty category becomes
// core.DefaultCategory.
func (s *FinanceService) CreateBill(ctx context.Context, userID int64, b core.RecurringBill) (core.RecurringBill, error) {
	b = normalizeBill(b)
	if err := b.Validate(); err != nil {
		return core.RecurringBill{}, err
	}
	created, err := s.store.CreateBills(ctx, userID, []core.RecurringBill{b})
	if err != nil {
		return core.RecurringBill{}, fmt.Errorf("create bill: %w", err)
	}
	return created[0], nil
}

func (s *FinanceService) UpdateBill(ctx context.Context, userID int64, b core.RecurringBill) (core.RecurringBill, error) {
	b = normalizeBill(b)
	if err := b.Validate(); err != nil {
		return core.RecurringBill{}, err
	}
	if err := s.store.UpdateBill(ctx, userID, b); err != nil {
		return core.RecurringBill{}, fmt.Errorf("update bill %d: %w", b.ID, err)
	}
	return b, nil
}

func (s *FinanceService) DeleteBill(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteBill(ctx, userID, id); err != nil {
		return fmt.Errorf("delete bill %d: %w", id, err)
	}
	return nil
}

func normalizeBill(b core.RecurringBill) core.RecurringBill {
	if b.Category == "" {
		b.Category = core.DefaultCategory
	}
	return b
}

func (s *FinanceService) ListPaychecks(ctx context.Context, userID int64) ([]core.Paycheck, error) {
	return s.store.ListPaychecks(ctx, userID)
}

func (s *FinanceService) GetPaycheck(ctx context.Context, userID, id int64) (core.Paycheck, error) {
	p, err := s.store.GetPaycheck(ctx, userID, id)
	if err != nil {
		return core.Paycheck{}, fmt.Errorf("get paycheck %d: %w", id, err)
	}
	return p, nil
}

func (s *FinanceService) CreatePaycheck(ctx context.Context, userID int64, p core.Paycheck) (core.Paycheck, error) {
	if p.Category == "" {
		p.Category = core.DefaultCategory
	}
	if err := p.Validate(); err != nil {
		return core.Paycheck{}, err
	}
	created, err := s.store.CreatePaycheck(ctx, userID, p)
	if err != nil {
		return core.Paycheck{}, fmt.Errorf("create paycheck: %w", err)
	}
	return created, nil
}

func (s *FinanceService) UpdatePaycheck(ctx context.Context, userID int64, p core.Paycheck) (core.Paycheck, error) {
	if p.Category == "" {
		p.Category = core.DefaultCategory
	}
	if err := p.Validate(); err != nil {
		return core.Paycheck{}, err
	}
	if err := s.store.UpdatePaycheck(ctx, userID, p); err != nil {
		return core.Paycheck{}, fmt.Errorf("update paycheck %d: %w", p.ID, err)
	}
	return p, nil
}

func (s *FinanceService) DeletePaycheck(ctx context.Context, userID, id int64) error {
	if err := s.store.DeletePaycheck(ctx, userID, id); err != nil {
		return fmt.Errorf("delete paycheck %d: %w", id, err)
	}
	return nil
}

func (s *FinanceService) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.store.ListExpenses(ctx, userID)
}

func (s *FinanceService) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	e, err := s.store.GetExpense(ctx, userID, id)
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// CreateExpense validates and stores an expense. A related bill must belong
// to the same user.
func (s *FinanceService) CreateExpense(ctx context.Context, userID int64, e core.Expense) (core.Expense, error) {
	if err := s.checkExpense(ctx, userID, &e); err != nil {
		return core.Expense{}, err
	}
	created, err := s.store.CreateExpense(ctx, userID, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return created, nil
}

func (s *FinanceService) UpdateExpense(ctx context.Context, userID int64, e core.Expense) (core.Expense, error) {
	if err := s.checkExpense(ctx, userID, &e); err != nil {
		return core.Expense{}, err
	}
	if err := s.store.UpdateExpense(ctx, userID, e); err != nil {
		return core.Expense{}, fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return e, nil
}

func (s *FinanceService) DeleteExpense(ctx context.Context, userID, id int64) error {
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return nil
}

func (s *FinanceService) checkExpense(ctx context.Context, userID int64, e *core.Expense) error {
	if e.Category == "" {
		e.Category = core.DefaultCategory
	}
	if err := e.Validate(); err != nil {
		return err
	}
	if e.RelatedBillID == nil {
		return nil
	}
	if _, err := s.store.GetBill(ctx, userID, *e.RelatedBillID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("related bill %d: %w", *e.RelatedBillID, core.ErrNotFound)
		}
		return fmt.Errorf("get related bill: %w", err)
	}
	return nil
}
