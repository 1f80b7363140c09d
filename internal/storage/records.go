package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const billColumns = `id, name, amount, due_day, total, amount_paid, category`

func scanBill(s rowScanner) (core.RecurringBill, error) {
	var (
		b     core.RecurringBill
		total decimal.NullDecimal
	)
	if err := s.Scan(&b.ID, &b.Name, &b.Amount, &b.DueDay, &total, &b.AmountPaid, &b.Category); err != nil {
		return core.RecurringBill{}, err
	}
	if total.Valid {
		b.Total = &total.Decimal
	}
	return b, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

// ListBills implements backend.BillStore
func (r *SQLiteRepository) ListBills(ctx context.Context, userID int64) ([]core.RecurringBill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM recurring_bills WHERE user_id = ? AND deleted_at IS NULL ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var bills []core.RecurringBill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// GetBill implements backend.BillStore
func (r *SQLiteRepository) GetBill(ctx context.Context, userID, id int64) (core.RecurringBill, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM recurring_bills WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		id, userID,
	)
	b, err := scanBill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.RecurringBill{}, core.ErrNotFound
	}
	if err != nil {
		return core.RecurringBill{}, fmt.Errorf("get bill: %w", err)
	}
	return b, nil
}

// CreateBills implements backend.BillStore. The batch is inserted in one
// transaction so an import either lands completely or not at all.
func (r *SQLiteRepository) CreateBills(ctx context.Context, userID int64, bills []core.RecurringBill) ([]core.RecurringBill, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recurring_bills (user_id, name, amount, due_day, total, amount_paid, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare insert bill: %w", err)
	}
	defer stmt.Close()

	out := make([]core.RecurringBill, 0, len(bills))
	for _, b := range bills {
		res, err := stmt.ExecContext(ctx, userID, b.Name, b.Amount, b.DueDay, nullDecimal(b.Total), b.AmountPaid, b.Category)
		if err != nil {
			return nil, fmt.Errorf("insert bill %q: %w", b.Name, err)
		}
		if b.ID, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("bill id: %w", err)
		}
		out = append(out, b)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bills: %w", err)
	}
	slog.InfoContext(ctx, "Bills saved to SQLite", "user_id", userID, "count", len(out))
	return out, nil
}

// UpdateBill implements backend.BillStore
func (r *SQLiteRepository) UpdateBill(ctx context.Context, userID int64, b core.RecurringBill) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_bills
		SET name = ?, amount = ?, due_day = ?, total = ?, amount_paid = ?, category = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		b.Name, b.Amount, b.DueDay, nullDecimal(b.Total), b.AmountPaid, b.Category, b.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("update bill: %w", err)
	}
	return expectOneRow(res)
}

// DeleteBill implements backend.BillStore
func (r *SQLiteRepository) DeleteBill(ctx context.Context, userID, id int64) error {
	return r.softDelete(ctx, "recurring_bills", userID, id)
}

const paycheckColumns = `id, amount, date, frequency, day_of_week, day_of_month, second_day_of_month, category`

func scanPaycheck(s rowScanner) (core.Paycheck, error) {
	var (
		p              core.Paycheck
		date, freq     string
		dow, dom, dom2 sql.NullInt64
	)
	if err := s.Scan(&p.ID, &p.Amount, &date, &freq, &dow, &dom, &dom2, &p.Category); err != nil {
		return core.Paycheck{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Paycheck{}, fmt.Errorf("paycheck %d date %q: %w", p.ID, date, err)
	}
	p.Date = d
	p.Frequency = core.ParseFrequency(freq)
	if dow.Valid {
		v := int(dow.Int64)
		p.DayOfWeek = &v
	}
	p.DayOfMonth = int(dom.Int64)
	p.SecondDayOfMonth = int(dom2.Int64)
	return p, nil
}

// ListPaychecks implements backend.PaycheckStore
func (r *SQLiteRepository) ListPaychecks(ctx context.Context, userID int64) ([]core.Paycheck, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paycheckColumns+` FROM paychecks WHERE user_id = ? AND deleted_at IS NULL ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list paychecks: %w", err)
	}
	defer rows.Close()

	var out []core.Paycheck
	for rows.Next() {
		p, err := scanPaycheck(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paycheck: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetPaycheck implements backend.PaycheckStore
func (r *SQLiteRepository) GetPaycheck(ctx context.Context, userID, id int64) (core.Paycheck, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paycheckColumns+` FROM paychecks WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		id, userID,
	)
	p, err := scanPaycheck(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Paycheck{}, core.ErrNotFound
	}
	if err != nil {
		return core.Paycheck{}, fmt.Errorf("get paycheck: %w", err)
	}
	return p, nil
}

// CreatePaycheck implements backend.PaycheckStore
func (r *SQLiteRepository) CreatePaycheck(ctx context.Context, userID int64, p core.Paycheck) (core.Paycheck, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO paychecks (user_id, amount, date, frequency, day_of_week, day_of_month, second_day_of_month, category)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, p.Amount, p.Date.String(), p.Frequency.String(), nullWeekday(p.DayOfWeek),
		nullInt(p.DayOfMonth), nullInt(p.SecondDayOfMonth), p.Category,
	)
	if err != nil {
		return core.Paycheck{}, fmt.Errorf("insert paycheck: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return core.Paycheck{}, fmt.Errorf("paycheck id: %w", err)
	}
	slog.InfoContext(ctx, "Paycheck saved to SQLite",
		"id", p.ID,
		"user_id", userID,
		"frequency", p.Frequency.String(),
		"amount", p.Amount.String())
	return p, nil
}

// UpdatePaycheck implements backend.PaycheckStore
func (r *SQLiteRepository) UpdatePaycheck(ctx context.Context, userID int64, p core.Paycheck) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE paychecks
		SET amount = ?, date = ?, frequency = ?, day_of_week = ?, day_of_month = ?, second_day_of_month = ?,
			category = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		p.Amount, p.Date.String(), p.Frequency.String(), nullWeekday(p.DayOfWeek),
		nullInt(p.DayOfMonth), nullInt(p.SecondDayOfMonth), p.Category, p.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("update paycheck: %w", err)
	}
	return expectOneRow(res)
}

// DeletePaycheck implements backend.PaycheckStore
func (r *SQLiteRepository) DeletePaycheck(ctx context.Context, userID, id int64) error {
	return r.softDelete(ctx, "paychecks", userID, id)
}

func nullWeekday(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

const expenseColumns = `id, name, amount, date, category, related_bill_id`

func scanExpense(s rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		date    string
		related sql.NullInt64
	)
	if err := s.Scan(&e.ID, &e.Name, &e.Amount, &date, &e.Category, &related); err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d date %q: %w", e.ID, date, err)
	}
	e.Date = d
	if related.Valid {
		id := related.Int64
		e.RelatedBillID = &id
	}
	return e, nil
}

// ListExpenses implements backend.ExpenseStore
func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID int64) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND deleted_at IS NULL ORDER BY date, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetExpense implements backend.ExpenseStore
func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		id, userID,
	)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// CreateExpense implements backend.ExpenseStore
func (r *SQLiteRepository) CreateExpense(ctx context.Context, userID int64, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (user_id, name, amount, date, category, related_bill_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, e.Name, e.Amount, e.Date.String(), e.Category, nullID(e.RelatedBillID),
	)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return core.Expense{}, fmt.Errorf("expense id: %w", err)
	}
	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"user_id", userID,
		"name", e.Name,
		"amount", e.Amount.String(),
		"date", e.Date.String())
	return e, nil
}

// UpdateExpense implements backend.ExpenseStore
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, userID int64, e core.Expense) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET name = ?, amount = ?, date = ?, category = ?, related_bill_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		e.Name, e.Amount, e.Date.String(), e.Category, nullID(e.RelatedBillID), e.ID, userID,
	)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return expectOneRow(res)
}

// DeleteExpense implements backend.ExpenseStore
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id int64) error {
	return r.softDelete(ctx, "expenses", userID, id)
}

func nullID(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
