package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// GetAccount implements backend.AccountStore
func (r *SQLiteRepository) GetAccount(ctx context.Context, userID int64) (core.Account, error) {
	acct := core.Account{UserID: userID}
	var asOf string
	err := r.db.QueryRowContext(ctx,
		`SELECT starting_balance, current_balance, balance_as_of_date FROM accounts WHERE user_id = ?`,
		userID,
	).Scan(&acct.StartingBalance, &acct.CurrentBalance, &asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	if acct.BalanceAsOfDate, err = core.ParseDate(asOf); err != nil {
		return core.Account{}, fmt.Errorf("account %d balance date %q: %w", userID, asOf, err)
	}
	return acct, nil
}

// SaveAccount implements backend.AccountStore
func (r *SQLiteRepository) SaveAccount(ctx context.Context, acct core.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (user_id, starting_balance, current_balance, balance_as_of_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			starting_balance = excluded.starting_balance,
			current_balance = excluded.current_balance,
			balance_as_of_date = excluded.balance_as_of_date,
			updated_at = CURRENT_TIMESTAMP`,
		acct.UserID, acct.StartingBalance, acct.CurrentBalance, acct.BalanceAsOfDate.String(),
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	slog.InfoContext(ctx, "Account saved to SQLite",
		"user_id", acct.UserID,
		"starting_balance", acct.StartingBalance.String(),
		"balance_as_of_date", acct.BalanceAsOfDate.String())
	return nil
}

// RollAccount implements backend.AccountStore. The anchor comparison and all
// writes share one transaction.
func (r *SQLiteRepository) RollAccount(ctx context.Context, prev, next core.Account, paid map[int64]decimal.Decimal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var (
		starting, current decimal.Decimal
		asOf              string
	)
	err = tx.QueryRowContext(ctx,
		`SELECT starting_balance, current_balance, balance_as_of_date FROM accounts WHERE user_id = ?`,
		prev.UserID,
	).Scan(&starting, &current, &asOf)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrAccountNotFound
	}
	if err != nil {
		return fmt.Errorf("read account: %w", err)
	}
	if !starting.Equal(prev.StartingBalance) || !current.Equal(prev.CurrentBalance) || asOf != prev.BalanceAsOfDate.String() {
		return core.ErrConflict
	}

	for id, amount := range paid {
		res, err := tx.ExecContext(ctx, `
			UPDATE recurring_bills SET amount_paid = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
			amount, id, prev.UserID,
		)
		if err != nil {
			return fmt.Errorf("update bill %d amount paid: %w", id, err)
		}
		if err := expectOneRow(res); err != nil {
			return fmt.Errorf("bill %d: %w", id, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET starting_balance = ?, current_balance = ?, balance_as_of_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ?`,
		next.StartingBalance, next.CurrentBalance, next.BalanceAsOfDate.String(), prev.UserID,
	); err != nil {
		return fmt.Errorf("update account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rollover: %w", err)
	}
	return nil
}

// ListUserIDs implements backend.UserLister
func (r *SQLiteRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM accounts ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// softDelete stamps deleted_at on one live row owned by userID.
func (r *SQLiteRepository) softDelete(ctx context.Context, table string, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE `+table+` SET deleted_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}
