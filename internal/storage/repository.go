// Package storage is the SQLite backend. Dates are stored as RFC 3339
// UTC strings so lexical comparison matches chronological order, which
// keeps the half-open period filters to plain string range predicates.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"hearth/internal/core"
	"hearth/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ store.Store = (*SQLiteRepository)(nil)

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

// Ping verifies the connection for readiness checks.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, family_id, user_id, name, type, color,
			budget_limit_cents, investment_target_cents, is_shared, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FamilyID, c.UserID, c.Name, string(c.Type), c.Color,
		c.BudgetLimit.Cents, c.InvestmentTarget.Cents, boolToInt(c.IsShared), fmtTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, familyID, id string) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, family_id, user_id, name, type, color,
			budget_limit_cents, investment_target_cents, is_shared, created_at
		FROM categories WHERE id = ? AND family_id = ?`, id, familyID)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, familyID string, ctype core.CategoryType) ([]core.Category, error) {
	q := `
		SELECT id, family_id, user_id, name, type, color,
			budget_limit_cents, investment_target_cents, is_shared, created_at
		FROM categories WHERE family_id = ?`
	args := []any{familyID}
	if ctype != "" {
		q += ` AND type = ?`
		args = append(args, string(ctype))
	}
	q += ` ORDER BY name COLLATE NOCASE ASC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, familyID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND family_id = ?`, id, familyID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (id, family_id, user_id, name, type, owner_type,
			opening_balance_cents, current_balance_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.FamilyID, a.UserID, a.Name, string(a.Type), string(a.OwnerType),
		a.OpeningBalance.Cents, a.CurrentBalance.Cents, fmtTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, familyID, id string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, family_id, user_id, name, type, owner_type,
			opening_balance_cents, current_balance_cents, created_at
		FROM accounts WHERE id = ? AND family_id = ?`, id, familyID)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, fmt.Errorf("account %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, familyID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, family_id, user_id, name, type, owner_type,
			opening_balance_cents, current_balance_cents, created_at
		FROM accounts WHERE family_id = ? ORDER BY name COLLATE NOCASE ASC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// InsertTransaction writes the journal row and applies the postings as
// atomic in-place increments within a single SQL transaction. The
// increment form never reads the balance first, so concurrent writers
// cannot lose updates.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction, postings []core.Posting) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, p := range postings {
		res, err := tx.ExecContext(ctx, `
			UPDATE accounts SET current_balance_cents = current_balance_cents + ?
			WHERE id = ? AND family_id = ?`, p.Delta, p.AccountID, t.FamilyID)
		if err != nil {
			return fmt.Errorf("apply posting: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("account %s: %w", p.AccountID, core.ErrNotFound)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (id, family_id, user_id, user_name, user_icon,
			type, amount_cents, category_id, account_id, to_account_id,
			date, description, created_at, exported)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		t.ID, t.FamilyID, t.UserID, t.UserName, t.UserIcon,
		string(t.Type), t.Amount.Cents, t.CategoryID, t.AccountID, t.ToAccountID,
		fmtTime(t.Date.Time), t.Description, fmtTime(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", string(t.Type),
		"amount_cents", t.Amount.Cents,
		"postings", len(postings))
	return nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, familyID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, transactionColumns+
		` FROM transactions WHERE id = ? AND family_id = ?`, id, familyID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context, f store.TransactionFilter) ([]core.Transaction, error) {
	q := transactionColumns + ` FROM transactions WHERE family_id = ?`
	args := []any{f.FamilyID}
	if f.UserID != "" {
		q += ` AND user_id = ?`
		args = append(args, f.UserID)
	}
	if f.Type != "" {
		q += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	if !f.Start.IsZero() {
		q += ` AND date >= ?`
		args = append(args, fmtTime(f.Start))
	}
	if !f.End.IsZero() {
		q += ` AND date < ?`
		args = append(args, fmtTime(f.End))
	}
	q += ` ORDER BY date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET type = ?, amount_cents = ?, category_id = ?,
			account_id = ?, to_account_id = ?, date = ?, description = ?
		WHERE id = ? AND family_id = ?`,
		string(t.Type), t.Amount.Cents, t.CategoryID,
		t.AccountID, t.ToAccountID, fmtTime(t.Date.Time), t.Description,
		t.ID, t.FamilyID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", t.ID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, familyID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND family_id = ?`, id, familyID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) ListUnexported(ctx context.Context, limit int) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, transactionColumns+
		` FROM transactions WHERE exported = 0 ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list unexported: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, familyID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET exported = 1 WHERE id = ? AND family_id = ?`, id, familyID)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) GetMonthlyBalance(ctx context.Context, familyID, userID string, month, year int) (core.MonthlyBalance, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT family_id, user_id, month, year, opening_balance_cents,
			closing_balance_cents, has_loan, loan_amount_cents, computed_at
		FROM monthly_balances
		WHERE family_id = ? AND user_id = ? AND month = ? AND year = ?`,
		familyID, userID, month, year)

	var b core.MonthlyBalance
	var hasLoan int
	var computedAt string
	err := row.Scan(&b.FamilyID, &b.UserID, &b.Month, &b.Year,
		&b.OpeningBalance.Cents, &b.ClosingBalance.Cents, &hasLoan,
		&b.LoanAmount.Cents, &computedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.MonthlyBalance{}, fmt.Errorf("monthly balance %d/%d: %w", month, year, core.ErrNotFound)
	}
	if err != nil {
		return core.MonthlyBalance{}, fmt.Errorf("get monthly balance: %w", err)
	}
	b.HasLoan = hasLoan != 0
	b.ComputedAt = parseTime(computedAt)
	return b, nil
}

func (r *SQLiteRepository) UpsertMonthlyBalance(ctx context.Context, b core.MonthlyBalance) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO monthly_balances (family_id, user_id, month, year,
			opening_balance_cents, closing_balance_cents, has_loan,
			loan_amount_cents, computed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (family_id, user_id, month, year) DO UPDATE SET
			opening_balance_cents = excluded.opening_balance_cents,
			closing_balance_cents = excluded.closing_balance_cents,
			has_loan = excluded.has_loan,
			loan_amount_cents = excluded.loan_amount_cents,
			computed_at = excluded.computed_at`,
		b.FamilyID, b.UserID, b.Month, b.Year,
		b.OpeningBalance.Cents, b.ClosingBalance.Cents, boolToInt(b.HasLoan),
		b.LoanAmount.Cents, fmtTime(b.ComputedAt))
	if err != nil {
		return fmt.Errorf("upsert monthly balance: %w", err)
	}
	return nil
}

const transactionColumns = `
	SELECT id, family_id, user_id, user_name, user_icon, type, amount_cents,
		category_id, account_id, to_account_id, date, description, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(s scanner) (core.Category, error) {
	var c core.Category
	var ctype, createdAt string
	var isShared int
	err := s.Scan(&c.ID, &c.FamilyID, &c.UserID, &c.Name, &ctype, &c.Color,
		&c.BudgetLimit.Cents, &c.InvestmentTarget.Cents, &isShared, &createdAt)
	if err != nil {
		return core.Category{}, err
	}
	c.Type = core.CategoryType(ctype)
	c.IsShared = isShared != 0
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

func scanAccount(s scanner) (core.Account, error) {
	var a core.Account
	var atype, otype, createdAt string
	err := s.Scan(&a.ID, &a.FamilyID, &a.UserID, &a.Name, &atype, &otype,
		&a.OpeningBalance.Cents, &a.CurrentBalance.Cents, &createdAt)
	if err != nil {
		return core.Account{}, err
	}
	a.Type = core.AccountType(atype)
	a.OwnerType = core.OwnerType(otype)
	a.CreatedAt = parseTime(createdAt)
	return a, nil
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var t core.Transaction
	var ttype, date, createdAt string
	err := s.Scan(&t.ID, &t.FamilyID, &t.UserID, &t.UserName, &t.UserIcon,
		&ttype, &t.Amount.Cents, &t.CategoryID, &t.AccountID, &t.ToAccountID,
		&date, &t.Description, &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(ttype)
	t.Date = core.Date{Time: parseTime(date)}
	t.CreatedAt = parseTime(createdAt)
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
