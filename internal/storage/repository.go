// Package storage is the local SQLite implementation of the store ports,
// used for offline work and development.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"

	_ "modernc.org/sqlite"
)

var (
	_ store.ExpenseSource     = (*SQLiteRepository)(nil)
	_ store.ExpenseWriter     = (*SQLiteRepository)(nil)
	_ store.BudgetStore       = (*SQLiteRepository)(nil)
	_ store.CategoryDirectory = (*SQLiteRepository)(nil)
	_ store.AnalyticsReader   = (*SQLiteRepository)(nil)
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a SQLiteRepository.
type Option func(*SQLiteRepository)

// WithClock replaces time.Now for the analytics that depend on today.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) { r.now = now }
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	repo := &SQLiteRepository{db: db, now: time.Now}
	for _, opt := range opts {
		opt(repo)
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const expenseColumns = `e.id, e.description, e.amount_cents, e.date, c.id, c.name`

func scanExpense(rows interface{ Scan(...any) error }) (core.Expense, error) {
	var (
		e       core.Expense
		cents   int64
		date    string
		catID   sql.NullInt64
		catName sql.NullString
	)
	if err := rows.Scan(&e.ID, &e.Description, &cents, &date, &catID, &catName); err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("expense %d: %w", e.ID, err)
	}
	e.Date = d
	e.Amount = core.Cents(cents)
	if catID.Valid {
		e.Category = &core.Category{ID: catID.Int64, Name: catName.String}
	}
	return e, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, f store.ExpenseFilter) ([]core.Expense, error) {
	var (
		where []string
		args  []any
	)
	if f.From != nil {
		where = append(where, "e.date >= ?")
		args = append(args, f.From.String())
	}
	if f.To != nil {
		where = append(where, "e.date <= ?")
		args = append(args, f.To.String())
	}
	if f.CategoryID != nil {
		where = append(where, "e.category_id = ?")
		args = append(args, *f.CategoryID)
	}
	if f.MinAmount != nil {
		where = append(where, "e.amount_cents >= ?")
		args = append(args, f.MinAmount.Cents)
	}
	if f.MaxAmount != nil {
		where = append(where, "e.amount_cents <= ?")
		args = append(args, f.MaxAmount.Cents)
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses e LEFT JOIN categories c ON c.id = e.category_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.date, e.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, in store.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}
	if in.CategoryID != nil {
		if _, err := r.category(ctx, *in.CategoryID); err != nil {
			return core.Expense{}, err
		}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (description, amount_cents, date, category_id) VALUES (?, ?, ?, ?)`,
		strings.TrimSpace(in.Description), in.Amount.Cents, in.Date.String(), nullableID(in.CategoryID))
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	e, err := scanExpense(r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses e LEFT JOIN categories c ON c.id = e.category_id WHERE e.id = ?`, id))
	if err != nil {
		return core.Expense{}, fmt.Errorf("read expense %d: %w", id, err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"description", e.Description,
		"amount", e.Amount.String(),
		"date", e.Date.String())
	return e, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	return r.deleteRow(ctx, "expenses", "expense", id)
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []core.Category{}
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	name, err := store.ValidateCategoryName(name)
	if err != nil {
		return core.Category{}, err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Category{}, fmt.Errorf("category %q already exists", name)
		}
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return core.Category{ID: id, Name: name}, nil
}

func (r *SQLiteRepository) category(ctx context.Context, id int64) (core.Category, error) {
	c := core.Category{ID: id}
	err := r.db.QueryRowContext(ctx, `SELECT name FROM categories WHERE id = ?`, id).Scan(&c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category %d: %w", id, err)
	}
	return c, nil
}

const budgetQuery = `SELECT b.id, b.month, b.amount_cents, c.id, c.name
FROM budgets b LEFT JOIN categories c ON c.id = b.category_id`

func scanBudget(rows interface{ Scan(...any) error }) (core.BudgetRecord, error) {
	var (
		b       core.BudgetRecord
		month   string
		cents   int64
		catID   sql.NullInt64
		catName sql.NullString
	)
	if err := rows.Scan(&b.ID, &month, &cents, &catID, &catName); err != nil {
		return core.BudgetRecord{}, err
	}
	m, err := core.ParseYearMonth(month)
	if err != nil {
		return core.BudgetRecord{}, fmt.Errorf("budget %d: %w", b.ID, err)
	}
	b.Month = m
	b.Amount = core.Cents(cents)
	if catID.Valid {
		b.Category = &core.Category{ID: catID.Int64, Name: catName.String}
	}
	return b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.BudgetRecord, error) {
	return r.queryBudgets(ctx, budgetQuery+` ORDER BY b.month, b.id`)
}

func (r *SQLiteRepository) queryBudgets(ctx context.Context, query string, args ...any) ([]core.BudgetRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := []core.BudgetRecord{}
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) budget(ctx context.Context, id int64) (core.BudgetRecord, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx, budgetQuery+` WHERE b.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.BudgetRecord{}, fmt.Errorf("budget %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return core.BudgetRecord{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	return b, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, in store.BudgetInput) (core.BudgetRecord, error) {
	if err := in.Validate(); err != nil {
		return core.BudgetRecord{}, err
	}
	if in.CategoryID != nil {
		if _, err := r.category(ctx, *in.CategoryID); err != nil {
			return core.BudgetRecord{}, err
		}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO budgets (month, amount_cents, category_id) VALUES (?, ?, ?)`,
		in.Month.String(), in.Amount.Cents, nullableID(in.CategoryID))
	if err != nil {
		if isUniqueViolation(err) {
			return core.BudgetRecord{}, store.ErrConflict
		}
		return core.BudgetRecord{}, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.BudgetRecord{}, fmt.Errorf("create budget: %w", err)
	}
	return r.budget(ctx, id)
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, id int64, in store.BudgetInput) (core.BudgetRecord, error) {
	if err := in.Validate(); err != nil {
		return core.BudgetRecord{}, err
	}
	if in.CategoryID != nil {
		if _, err := r.category(ctx, *in.CategoryID); err != nil {
			return core.BudgetRecord{}, err
		}
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET month = ?, amount_cents = ?, category_id = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		in.Month.String(), in.Amount.Cents, nullableID(in.CategoryID), id)
	if err != nil {
		if isUniqueViolation(err) {
			return core.BudgetRecord{}, store.ErrConflict
		}
		return core.BudgetRecord{}, fmt.Errorf("update budget %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.BudgetRecord{}, fmt.Errorf("budget %d: %w", id, store.ErrNotFound)
	}
	return r.budget(ctx, id)
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id int64) error {
	return r.deleteRow(ctx, "budgets", "budget", id)
}

func (r *SQLiteRepository) deleteRow(ctx context.Context, table, noun string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", noun, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %d: %w", noun, id, store.ErrNotFound)
	}
	return nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
