// Package store declares the ports through which fintrack talks to the
// finance service, whichever backend implements them.
package store

import (
	"context"
	"errors"
	"strings"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseSource lists expenses, optionally filtered.
	ExpenseSource interface {
		ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error)
	}

	ExpenseWriter interface {
		CreateExpense(ctx context.Context, in ExpenseInput) (core.Expense, error)
		DeleteExpense(ctx context.Context, id int64) error
	}

	// BudgetStore owns budget records. The client only holds a cached copy.
	BudgetStore interface {
		ListBudgets(ctx context.Context) ([]core.BudgetRecord, error)
		CreateBudget(ctx context.Context, in BudgetInput) (core.BudgetRecord, error)
		UpdateBudget(ctx context.Context, id int64, in BudgetInput) (core.BudgetRecord, error)
		DeleteBudget(ctx context.Context, id int64) error
	}

	CategoryDirectory interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		CreateCategory(ctx context.Context, name string) (core.Category, error)
	}

	// AnalyticsReader exposes the summary statistics the service computes.
	AnalyticsReader interface {
		Summary(ctx context.Context) (core.AnalyticsSummary, error)
		// Trends returns per-day spending totals.
		Trends(ctx context.Context) ([]core.DatedAmount, error)
		Forecast(ctx context.Context) (core.Forecast, error)
		Alerts(ctx context.Context) ([]string, error)
	}
)

// ExpenseFilter narrows ListExpenses. Nil fields do not filter; the date
// range is inclusive.
type ExpenseFilter struct {
	From       *core.Date
	To         *core.Date
	CategoryID *int64
	MinAmount  *core.Money
	MaxAmount  *core.Money
}

// Match applies the filter locally, for stores that hold expenses in memory.
func (f ExpenseFilter) Match(e core.Expense) bool {
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	if f.CategoryID != nil && (e.Category == nil || e.Category.ID != *f.CategoryID) {
		return false
	}
	if f.MinAmount != nil && e.Amount.Cents < f.MinAmount.Cents {
		return false
	}
	if f.MaxAmount != nil && e.Amount.Cents > f.MaxAmount.Cents {
		return false
	}
	return true
}

// ExpenseInput is the payload of a new expense.
type ExpenseInput struct {
	Description string
	Amount      core.Money
	Date        core.Date
	CategoryID  *int64
}

func (in ExpenseInput) Validate() error {
	e := core.Expense{Description: in.Description, Amount: in.Amount, Date: in.Date}
	if err := e.Validate(); err != nil {
		return err
	}
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		return core.NewValidationError("categoryId", core.ErrInvalidID)
	}
	return nil
}

// BudgetInput is the payload of a create or update budget request. A nil
// CategoryID is the overall budget.
type BudgetInput struct {
	Month      core.YearMonth
	Amount     core.Money
	CategoryID *int64
}

// BudgetInputFor builds the payload for a selection.
func BudgetInputFor(sel core.Selection, amount core.Money) BudgetInput {
	return BudgetInput{Month: sel.Month, Amount: amount, CategoryID: sel.Scope.CategoryIDPtr()}
}

func (in BudgetInput) Validate() error {
	if err := in.Month.Validate(); err != nil {
		return core.NewValidationError("month", err)
	}
	if in.CategoryID != nil && *in.CategoryID <= 0 {
		return core.NewValidationError("categoryId", core.ErrInvalidID)
	}
	return in.Amount.ValidateNonNegative()
}

// Scope returns the scope the input targets.
func (in BudgetInput) Scope() core.Scope {
	if in.CategoryID == nil {
		return core.Overall()
	}
	return core.ForCategory(*in.CategoryID)
}

// ValidateCategoryName trims and checks a new category name.
func ValidateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", core.NewValidationError("name", core.ErrEmptyName)
	}
	if len(name) > 100 {
		return "", core.NewValidationError("name", errors.New("name too long (max 100 characters)"))
	}
	return name, nil
}
