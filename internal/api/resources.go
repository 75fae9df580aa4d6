package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/trend"
)

var (
	_ store.ExpenseSource     = (*Client)(nil)
	_ store.ExpenseWriter     = (*Client)(nil)
	_ store.BudgetStore       = (*Client)(nil)
	_ store.CategoryDirectory = (*Client)(nil)
	_ store.AnalyticsReader   = (*Client)(nil)
)

type expensePayload struct {
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	Date        core.Date  `json:"date"`
}

type budgetPayload struct {
	Month      core.YearMonth `json:"month"`
	Amount     core.Money     `json:"amount"`
	CategoryID *int64         `json:"categoryId,omitempty"`
}

type categoryPayload struct {
	Name string `json:"name"`
}

func filterQuery(f store.ExpenseFilter) url.Values {
	q := url.Values{}
	if f.From != nil {
		q.Set("from", f.From.String())
	}
	if f.To != nil {
		q.Set("to", f.To.String())
	}
	if f.CategoryID != nil {
		q.Set("category", strconv.FormatInt(*f.CategoryID, 10))
	}
	if f.MinAmount != nil {
		q.Set("minAmount", f.MinAmount.String())
	}
	if f.MaxAmount != nil {
		q.Set("maxAmount", f.MaxAmount.String())
	}
	return q
}

func (c *Client) ListExpenses(ctx context.Context, f store.ExpenseFilter) ([]core.Expense, error) {
	var out []core.Expense
	if err := c.do(ctx, "list expenses", http.MethodGet, "/expenses", filterQuery(f), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateExpense posts the expense. The category travels as a query
// parameter, as the service expects.
func (c *Client) CreateExpense(ctx context.Context, in store.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}
	var q url.Values
	if in.CategoryID != nil {
		q = url.Values{"categoryId": {strconv.FormatInt(*in.CategoryID, 10)}}
	}
	body := expensePayload{Description: strings.TrimSpace(in.Description), Amount: in.Amount, Date: in.Date}
	var out core.Expense
	if err := c.do(ctx, "create expense", http.MethodPost, "/expenses", q, body, &out); err != nil {
		return core.Expense{}, err
	}
	return out, nil
}

func (c *Client) DeleteExpense(ctx context.Context, id int64) error {
	if err := validateID(id); err != nil {
		return err
	}
	return c.do(ctx, "delete expense", http.MethodDelete, idPath("/expenses", id), nil, nil, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Category, error) {
	var out []core.Category
	if err := c.do(ctx, "list categories", http.MethodGet, "/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (core.Category, error) {
	name, err := store.ValidateCategoryName(name)
	if err != nil {
		return core.Category{}, err
	}
	var out core.Category
	if err := c.do(ctx, "create category", http.MethodPost, "/categories", nil, categoryPayload{Name: name}, &out); err != nil {
		return core.Category{}, err
	}
	return out, nil
}

func (c *Client) ListBudgets(ctx context.Context) ([]core.BudgetRecord, error) {
	var out []core.BudgetRecord
	if err := c.do(ctx, "list budgets", http.MethodGet, "/budgets", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateBudget(ctx context.Context, in store.BudgetInput) (core.BudgetRecord, error) {
	if err := in.Validate(); err != nil {
		return core.BudgetRecord{}, err
	}
	var out core.BudgetRecord
	body := budgetPayload{Month: in.Month, Amount: in.Amount, CategoryID: in.CategoryID}
	if err := c.do(ctx, "create budget", http.MethodPost, "/budgets", nil, body, &out); err != nil {
		return core.BudgetRecord{}, err
	}
	return out, nil
}

func (c *Client) UpdateBudget(ctx context.Context, id int64, in store.BudgetInput) (core.BudgetRecord, error) {
	if err := validateID(id); err != nil {
		return core.BudgetRecord{}, err
	}
	if err := in.Validate(); err != nil {
		return core.BudgetRecord{}, err
	}
	var out core.BudgetRecord
	body := budgetPayload{Month: in.Month, Amount: in.Amount, CategoryID: in.CategoryID}
	if err := c.do(ctx, "update budget", http.MethodPut, idPath("/budgets", id), nil, body, &out); err != nil {
		return core.BudgetRecord{}, err
	}
	return out, nil
}

func (c *Client) DeleteBudget(ctx context.Context, id int64) error {
	if err := validateID(id); err != nil {
		return err
	}
	return c.do(ctx, "delete budget", http.MethodDelete, idPath("/budgets", id), nil, nil, nil)
}

func (c *Client) Summary(ctx context.Context) (core.AnalyticsSummary, error) {
	var out core.AnalyticsSummary
	if err := c.do(ctx, "summary", http.MethodGet, "/analytics/summary", nil, nil, &out); err != nil {
		return core.AnalyticsSummary{}, err
	}
	if out.ByCategory == nil {
		out.ByCategory = map[string]core.Money{}
	}
	return out, nil
}

// Trends fetches the per-day totals map and turns it into a sorted series.
func (c *Client) Trends(ctx context.Context) ([]core.DatedAmount, error) {
	var totals map[string]core.Money
	if err := c.do(ctx, "trends", http.MethodGet, "/analytics/trends", nil, nil, &totals); err != nil {
		return nil, err
	}
	series, err := trend.FromDailyTotals(totals)
	if err != nil {
		return nil, core.NewTransportError("trends", fmt.Errorf("malformed response: %v", err))
	}
	return series, nil
}

func (c *Client) Forecast(ctx context.Context) (core.Forecast, error) {
	var out core.Forecast
	if err := c.do(ctx, "forecast", http.MethodGet, "/analytics/forecast", nil, nil, &out); err != nil {
		return core.Forecast{}, err
	}
	return out, nil
}

func (c *Client) Alerts(ctx context.Context) ([]string, error) {
	out := []string{}
	if err := c.do(ctx, "alerts", http.MethodGet, "/alerts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
