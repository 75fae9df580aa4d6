package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Trends returns the per-day expense totals, oldest first.
func (r *SQLiteRepository) Trends(ctx context.Context) ([]core.DatedAmount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT date, SUM(amount_cents) FROM expenses GROUP BY date ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	out := []core.DatedAmount{}
	for rows.Next() {
		var (
			date  string
			cents int64
		)
		if err := rows.Scan(&date, &cents); err != nil {
			return nil, fmt.Errorf("scan daily total: %w", err)
		}
		d, err := core.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("daily total: %w", err)
		}
		out = append(out, core.DatedAmount{Date: d, Amount: core.Cents(cents)})
	}
	return out, rows.Err()
}

// Summary totals the current month by category and compares it with the
// month before.
func (r *SQLiteRepository) Summary(ctx context.Context) (core.AnalyticsSummary, error) {
	month := core.MonthOf(r.today())
	summary := core.AnalyticsSummary{ByCategory: map[string]core.Money{}}

	rows, err := r.db.QueryContext(ctx, `
		SELECT COALESCE(c.name, ?), SUM(e.amount_cents)
		FROM expenses e LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.date BETWEEN ? AND ?
		GROUP BY 1`,
		store.Uncategorized, month.Start().String(), month.End().String())
	if err != nil {
		return core.AnalyticsSummary{}, fmt.Errorf("summary by category: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			name  string
			cents int64
		)
		if err := rows.Scan(&name, &cents); err != nil {
			return core.AnalyticsSummary{}, fmt.Errorf("scan summary: %w", err)
		}
		summary.ByCategory[name] = core.Cents(cents)
		summary.Total = summary.Total.Add(core.Cents(cents))
	}
	if err := rows.Err(); err != nil {
		return core.AnalyticsSummary{}, err
	}

	prev, err := r.monthTotal(ctx, month.Prev())
	if err != nil {
		return core.AnalyticsSummary{}, err
	}
	summary.MonthOverMonthChange = core.MonthOverMonthPercent(prev, summary.Total)
	return summary, nil
}

// Forecast projects the current month from its total so far.
func (r *SQLiteRepository) Forecast(ctx context.Context) (core.Forecast, error) {
	today := r.today()
	total, err := r.monthTotal(ctx, core.MonthOf(today))
	if err != nil {
		return core.Forecast{}, err
	}
	return store.Project(total, today), nil
}

// Alerts reports the budgets of the current month that have been exceeded.
func (r *SQLiteRepository) Alerts(ctx context.Context) ([]string, error) {
	month := core.MonthOf(r.today())
	budgets, err := r.queryBudgets(ctx, budgetQuery+` WHERE b.month = ? ORDER BY b.id`, month.String())
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return []string{}, nil
	}
	from, to := month.Start(), month.End()
	expenses, err := r.ListExpenses(ctx, store.ExpenseFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	return store.ExceededBudgets(budgets, expenses, month), nil
}

func (r *SQLiteRepository) monthTotal(ctx context.Context, month core.YearMonth) (core.Money, error) {
	var cents int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM expenses WHERE date BETWEEN ? AND ?`,
		month.Start().String(), month.End().String()).Scan(&cents)
	if err != nil {
		return core.Money{}, fmt.Errorf("month total %s: %w", month, err)
	}
	return core.Cents(cents), nil
}

func (r *SQLiteRepository) today() core.Date {
	return core.DateOf(r.now())
}
