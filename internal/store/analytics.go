package store

import (
	"errors"
	"fmt"
	"sort"

	"fintrack/internal/core"
)

// Errors a local store reports for requests it refuses.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("budget already exists for this month and scope")
)

// Uncategorized labels expenses without a category in summaries.
const Uncategorized = "Uncategorized"

// DailyTotals sums expenses per calendar day, oldest first.
func DailyTotals(expenses []core.Expense) []core.DatedAmount {
	sums := make(map[core.Date]core.Money)
	for _, e := range expenses {
		sums[e.Date] = sums[e.Date].Add(e.Amount)
	}
	out := make([]core.DatedAmount, 0, len(sums))
	for d, amount := range sums {
		out = append(out, core.DatedAmount{Date: d, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Summarize totals the expenses of month by category and compares the total
// with the month before.
func Summarize(expenses []core.Expense, month core.YearMonth) core.AnalyticsSummary {
	prev := month.Prev()
	summary := core.AnalyticsSummary{ByCategory: map[string]core.Money{}}
	var prevTotal core.Money
	for _, e := range expenses {
		switch core.MonthOf(e.Date) {
		case month:
			summary.Total = summary.Total.Add(e.Amount)
			name := Uncategorized
			if e.Category != nil {
				name = e.Category.Name
			}
			summary.ByCategory[name] = summary.ByCategory[name].Add(e.Amount)
		case prev:
			prevTotal = prevTotal.Add(e.Amount)
		}
	}
	summary.MonthOverMonthChange = core.MonthOverMonthPercent(prevTotal, summary.Total)
	return summary
}

// Project extrapolates the month-to-date total linearly over the whole month
// of today. Confidence is the elapsed share of the month.
func Project(monthToDate core.Money, today core.Date) core.Forecast {
	elapsed := int64(today.Day())
	days := int64(core.MonthOf(today).End().Day())
	predicted := (monthToDate.Cents*days*2 + elapsed) / (elapsed * 2)
	confidence := float64(elapsed*100/days) / 100
	return core.Forecast{PredictedTotal: core.Cents(predicted), Confidence: confidence}
}

// ExceededBudgets returns one message per budget of month whose scope has
// spent more than its amount, in record id order.
func ExceededBudgets(budgets []core.BudgetRecord, expenses []core.Expense, month core.YearMonth) []string {
	var inMonth []core.BudgetRecord
	for _, b := range budgets {
		if b.Month == month {
			inMonth = append(inMonth, b)
		}
	}
	sort.Slice(inMonth, func(i, j int) bool { return inMonth[i].ID < inMonth[j].ID })

	alerts := []string{}
	for _, b := range inMonth {
		var spent core.Money
		for _, e := range expenses {
			if !month.Contains(e.Date) {
				continue
			}
			if b.Category == nil || (e.Category != nil && e.Category.ID == b.Category.ID) {
				spent = spent.Add(e.Amount)
			}
		}
		if spent.Cents <= b.Amount.Cents {
			continue
		}
		label := "Overall budget"
		if b.Category != nil {
			label = fmt.Sprintf("Budget for %s", b.Category.Name)
		}
		alerts = append(alerts, fmt.Sprintf("%s exceeded in %s: spent %s of %s", label, month, spent, b.Amount))
	}
	return alerts
}
