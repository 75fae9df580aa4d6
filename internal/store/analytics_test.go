package store

import (
	"testing"
	"time"

	"fintrack/internal/core"
)

var (
	food = &core.Category{ID: 1, Name: "Food"}
	rent = &core.Category{ID: 2, Name: "Rent"}
)

func expense(date string, cents int64, cat *core.Category) core.Expense {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Expense{Description: "x", Date: d, Amount: core.Cents(cents), Category: cat}
}

func TestDailyTotals(t *testing.T) {
	got := DailyTotals([]core.Expense{
		expense("2025-06-03", 100, food),
		expense("2025-06-01", 250, nil),
		expense("2025-06-03", 50, rent),
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 days, got %+v", got)
	}
	if got[0].Date.String() != "2025-06-01" || got[0].Amount.Cents != 250 {
		t.Errorf("day 0 = %+v", got[0])
	}
	if got[1].Date.String() != "2025-06-03" || got[1].Amount.Cents != 150 {
		t.Errorf("day 1 = %+v", got[1])
	}
}

func TestSummarize(t *testing.T) {
	june := core.NewYearMonth(2025, time.June)
	s := Summarize([]core.Expense{
		expense("2025-05-10", 10000, food),
		expense("2025-06-02", 6000, food),
		expense("2025-06-05", 5000, rent),
		expense("2025-06-07", 1000, nil),
		expense("2025-07-01", 99999, food),
	}, june)

	if s.Total.Cents != 12000 {
		t.Errorf("Total = %d", s.Total.Cents)
	}
	if s.ByCategory["Food"].Cents != 6000 || s.ByCategory["Rent"].Cents != 5000 || s.ByCategory[Uncategorized].Cents != 1000 {
		t.Errorf("ByCategory = %v", s.ByCategory)
	}
	if s.MonthOverMonthChange != 20 {
		t.Errorf("MonthOverMonthChange = %v", s.MonthOverMonthChange)
	}
}

func TestProject(t *testing.T) {
	tests := []struct {
		name       string
		total      int64
		today      core.Date
		want       int64
		confidence float64
	}{
		{"first day of 30-day month", 1000, core.NewDate(2025, 6, 1), 30000, 0.03},
		{"half of 30-day month", 15000, core.NewDate(2025, 6, 15), 30000, 0.5},
		{"last day", 12345, core.NewDate(2025, 6, 30), 12345, 1},
		{"rounds to nearest cent", 1, core.NewDate(2025, 6, 8), 4, 0.26},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Project(core.Cents(tt.total), tt.today)
			if f.PredictedTotal.Cents != tt.want {
				t.Errorf("PredictedTotal = %d, want %d", f.PredictedTotal.Cents, tt.want)
			}
			if f.Confidence != tt.confidence {
				t.Errorf("Confidence = %v, want %v", f.Confidence, tt.confidence)
			}
		})
	}
}

func TestExceededBudgets(t *testing.T) {
	june := core.NewYearMonth(2025, time.June)
	budgets := []core.BudgetRecord{
		{ID: 2, Month: june, Amount: core.Cents(5000), Category: food},
		{ID: 1, Month: june, Amount: core.Cents(100000)},
		{ID: 3, Month: june, Amount: core.Cents(5000), Category: rent},
		{ID: 4, Month: june.Next(), Amount: core.Cents(1)},
	}
	expenses := []core.Expense{
		expense("2025-06-02", 6000, food),
		expense("2025-06-05", 5000, rent),
	}
	got := ExceededBudgets(budgets, expenses, june)
	if len(got) != 1 {
		t.Fatalf("expected 1 alert, got %v", got)
	}
	want := "Budget for Food exceeded in 2025-06: spent 60.00 of 50.00"
	if got[0] != want {
		t.Errorf("alert = %q, want %q", got[0], want)
	}
}
