package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/store"
)

var (
	_ store.ExpenseSource     = (*Store)(nil)
	_ store.ExpenseWriter     = (*Store)(nil)
	_ store.BudgetStore       = (*Store)(nil)
	_ store.CategoryDirectory = (*Store)(nil)
	_ store.AnalyticsReader   = (*Store)(nil)
)

var june = core.NewYearMonth(2025, time.June)

func fixedClock() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func int64p(v int64) *int64 { return &v }

func TestNewFromFilesSeedsAndDedupe(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	cats, _ := s.ListCategories(context.Background())
	if len(cats) != 3 {
		t.Fatalf("expected default categories, got %v", cats)
	}

	if err := os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte("# header\nFood\nRent\nFood\n\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s = NewFromFiles(dir)
	cats, _ = s.ListCategories(context.Background())
	if len(cats) != 2 || cats[0].Name != "Food" || cats[1].Name != "Rent" || cats[0].ID == cats[1].ID {
		t.Fatalf("unexpected categories: %v", cats)
	}
}

func TestBudgetLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New([]string{"Food"})

	overall, err := s.CreateBudget(ctx, store.BudgetInput{Month: june, Amount: core.Cents(50000)})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if overall.Category != nil || overall.ID == 0 {
		t.Fatalf("unexpected record %+v", overall)
	}

	food, err := s.CreateBudget(ctx, store.BudgetInput{Month: june, Amount: core.Cents(10000), CategoryID: int64p(1)})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if food.Category == nil || food.Category.Name != "Food" {
		t.Fatalf("category not resolved: %+v", food)
	}

	if _, err := s.CreateBudget(ctx, store.BudgetInput{Month: june, Amount: core.Cents(1)}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if _, err := s.CreateBudget(ctx, store.BudgetInput{Month: june, Amount: core.Cents(1), CategoryID: int64p(99)}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	updated, err := s.UpdateBudget(ctx, overall.ID, store.BudgetInput{Month: june, Amount: core.Cents(60000)})
	if err != nil || updated.ID != overall.ID || updated.Amount.Cents != 60000 {
		t.Fatalf("UpdateBudget = %+v, %v", updated, err)
	}

	if err := s.DeleteBudget(ctx, food.ID); err != nil {
		t.Fatalf("DeleteBudget: %v", err)
	}
	if err := s.DeleteBudget(ctx, food.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	all, _ := s.ListBudgets(ctx)
	if len(all) != 1 || all[0].Amount.Cents != 60000 {
		t.Fatalf("unexpected budgets %+v", all)
	}
}

func TestCreateBudgetRejectsNegative(t *testing.T) {
	s := New(nil)
	_, err := s.CreateBudget(context.Background(), store.BudgetInput{Month: june, Amount: core.Cents(-1)})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExpensesAndFilter(t *testing.T) {
	ctx := context.Background()
	s := New([]string{"Food", "Rent"})

	add := func(desc string, cents int64, date core.Date, cat *int64) core.Expense {
		t.Helper()
		e, err := s.CreateExpense(ctx, store.ExpenseInput{Description: desc, Amount: core.Cents(cents), Date: date, CategoryID: cat})
		if err != nil {
			t.Fatalf("CreateExpense(%s): %v", desc, err)
		}
		return e
	}
	add("groceries", 4550, core.NewDate(2025, 6, 10), int64p(1))
	rent := add("rent", 90000, core.NewDate(2025, 6, 1), int64p(2))
	add("coffee", 250, core.NewDate(2025, 5, 30), nil)

	all, _ := s.ListExpenses(ctx, store.ExpenseFilter{})
	if len(all) != 3 || all[0].Description != "coffee" {
		t.Fatalf("expected date-ordered expenses, got %+v", all)
	}

	from := core.NewDate(2025, 6, 1)
	filtered, _ := s.ListExpenses(ctx, store.ExpenseFilter{From: &from, CategoryID: int64p(1)})
	if len(filtered) != 1 || filtered[0].Description != "groceries" {
		t.Fatalf("unexpected filter result %+v", filtered)
	}

	if err := s.DeleteExpense(ctx, rent.ID); err != nil {
		t.Fatalf("DeleteExpense: %v", err)
	}
	if _, err := s.CreateExpense(ctx, store.ExpenseInput{Description: "", Amount: core.Cents(1), Date: from}); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateCategory(t *testing.T) {
	ctx := context.Background()
	s := New([]string{"Food"})
	c, err := s.CreateCategory(ctx, "  Travel ")
	if err != nil || c.Name != "Travel" {
		t.Fatalf("CreateCategory = %+v, %v", c, err)
	}
	if _, err := s.CreateCategory(ctx, "food"); err == nil {
		t.Fatal("expected duplicate error")
	}
	if _, err := s.CreateCategory(ctx, " "); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAnalytics(t *testing.T) {
	ctx := context.Background()
	s := New([]string{"Food"}, WithClock(fixedClock))
	for _, in := range []store.ExpenseInput{
		{Description: "a", Amount: core.Cents(15000), Date: core.NewDate(2025, 6, 2), CategoryID: int64p(1)},
		{Description: "b", Amount: core.Cents(10000), Date: core.NewDate(2025, 5, 20)},
	} {
		if _, err := s.CreateExpense(ctx, in); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.CreateBudget(ctx, store.BudgetInput{Month: june, Amount: core.Cents(10000), CategoryID: int64p(1)}); err != nil {
		t.Fatal(err)
	}

	summary, _ := s.Summary(ctx)
	if summary.Total.Cents != 15000 || summary.MonthOverMonthChange != 50 {
		t.Errorf("summary = %+v", summary)
	}
	forecast, _ := s.Forecast(ctx)
	if forecast.PredictedTotal.Cents != 30000 || forecast.Confidence != 0.5 {
		t.Errorf("forecast = %+v", forecast)
	}
	alerts, _ := s.Alerts(ctx)
	if len(alerts) != 1 {
		t.Errorf("alerts = %v", alerts)
	}
	trends, _ := s.Trends(ctx)
	if len(trends) != 2 || trends[0].Date != core.NewDate(2025, 5, 20) {
		t.Errorf("trends = %+v", trends)
	}
}

func TestResolverAgainstMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := New([]string{"Food"})
	s.SeedBudgets(core.BudgetRecord{ID: 10, Month: june, Amount: core.Cents(50000)})

	r := budget.NewResolver(s)
	if err := r.Load(ctx); err != nil {
		t.Fatal(err)
	}
	res, err := r.Select(core.NewSelection(june, core.Overall()))
	if err != nil || res.Mode != budget.ModeUpdate || res.RecordID != 10 {
		t.Fatalf("Select = %+v, %v", res, err)
	}
	if err := r.Delete(ctx, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Save(ctx, core.NewSelection(june, core.ForCategory(1)), core.Cents(2500)); err != nil {
		t.Fatal(err)
	}
	all, _ := s.ListBudgets(ctx)
	if len(all) != 1 || all[0].ID != 11 || all[0].Category == nil {
		t.Fatalf("unexpected store state %+v", all)
	}
}
