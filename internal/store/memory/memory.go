// Package memory is an in-process implementation of every store port. It
// backs tests and the memory backend.
package memory

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Store struct {
	mu         sync.Mutex
	now        func() time.Time
	nextID     int64
	categories []core.Category
	expenses   []core.Expense
	budgets    []core.BudgetRecord
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for the analytics that depend on today.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns a store seeded with the given category names.
func New(categories []string, opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	for _, name := range dedupe(categories) {
		s.nextID++
		s.categories = append(s.categories, core.Category{ID: s.nextID, Name: name})
	}
	return s
}

// NewFromFiles seeds categories from base/seed_categories.txt, one per line.
// Blank lines and # comments are skipped.
func NewFromFiles(base string, opts ...Option) *Store {
	cats := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = []string{"Food", "Housing", "Transport"}
	}
	return New(cats, opts...)
}

// SeedBudgets adds records as given, without the uniqueness check, so a
// store can reproduce data the remote service already holds.
func (s *Store) SeedBudgets(records ...core.BudgetRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		if r.ID > s.nextID {
			s.nextID = r.ID
		}
		s.budgets = append(s.budgets, r)
	}
}

func (s *Store) ListExpenses(_ context.Context, f store.ExpenseFilter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []core.Expense{}
	for _, e := range s.expenses {
		if f.Match(e) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, in store.ExpenseInput) (core.Expense, error) {
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e := core.Expense{Description: strings.TrimSpace(in.Description), Amount: in.Amount, Date: in.Date}
	if in.CategoryID != nil {
		cat, ok := s.category(*in.CategoryID)
		if !ok {
			return core.Expense{}, fmt.Errorf("category %d: %w", *in.CategoryID, store.ErrNotFound)
		}
		e.Category = &cat
	}
	s.nextID++
	e.ID = s.nextID
	s.expenses = append(s.expenses, e)
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.expenses {
		if e.ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("expense %d: %w", id, store.ErrNotFound)
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Category{}, s.categories...), nil
}

func (s *Store) CreateCategory(_ context.Context, name string) (core.Category, error) {
	name, err := store.ValidateCategoryName(name)
	if err != nil {
		return core.Category{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if strings.EqualFold(c.Name, name) {
			return core.Category{}, fmt.Errorf("category %q already exists", name)
		}
	}
	s.nextID++
	c := core.Category{ID: s.nextID, Name: name}
	s.categories = append(s.categories, c)
	return c, nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.BudgetRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.BudgetRecord{}, s.budgets...), nil
}

func (s *Store) CreateBudget(_ context.Context, in store.BudgetInput) (core.BudgetRecord, error) {
	if err := in.Validate(); err != nil {
		return core.BudgetRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.budgetFor(in)
	if err != nil {
		return core.BudgetRecord{}, err
	}
	if s.governed(rec.Selection(), 0) {
		return core.BudgetRecord{}, store.ErrConflict
	}
	s.nextID++
	rec.ID = s.nextID
	s.budgets = append(s.budgets, rec)
	return rec, nil
}

func (s *Store) UpdateBudget(_ context.Context, id int64, in store.BudgetInput) (core.BudgetRecord, error) {
	if err := in.Validate(); err != nil {
		return core.BudgetRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.budgetIndex(id)
	if i < 0 {
		return core.BudgetRecord{}, fmt.Errorf("budget %d: %w", id, store.ErrNotFound)
	}
	rec, err := s.budgetFor(in)
	if err != nil {
		return core.BudgetRecord{}, err
	}
	if s.governed(rec.Selection(), id) {
		return core.BudgetRecord{}, store.ErrConflict
	}
	rec.ID = id
	s.budgets[i] = rec
	return rec, nil
}

func (s *Store) DeleteBudget(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.budgetIndex(id)
	if i < 0 {
		return fmt.Errorf("budget %d: %w", id, store.ErrNotFound)
	}
	s.budgets = append(s.budgets[:i], s.budgets[i+1:]...)
	return nil
}

func (s *Store) Summary(_ context.Context) (core.AnalyticsSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.Summarize(s.expenses, core.MonthOf(s.today())), nil
}

func (s *Store) Trends(_ context.Context) ([]core.DatedAmount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.DailyTotals(s.expenses), nil
}

func (s *Store) Forecast(_ context.Context) (core.Forecast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	today := s.today()
	month := core.MonthOf(today)
	var total core.Money
	for _, e := range s.expenses {
		if month.Contains(e.Date) {
			total = total.Add(e.Amount)
		}
	}
	return store.Project(total, today), nil
}

func (s *Store) Alerts(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return store.ExceededBudgets(s.budgets, s.expenses, core.MonthOf(s.today())), nil
}

func (s *Store) today() core.Date {
	return core.DateOf(s.now())
}

func (s *Store) category(id int64) (core.Category, bool) {
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

func (s *Store) budgetFor(in store.BudgetInput) (core.BudgetRecord, error) {
	rec := core.BudgetRecord{Month: in.Month, Amount: in.Amount}
	if in.CategoryID != nil {
		cat, ok := s.category(*in.CategoryID)
		if !ok {
			return core.BudgetRecord{}, fmt.Errorf("category %d: %w", *in.CategoryID, store.ErrNotFound)
		}
		rec.Category = &cat
	}
	return rec, nil
}

// governed reports whether a record other than except already governs sel.
func (s *Store) governed(sel core.Selection, except int64) bool {
	for _, b := range s.budgets {
		if b.ID != except && b.Governs(sel) {
			return true
		}
	}
	return false
}

func (s *Store) budgetIndex(id int64) int {
	for i, b := range s.budgets {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// dedupe drops blanks and repeated names, keeping input order.
func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
