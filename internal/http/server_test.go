package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/store"
	"fintrack/internal/store/memory"
)

func int64p(v int64) *int64 { return &v }

func newTestServer(t *testing.T, seed ...core.BudgetRecord) (*Server, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }
	st := memory.New([]string{"Food", "Housing"}, memory.WithClock(clock))
	st.SeedBudgets(seed...)

	for _, in := range []store.ExpenseInput{
		{Description: "groceries", Amount: core.Cents(1250), Date: core.NewDate(2025, 6, 2), CategoryID: int64p(1)},
		{Description: "bread", Amount: core.Cents(350), Date: core.NewDate(2025, 6, 8), CategoryID: int64p(1)},
		{Description: "rent", Amount: core.Cents(90000), Date: core.NewDate(2025, 6, 9), CategoryID: int64p(2)},
	} {
		if _, err := st.CreateExpense(ctx, in); err != nil {
			t.Fatalf("CreateExpense: %v", err)
		}
	}

	svc := services.NewBudgetService(budget.NewResolver(st), nil)
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	logger := log.New(log.Config{Level: log.ParseLevel("error"), Output: io.Discard})
	srv := NewServer(":0", Deps{
		Budgets:    svc,
		Dashboard:  services.NewDashboardLoader(st),
		Analytics:  st,
		Expenses:   st,
		Categories: st,
	}, logger)
	return srv, st
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(method, target, r))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	return v
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		if rec := do(t, srv, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("%s status=%d", path, rec.Code)
		}
	}
}

func TestTrendsWeekly(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/trends?granularity=week", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	body := rec.Body.String()
	for _, want := range []string{`"key":"2025-06-02","start":"2025-06-02","amount":16.00`, `"key":"2025-06-09"`, `"total":916.00`} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %s in %s", want, body)
		}
	}
}

func TestTrendsCategoryAndRange(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/trends?category=1&from=2025-06-03", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body)
	}
	got := decode[trendsResponse](t, rec)
	if len(got.Buckets) != 1 || got.Buckets[0].Key != "2025-06-08" || got.Total.Cents != 350 {
		t.Fatalf("unexpected %+v", got)
	}
}

func TestTrendsValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, q := range []string{"granularity=year", "from=june", "from=2025-06-10&to=2025-06-01", "category=-2"} {
		rec := do(t, srv, http.MethodGet, "/api/trends?"+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status=%d", q, rec.Code)
		}
	}
}

func TestResolveCreateThenSaveThenUpdate(t *testing.T) {
	srv, _ := newTestServer(t, core.BudgetRecord{ID: 10, Month: core.NewYearMonth(2025, time.June), Amount: core.Cents(50000)})

	rec := do(t, srv, http.MethodGet, "/api/budgets/resolve?month=2025-06&scope=overall", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"mode":"update","prefillAmount":500.00,"recordId":10`) {
		t.Fatalf("overall resolve: %d %s", rec.Code, rec.Body)
	}

	rec = do(t, srv, http.MethodGet, "/api/budgets/resolve?month=2025-06&scope=1", "")
	if !strings.Contains(rec.Body.String(), `"mode":"create","prefillAmount":null`) {
		t.Fatalf("category resolve: %s", rec.Body)
	}

	rec = do(t, srv, http.MethodPut, "/api/budgets?month=2025-06&scope=1", `{"amount":75.25}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save: %d %s", rec.Code, rec.Body)
	}
	saved := decode[saveResponse](t, rec)
	if saved.Resolution.Mode != budget.ModeUpdate || saved.Resolution.RecordID != saved.Budget.ID || saved.Budget.Amount.Cents != 7525 {
		t.Fatalf("unexpected save response %+v", saved)
	}

	rec = do(t, srv, http.MethodGet, "/api/budgets?month=2025-06", "")
	list := decode[budgetsResponse](t, rec)
	if len(list.Budgets) != 2 {
		t.Fatalf("expected 2 budgets in June, got %+v", list.Budgets)
	}
}

func TestSaveRejectsBadAmounts(t *testing.T) {
	srv, _ := newTestServer(t)
	for _, body := range []string{`{"amount":-1}`, `{}`, `{"amount":"abc"}`, `not json`, `{"amount":1,"extra":true}`} {
		rec := do(t, srv, http.MethodPut, "/api/budgets?month=2025-06", body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status=%d", body, rec.Code)
		}
	}
}

func TestResolveAmbiguity(t *testing.T) {
	june := core.NewYearMonth(2025, time.June)
	srv, _ := newTestServer(t,
		core.BudgetRecord{ID: 1, Month: june, Amount: core.Cents(100)},
		core.BudgetRecord{ID: 2, Month: june, Amount: core.Cents(200)},
	)
	rec := do(t, srv, http.MethodGet, "/api/budgets/resolve?month=2025-06", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status=%d", rec.Code)
	}
	body := decode[errorResponse](t, rec)
	if body.Kind != "ambiguity" || len(body.RecordIDs) != 2 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestDeleteBudget(t *testing.T) {
	june := core.NewYearMonth(2025, time.June)
	srv, st := newTestServer(t, core.BudgetRecord{ID: 10, Month: june, Amount: core.Cents(50000)})

	if rec := do(t, srv, http.MethodDelete, "/api/budgets/10?month=2025-06&scope=1", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("delete with a create-mode selection: status=%d", rec.Code)
	}
	if rec := do(t, srv, http.MethodDelete, "/api/budgets/10?month=2025-06&scope=overall", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status=%d body=%s", rec.Code, rec.Body)
	}
	left, _ := st.ListBudgets(context.Background())
	if len(left) != 0 {
		t.Fatalf("store still holds %+v", left)
	}
	rec := do(t, srv, http.MethodGet, "/api/budgets/resolve?month=2025-06", "")
	if !strings.Contains(rec.Body.String(), `"mode":"create"`) {
		t.Fatalf("expected create mode after delete: %s", rec.Body)
	}
}

func TestEditBudget(t *testing.T) {
	srv, _ := newTestServer(t, core.BudgetRecord{ID: 7, Month: core.NewYearMonth(2025, time.May), Amount: core.Cents(100), Category: &core.Category{ID: 2, Name: "Housing"}})

	rec := do(t, srv, http.MethodGet, "/api/budgets/7/edit", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"selection":{"month":"2025-05","scope":"2"}`) {
		t.Fatalf("edit: %d %s", rec.Code, rec.Body)
	}
	if rec := do(t, srv, http.MethodGet, "/api/budgets/99/edit", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown id: status=%d", rec.Code)
	}
}

func TestDashboardAndLists(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/dashboard?granularity=month", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: %d %s", rec.Code, rec.Body)
	}
	d := decode[services.Dashboard](t, rec)
	if d.Summary.Total.Cents != 91600 || len(d.Trend) != 1 || d.TopCategory == nil || d.TopCategory.Name != "Housing" {
		t.Fatalf("unexpected dashboard %+v", d)
	}

	rec = do(t, srv, http.MethodGet, "/api/categories", "")
	if cats := decode[[]core.Category](t, rec); len(cats) != 2 {
		t.Fatalf("categories = %+v", cats)
	}

	rec = do(t, srv, http.MethodGet, "/api/expenses?minAmount=5&category=1", "")
	if exp := decode[[]core.Expense](t, rec); len(exp) != 1 || exp[0].Description != "groceries" {
		t.Fatalf("expenses = %+v", exp)
	}
}

func TestResponsesCarryRequestID(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv, http.MethodGet, "/healthz", "")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing X-Request-ID header")
	}
}
