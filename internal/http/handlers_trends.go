package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
	"fintrack/internal/trend"
)

type trendsResponse struct {
	Granularity trend.Granularity `json:"granularity"`
	Buckets     []trend.Bucket    `json:"buckets"`
	Total       core.Money        `json:"total"`
}

// handleTrends serves the spending chart. With ?category= the series is
// built from that category's expenses instead of the service's totals.
func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	g, err := ParseGranularity(q)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	from, to, err := ParseDateRange(q)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	categoryID, err := ParseCategoryID(q)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}

	var series []core.DatedAmount
	if categoryID != nil {
		expenses, err := s.deps.Expenses.ListExpenses(ctx, store.ExpenseFilter{CategoryID: categoryID})
		if err != nil {
			writeError(w, r, log.OpAggregate, core.AsTransportError("list expenses", err))
			return
		}
		series = store.DailyTotals(expenses)
	} else {
		series, err = s.deps.Analytics.Trends(ctx)
		if err != nil {
			writeError(w, r, log.OpAggregate, core.AsTransportError("load trends", err))
			return
		}
	}

	buckets, err := trend.Aggregate(trend.Filter(series, from, to), g)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}

	log.FromContext(ctx).DebugContext(ctx, "Trends aggregated",
		log.FieldGranularity, string(g),
		log.FieldBuckets, len(buckets))
	writeJSON(w, http.StatusOK, trendsResponse{Granularity: g, Buckets: buckets, Total: trend.Total(buckets)})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	g, err := ParseGranularity(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	d, err := s.deps.Dashboard.Load(r.Context(), g)
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.deps.Categories.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, core.AsTransportError("list categories", err))
		return
	}
	if cats == nil {
		cats = []core.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := ParseExpenseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	expenses, err := s.deps.Expenses.ListExpenses(r.Context(), f)
	if err != nil {
		writeError(w, r, log.OpList, core.AsTransportError("list expenses", err))
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}
