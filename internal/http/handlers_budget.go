package http

import (
	"net/http"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

type budgetsResponse struct {
	Month   core.YearMonth      `json:"month"`
	Budgets []core.BudgetRecord `json:"budgets"`
}

type resolveResponse struct {
	Selection core.Selection `json:"selection"`
	budget.Resolution
}

type saveResponse struct {
	Budget     core.BudgetRecord `json:"budget"`
	Resolution budget.Resolution `json:"resolution"`
}

// handleBudgets lists the month's budgets, overall and per category.
func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonth(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	records := s.deps.Budgets.InScope(month)
	if records == nil {
		records = []core.BudgetRecord{}
	}
	writeJSON(w, http.StatusOK, budgetsResponse{Month: month, Budgets: records})
}

// handleResolve makes the selection current and reports create or update
// mode with the prefill amount.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	sel, err := ParseSelection(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpResolve, err)
		return
	}
	res, err := s.deps.Budgets.Select(sel)
	if err != nil {
		writeError(w, r, log.OpResolve, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse{Selection: sel, Resolution: res})
}

func (s *Server) handleEditBudget(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r, "id")
	if err != nil {
		writeError(w, r, log.OpResolve, err)
		return
	}
	res, err := s.deps.Budgets.Edit(id)
	if err != nil {
		writeError(w, r, log.OpResolve, err)
		return
	}
	var sel core.Selection
	for _, rec := range s.deps.Budgets.Records() {
		if rec.ID == id {
			sel = rec.Selection()
			break
		}
	}
	writeJSON(w, http.StatusOK, resolveResponse{Selection: sel, Resolution: res})
}

// handleSaveBudget creates or updates the budget of ?month=&scope=.
func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sel, err := ParseSelection(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	amount, err := ParseAmountBody(r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}

	rec, err := s.deps.Budgets.Save(ctx, sel, amount)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	res, err := s.deps.Budgets.Resolve(sel)
	if err != nil {
		writeError(w, r, log.OpResolve, err)
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Budget saved",
		log.NewFields().WithSelection(sel).WithBudget(rec).ToSlice()...)
	writeJSON(w, http.StatusOK, saveResponse{Budget: rec, Resolution: res})
}

// handleDeleteBudget removes the record, which must be the budget of the
// ?month=&scope= selection.
func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := ParseIDParam(r, "id")
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	sel, err := ParseSelection(r.URL.Query())
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	if err := s.deps.Budgets.Delete(ctx, sel, id); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}

	log.FromContext(ctx).InfoContext(ctx, "Budget deleted",
		log.NewFields().WithSelection(sel).ToSlice()...)
	w.WriteHeader(http.StatusNoContent)
}

// handleReload refreshes the cache from the store.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Budgets.Load(r.Context()); err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"budgets": len(s.deps.Budgets.Records())})
}
