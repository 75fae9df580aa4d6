// Package budget resolves which budget record, if any, governs a selected
// (month, scope) pair and applies create, update and delete against the
// budget store.
//
// A Resolver is not safe for concurrent use. Callers keep at most one
// mutating call in flight per resolver.
package budget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

// Mode tells a budget form whether saving creates a record or updates one.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// ErrUnknownRecord is returned when a record id is not in the cache.
var ErrUnknownRecord = errors.New("unknown budget record")

// Resolution is the outcome of resolving a selection. PrefillAmount is nil
// and RecordID zero in create mode.
type Resolution struct {
	Mode          Mode        `json:"mode"`
	PrefillAmount *core.Money `json:"prefillAmount"`
	RecordID      int64       `json:"recordId,omitempty"`
}

func (r Resolution) IsUpdate() bool { return r.Mode == ModeUpdate }

// Resolver holds the cached budget records and the working selection.
type Resolver struct {
	store     store.BudgetStore
	records   []core.BudgetRecord
	selection core.Selection
	current   Resolution
}

func NewResolver(s store.BudgetStore) *Resolver {
	return &Resolver{
		store:   s,
		current: Resolution{Mode: ModeCreate},
	}
}

// Load replaces the cache with the store's full record set. On failure the
// cache is left as it was. The working selection, if any, is resolved again
// against the new set.
func (r *Resolver) Load(ctx context.Context) error {
	records, err := r.store.ListBudgets(ctx)
	if err != nil {
		return core.AsTransportError("list budgets", err)
	}
	r.records = append([]core.BudgetRecord(nil), records...)

	if r.selection.Month.IsZero() {
		return nil
	}
	res, err := r.Resolve(r.selection)
	if err != nil {
		r.current = Resolution{}
		return err
	}
	r.current = res
	return nil
}

// Records returns a copy of the cached records.
func (r *Resolver) Records() []core.BudgetRecord {
	return append([]core.BudgetRecord(nil), r.records...)
}

// Selection returns the working selection.
func (r *Resolver) Selection() core.Selection { return r.selection }

// Current returns the resolution of the working selection.
func (r *Resolver) Current() Resolution { return r.current }

// Resolve scans the cache for the record governing sel. It does not change
// the working selection. More than one match is reported as an
// IntegrityAmbiguityError rather than picking one.
func (r *Resolver) Resolve(sel core.Selection) (Resolution, error) {
	if err := sel.Validate(); err != nil {
		return Resolution{}, err
	}

	var matches []core.BudgetRecord
	for _, rec := range r.records {
		if rec.Governs(sel) {
			matches = append(matches, rec)
		}
	}

	switch len(matches) {
	case 0:
		return Resolution{Mode: ModeCreate}, nil
	case 1:
		amount := matches[0].Amount
		return Resolution{Mode: ModeUpdate, PrefillAmount: &amount, RecordID: matches[0].ID}, nil
	default:
		ids := make([]int64, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		return Resolution{}, &core.IntegrityAmbiguityError{Selection: sel, RecordIDs: ids}
	}
}

// Select makes sel the working selection and publishes its resolution.
func (r *Resolver) Select(sel core.Selection) (Resolution, error) {
	res, err := r.Resolve(sel)
	if err != nil {
		var amb *core.IntegrityAmbiguityError
		if errors.As(err, &amb) {
			r.selection = sel
			r.current = Resolution{}
		}
		return Resolution{}, err
	}
	r.selection = sel
	r.current = res
	return res, nil
}

// Edit selects the scope governed by an existing record.
func (r *Resolver) Edit(recordID int64) (Resolution, error) {
	i := r.indexOf(recordID)
	if i < 0 {
		return Resolution{}, core.NewValidationError("recordId", fmt.Errorf("%w: %d", ErrUnknownRecord, recordID))
	}
	return r.Select(r.records[i].Selection())
}

// InScope returns the cached records for month, whatever their category.
func (r *Resolver) InScope(month core.YearMonth) []core.BudgetRecord {
	var out []core.BudgetRecord
	for _, rec := range r.records {
		if rec.Month == month {
			out = append(out, rec)
		}
	}
	return out
}

// Save creates or updates the budget for sel. A negative amount fails before
// the store is called. The cache changes only after the store succeeds.
func (r *Resolver) Save(ctx context.Context, sel core.Selection, amount core.Money) (core.BudgetRecord, error) {
	if err := amount.ValidateNonNegative(); err != nil {
		return core.BudgetRecord{}, err
	}
	res, err := r.Resolve(sel)
	if err != nil {
		return core.BudgetRecord{}, err
	}

	in := store.BudgetInputFor(sel, amount)
	var saved core.BudgetRecord
	if res.IsUpdate() {
		saved, err = r.store.UpdateBudget(ctx, res.RecordID, in)
		if err != nil {
			return core.BudgetRecord{}, core.AsTransportError("update budget", err)
		}
		r.records[r.indexOf(res.RecordID)] = saved
	} else {
		saved, err = r.store.CreateBudget(ctx, in)
		if err != nil {
			return core.BudgetRecord{}, core.AsTransportError("create budget", err)
		}
		r.records = append(r.records, saved)
	}

	slog.DebugContext(ctx, "Budget saved",
		"id", saved.ID,
		"month", saved.Month.String(),
		"scope", saved.Scope().String(),
		"amount", saved.Amount.String(),
		"mode", string(res.Mode))

	r.selection = sel
	if next, err := r.Resolve(sel); err == nil {
		r.current = next
	}
	return saved, nil
}

// Delete removes the record the working selection resolves to. It fails
// unless the current resolution is an update of recordID.
func (r *Resolver) Delete(ctx context.Context, recordID int64) error {
	if !r.current.IsUpdate() || r.current.RecordID != recordID {
		return core.NewValidationError("recordId",
			fmt.Errorf("record %d is not the budget of %s", recordID, r.selection))
	}
	if err := r.store.DeleteBudget(ctx, recordID); err != nil {
		return core.AsTransportError("delete budget", err)
	}

	if i := r.indexOf(recordID); i >= 0 {
		r.records = append(r.records[:i], r.records[i+1:]...)
	}
	slog.DebugContext(ctx, "Budget deleted", "id", recordID, "selection", r.selection.String())

	if next, err := r.Resolve(r.selection); err == nil {
		r.current = next
	} else {
		r.current = Resolution{}
	}
	return nil
}

func (r *Resolver) indexOf(id int64) int {
	for i, rec := range r.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}
