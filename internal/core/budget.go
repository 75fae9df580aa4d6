package core

import (
	"fmt"
	"strconv"
	"strings"
)

const overallScope = "overall"

type (
	// Scope is either the overall budget or a single category. Category ids
	// are positive, so the zero Scope is the overall scope.
	Scope struct {
		CategoryID int64
	}

	// Selection is the (month, scope) pair a budget form is editing.
	Selection struct {
		Month YearMonth `json:"month"`
		Scope Scope     `json:"scope"`
	}

	// BudgetRecord is a spending limit for one month, either overall
	// (Category == nil) or for a single category.
	BudgetRecord struct {
		ID       int64     `json:"id"`
		Amount   Money     `json:"amount"`
		Month    YearMonth `json:"month"`
		Category *Category `json:"category,omitempty"`
	}
)

// Overall returns the scope of budgets without a category.
func Overall() Scope { return Scope{} }

// ForCategory returns the scope of a single category.
func ForCategory(id int64) Scope { return Scope{CategoryID: id} }

// ParseScope accepts "overall" (or empty) and a positive category id.
func ParseScope(s string) (Scope, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, overallScope) {
		return Overall(), nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return Scope{}, NewValidationError("scope", fmt.Errorf("%w: %q", ErrInvalidID, s))
	}
	return ForCategory(id), nil
}

func (s Scope) IsOverall() bool { return s.CategoryID == 0 }

func (s Scope) String() string {
	if s.IsOverall() {
		return overallScope
	}
	return strconv.FormatInt(s.CategoryID, 10)
}

func (s Scope) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Scope) UnmarshalText(b []byte) error {
	parsed, err := ParseScope(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CategoryIDPtr returns nil for the overall scope, as the service expects.
func (s Scope) CategoryIDPtr() *int64 {
	if s.IsOverall() {
		return nil
	}
	id := s.CategoryID
	return &id
}

func NewSelection(month YearMonth, scope Scope) Selection {
	return Selection{Month: month, Scope: scope}
}

func (s Selection) Validate() error {
	if err := s.Month.Validate(); err != nil {
		return NewValidationError("month", err)
	}
	if s.Scope.CategoryID < 0 {
		return NewValidationError("scope", ErrInvalidID)
	}
	return nil
}

func (s Selection) String() string {
	return s.Month.String() + "/" + s.Scope.String()
}

// Scope returns the scope the record governs.
func (b BudgetRecord) Scope() Scope {
	if b.Category == nil {
		return Overall()
	}
	return ForCategory(b.Category.ID)
}

func (b BudgetRecord) IsOverall() bool { return b.Category == nil }

// Selection returns the (month, scope) the record governs.
func (b BudgetRecord) Selection() Selection {
	return NewSelection(b.Month, b.Scope())
}

// Governs reports whether the record is the budget for sel. The overall
// condition (no category) and the category condition (same id) are
// disjoint, so a record never matches both.
func (b BudgetRecord) Governs(sel Selection) bool {
	if b.Month != sel.Month {
		return false
	}
	if sel.Scope.IsOverall() {
		return b.Category == nil
	}
	return b.Category != nil && b.Category.ID == sel.Scope.CategoryID
}

func (b BudgetRecord) Validate() error {
	if err := b.Month.Validate(); err != nil {
		return NewValidationError("month", err)
	}
	return b.Amount.ValidateNonNegative()
}
