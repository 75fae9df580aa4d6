// Package http provides the JSON view-model server.
//
// This file implements utilities for parsing and validating request data.
// Every parse failure is a core.ValidationError so handlers map it to 400.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"fintrack/internal/core"
	"fintrack/internal/store"
	"fintrack/internal/trend"
)

const maxBodyBytes = 1 << 16

// ParseMonth reads ?month=YYYY-MM, defaulting to the current month.
func ParseMonth(query url.Values) (core.YearMonth, error) {
	v := strings.TrimSpace(query.Get("month"))
	if v == "" {
		return core.CurrentMonth(), nil
	}
	m, err := core.ParseYearMonth(v)
	if err != nil {
		return core.YearMonth{}, core.NewValidationError("month", err)
	}
	return m, nil
}

// ParseSelection reads ?month= and ?scope=. A missing scope is overall.
func ParseSelection(query url.Values) (core.Selection, error) {
	month, err := ParseMonth(query)
	if err != nil {
		return core.Selection{}, err
	}
	scope, err := core.ParseScope(query.Get("scope"))
	if err != nil {
		return core.Selection{}, err
	}
	return core.NewSelection(month, scope), nil
}

// ParseGranularity reads ?granularity=, defaulting to day.
func ParseGranularity(query url.Values) (trend.Granularity, error) {
	v := strings.TrimSpace(query.Get("granularity"))
	if v == "" {
		return trend.Day, nil
	}
	return trend.ParseGranularity(v)
}

// ParseDateRange reads optional ?from= and ?to= dates. Zero values are open
// bounds.
func ParseDateRange(query url.Values) (from, to core.Date, err error) {
	if v := strings.TrimSpace(query.Get("from")); v != "" {
		if from, err = core.ParseDate(v); err != nil {
			return core.Date{}, core.Date{}, core.NewValidationError("from", err)
		}
	}
	if v := strings.TrimSpace(query.Get("to")); v != "" {
		if to, err = core.ParseDate(v); err != nil {
			return core.Date{}, core.Date{}, core.NewValidationError("to", err)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return core.Date{}, core.Date{}, core.NewValidationError("to", errors.New("end date before start date"))
	}
	return from, to, nil
}

// ParseCategoryID reads an optional positive ?category= id.
func ParseCategoryID(query url.Values) (*int64, error) {
	v := strings.TrimSpace(query.Get("category"))
	if v == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return nil, core.NewValidationError("category", fmt.Errorf("%w: %q", core.ErrInvalidID, v))
	}
	return &id, nil
}

// ParseExpenseFilter builds a store filter from the list query.
func ParseExpenseFilter(query url.Values) (store.ExpenseFilter, error) {
	var f store.ExpenseFilter
	from, to, err := ParseDateRange(query)
	if err != nil {
		return f, err
	}
	if !from.IsZero() {
		f.From = &from
	}
	if !to.IsZero() {
		f.To = &to
	}
	if f.CategoryID, err = ParseCategoryID(query); err != nil {
		return f, err
	}
	for _, p := range []struct {
		key string
		dst **core.Money
	}{{"minAmount", &f.MinAmount}, {"maxAmount", &f.MaxAmount}} {
		v := strings.TrimSpace(query.Get(p.key))
		if v == "" {
			continue
		}
		m, err := core.ParseAmount(v)
		if err != nil {
			return f, core.NewValidationError(p.key, err)
		}
		*p.dst = &m
	}
	return f, nil
}

// ParseIDParam reads a positive id from the route.
func ParseIDParam(r *http.Request, name string) (int64, error) {
	v := chi.URLParam(r, name)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError(name, fmt.Errorf("%w: %q", core.ErrInvalidID, v))
	}
	return id, nil
}

type amountBody struct {
	Amount *core.Money `json:"amount"`
}

// ParseAmountBody decodes {"amount": 12.50}. The sign is left to the
// resolver so a negative amount fails with the same error everywhere.
func ParseAmountBody(r *http.Request) (core.Money, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	var body amountBody
	if err := dec.Decode(&body); err != nil {
		return core.Money{}, core.NewValidationError("body", err)
	}
	if body.Amount == nil {
		return core.Money{}, core.NewValidationError("amount", errors.New("amount is required"))
	}
	return *body.Amount, nil
}
