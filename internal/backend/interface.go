// Package backend selects and builds the store that fintrack talks to.
package backend

import (
	"context"

	"fintrack/internal/store"
)

// Backend is the union of the store ports.
type Backend interface {
	store.ExpenseSource
	store.ExpenseWriter
	store.BudgetStore
	store.CategoryDirectory
	store.AnalyticsReader
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Close runs the cleanup function, if any.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}
