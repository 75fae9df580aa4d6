package services

import (
	"context"
	"log/slog"
	"sync"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/metrics"
)

// BudgetService serializes access to a budget resolver and announces
// confirmed changes.
type BudgetService struct {
	mu        sync.Mutex
	resolver  *budget.Resolver
	publisher events.Publisher
}

// NewBudgetService wraps resolver. publisher may be nil.
func NewBudgetService(resolver *budget.Resolver, publisher events.Publisher) *BudgetService {
	return &BudgetService{
		resolver:  resolver,
		publisher: publisher,
	}
}

func (s *BudgetService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver.Load(ctx)
}

func (s *BudgetService) Records() []core.BudgetRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver.Records()
}

func (s *BudgetService) InScope(month core.YearMonth) []core.BudgetRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver.InScope(month)
}

func (s *BudgetService) Resolve(sel core.Selection) (budget.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver.Resolve(sel)
}

func (s *BudgetService) Select(sel core.Selection) (budget.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver.Select(sel)
}

func (s *BudgetService) Edit(recordID int64) (budget.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver.Edit(recordID)
}

// Save creates or updates the budget of sel and publishes a saved event.
func (s *BudgetService) Save(ctx context.Context, sel core.Selection, amount core.Money) (core.BudgetRecord, error) {
	s.mu.Lock()
	rec, err := s.resolver.Save(ctx, sel, amount)
	s.mu.Unlock()

	metrics.BudgetOperations.WithLabelValues("save", metrics.Outcome(err)).Inc()
	if err != nil {
		return core.BudgetRecord{}, err
	}

	s.publish(ctx, events.NewSavedMessage(rec))
	return rec, nil
}

// Delete removes recordID, which must be the budget of sel, and publishes a
// deleted event.
func (s *BudgetService) Delete(ctx context.Context, sel core.Selection, recordID int64) error {
	s.mu.Lock()
	err := s.delete(ctx, sel, recordID)
	s.mu.Unlock()

	metrics.BudgetOperations.WithLabelValues("delete", metrics.Outcome(err)).Inc()
	if err != nil {
		return err
	}

	s.publish(ctx, events.NewDeletedMessage(recordID, sel))
	return nil
}

func (s *BudgetService) delete(ctx context.Context, sel core.Selection, recordID int64) error {
	if _, err := s.resolver.Select(sel); err != nil {
		return err
	}
	return s.resolver.Delete(ctx, recordID)
}

// publish never fails the caller: the store has already applied the change.
func (s *BudgetService) publish(ctx context.Context, msg *events.BudgetChangedMessage) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping budget change", "id", msg.ID)
		return
	}
	if err := s.publisher.PublishBudgetChange(ctx, msg); err != nil {
		metrics.BudgetEventsDropped.Inc()
		slog.ErrorContext(ctx, "Failed to publish budget change",
			"action", msg.Action,
			"id", msg.ID,
			"error", err)
	}
}
