package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/core"
	"fintrack/internal/events"
	"fintrack/internal/store/memory"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*events.BudgetChangedMessage
	err  error
}

func (p *recordingPublisher) PublishBudgetChange(_ context.Context, msg *events.BudgetChangedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

var june = core.NewYearMonth(2025, time.June)

func newService(t *testing.T, pub events.Publisher) (*BudgetService, *memory.Store) {
	t.Helper()
	st := memory.New([]string{"Food", "Housing"})
	st.SeedBudgets(core.BudgetRecord{ID: 1, Month: june, Amount: core.Cents(50000)})
	svc := NewBudgetService(budget.NewResolver(st), pub)
	if err := svc.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return svc, st
}

func TestBudgetServiceSavePublishes(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newService(t, pub)
	ctx := context.Background()
	sel := core.NewSelection(june, core.ForCategory(1))

	rec, err := svc.Save(ctx, sel, core.Cents(12000))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	res, err := svc.Resolve(sel)
	if err != nil || !res.IsUpdate() || res.RecordID != rec.ID {
		t.Fatalf("after save resolve = %+v, %v", res, err)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].Action != events.ActionSaved || pub.msgs[0].ID != rec.ID {
		t.Fatalf("published %+v", pub.msgs)
	}
}

func TestBudgetServicePublishFailureDoesNotFailSave(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, _ := newService(t, pub)

	sel := core.NewSelection(june, core.Overall())
	rec, err := svc.Save(context.Background(), sel, core.Cents(60000))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID != 1 || rec.Amount.Cents != 60000 {
		t.Fatalf("expected in-place update of record 1, got %+v", rec)
	}
}

func TestBudgetServiceValidationSkipsPublish(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _ := newService(t, pub)

	_, err := svc.Save(context.Background(), core.NewSelection(june, core.Overall()), core.Cents(-1))
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("nothing should be published, got %+v", pub.msgs)
	}
}

func TestBudgetServiceDelete(t *testing.T) {
	pub := &recordingPublisher{}
	svc, st := newService(t, pub)
	ctx := context.Background()
	sel := core.NewSelection(june, core.Overall())

	if err := svc.Delete(ctx, core.NewSelection(june, core.ForCategory(2)), 1); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("delete outside update mode: expected validation error, got %v", err)
	}
	if err := svc.Delete(ctx, sel, 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	res, _ := svc.Resolve(sel)
	if res.Mode != budget.ModeCreate {
		t.Fatalf("expected create mode after delete, got %+v", res)
	}
	remaining, _ := st.ListBudgets(ctx)
	if len(remaining) != 0 {
		t.Fatalf("store still holds %+v", remaining)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].Action != events.ActionDeleted || pub.msgs[0].CategoryID != nil {
		t.Fatalf("published %+v", pub.msgs)
	}
}

func TestBudgetServiceNilPublisher(t *testing.T) {
	svc, _ := newService(t, nil)
	if _, err := svc.Save(context.Background(), core.NewSelection(june, core.ForCategory(2)), core.Cents(0)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := len(svc.InScope(june)); got != 2 {
		t.Fatalf("expected 2 records in scope, got %d", got)
	}
}

func TestBudgetServiceConcurrentSaves(t *testing.T) {
	svc, _ := newService(t, &recordingPublisher{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			if _, err := svc.Save(ctx, core.NewSelection(june, core.Overall()), core.Cents(amount)); err != nil {
				t.Errorf("Save: %v", err)
			}
		}(int64(i * 100))
	}
	wg.Wait()

	if got := len(svc.Records()); got != 1 {
		t.Fatalf("concurrent updates must not duplicate the record, got %d records", got)
	}
}
