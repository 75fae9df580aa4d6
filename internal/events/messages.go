package events

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// Action is what happened to a budget record.
type Action string

const (
	ActionSaved   Action = "saved"
	ActionDeleted Action = "deleted"
)

// BudgetChangedMessage announces a confirmed change to a budget record.
// Amount is absent for deletions; CategoryID is absent for the overall scope.
type BudgetChangedMessage struct {
	Action     Action         `json:"action"`
	ID         int64          `json:"id"`
	Month      core.YearMonth `json:"month"`
	CategoryID *int64         `json:"categoryId,omitempty"`
	Amount     *core.Money    `json:"amount,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// NewSavedMessage describes a record the store has just created or updated.
func NewSavedMessage(rec core.BudgetRecord) *BudgetChangedMessage {
	amount := rec.Amount
	return &BudgetChangedMessage{
		Action:     ActionSaved,
		ID:         rec.ID,
		Month:      rec.Month,
		CategoryID: rec.Scope().CategoryIDPtr(),
		Amount:     &amount,
		Timestamp:  time.Now(),
	}
}

// NewDeletedMessage describes a record removed from sel.
func NewDeletedMessage(id int64, sel core.Selection) *BudgetChangedMessage {
	return &BudgetChangedMessage{
		Action:     ActionDeleted,
		ID:         id,
		Month:      sel.Month,
		CategoryID: sel.Scope.CategoryIDPtr(),
		Timestamp:  time.Now(),
	}
}

// Selection returns the (month, scope) the change applies to.
func (m *BudgetChangedMessage) Selection() core.Selection {
	scope := core.Overall()
	if m.CategoryID != nil {
		scope = core.ForCategory(*m.CategoryID)
	}
	return core.NewSelection(m.Month, scope)
}

// ToJSON converts the message to JSON bytes
func (m *BudgetChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetChangedMessageFromJSON decodes and checks a message.
func BudgetChangedMessageFromJSON(data []byte) (*BudgetChangedMessage, error) {
	var msg BudgetChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Action {
	case ActionSaved:
		if msg.Amount == nil {
			return nil, fmt.Errorf("saved message %d has no amount", msg.ID)
		}
	case ActionDeleted:
	default:
		return nil, fmt.Errorf("unknown action %q", msg.Action)
	}
	if msg.ID <= 0 {
		return nil, fmt.Errorf("invalid record id %d", msg.ID)
	}
	if err := msg.Month.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
