// Package events publishes group activity (expenses added, debts cancelled)
// to a message broker so other systems can react without polling.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

// Type identifies the kind of change an Event describes.
type Type string

const (
	ExpenseCreated Type = "expense.created"
	ExpenseUpdated Type = "expense.updated"
	ExpenseDeleted Type = "expense.deleted"
	DebtCancelled  Type = "debt.cancelled"
)

// Event is a lightweight notification. Consumers fetch full details by ID.
type Event struct {
	Type      Type      `json:"type"`
	GroupID   string    `json:"group_id"`
	ExpenseID string    `json:"expense_id"`
	Amount    float64   `json:"amount"`
	From      string    `json:"from,omitempty"`
	To        string    `json:"to,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(t Type, groupID, expenseID string, amount float64) Event {
	return Event{
		Type:      t,
		GroupID:   groupID,
		ExpenseID: expenseID,
		Amount:    amount,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// EventFromJSON decodes an event produced by ToJSON.
func EventFromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher discards every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NopPublisher) Close() error                                  { return nil }

// Notify publishes the event and logs a failure instead of returning it.
// The write that produced the event has already been committed.
func Notify(ctx context.Context, p Publisher, event Event) {
	if err := p.Publish(ctx, event); err != nil {
		slog.Warn("Failed to publish event",
			"type", event.Type,
			"group_id", event.GroupID,
			"expense_id", event.ExpenseID,
			"error", err,
		)
	}
}
