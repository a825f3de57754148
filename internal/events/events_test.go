package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPublisher struct {
	calls int
}

func (f *failingPublisher) Publish(ctx context.Context, event Event) error {
	f.calls++
	return errors.New("broker down")
}

func (f *failingPublisher) Close() error { return nil }

func TestEventJSONRoundTrip(t *testing.T) {
	event := NewEvent(DebtCancelled, "group-1", "expense-1", 30)
	event.From = "B"
	event.To = "A"

	data, err := event.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"debt.cancelled"`)

	decoded, err := EventFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, event.Type, decoded.Type)
	assert.Equal(t, "B", decoded.From)
	assert.Equal(t, 30.0, decoded.Amount)
	assert.True(t, event.Timestamp.Equal(decoded.Timestamp))
}

func TestNotify(t *testing.T) {
	publisher := &failingPublisher{}

	assert.NotPanics(t, func() {
		Notify(context.Background(), publisher, NewEvent(ExpenseCreated, "g", "e", 1))
	})
	assert.Equal(t, 1, publisher.calls)

	assert.NoError(t, NopPublisher{}.Publish(context.Background(), Event{}))
	assert.NoError(t, NopPublisher{}.Close())
}
