package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuseats/internal/model"
)

func TestNewEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 11, 30, 0, 0, time.FixedZone("COT", -5*3600))
	o := model.Order{ID: "o-1", OrderNumber: "0042", CustomerID: "u-1", Status: model.StatusReady}

	e := NewEvent(EventOrderReady, o, at)
	assert.Equal(t, EventOrderReady, e.Type)
	assert.Equal(t, "0042", e.OrderNumber)
	assert.Equal(t, model.StatusReady, e.Status)
	assert.Equal(t, time.UTC, e.OccurredAt.Location())

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "order.ready",
		"orderId": "o-1",
		"orderNumber": "0042",
		"customerId": "u-1",
		"status": "ready",
		"occurredAt": "2025-03-01T16:30:00Z"
	}`, string(data))
}

func TestLogPublisher(t *testing.T) {
	assert.NoError(t, LogPublisher{}.Publish(context.Background(), Event{Type: EventOrderPlaced}))
}
