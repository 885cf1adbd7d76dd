package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type draftUpdatedData struct {
	UserID     string `json:"user_id"`
	LineCount  int    `json:"line_count"`
	GrandTotal int64  `json:"grand_total"`
}

func TestNewEvent_PopulatesEnvelope(t *testing.T) {
	data := draftUpdatedData{UserID: "user-1", LineCount: 2, GrandTotal: 6497}

	event, err := NewEvent("supply.draft.updated", "user-1", "draft", "draft-order-service", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "supply.draft.updated", event.EventType)
	assert.Equal(t, "user-1", event.AggregateID)
	assert.Equal(t, "draft", event.AggregateType)
	assert.Equal(t, 1, event.Version)
	assert.Equal(t, "draft-order-service", event.Source)
	assert.False(t, event.Timestamp.IsZero())
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	event, err := NewEvent("supply.order.submitted", "user-2", "draft", "draft-order-service",
		draftUpdatedData{UserID: "user-2", LineCount: 1, GrandTotal: 500})
	require.NoError(t, err)
	event.WithCorrelationID("corr-1")

	raw, err := event.Marshal()
	require.NoError(t, err)

	decoded, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, "corr-1", decoded.CorrelationID)

	var data draftUpdatedData
	require.NoError(t, decoded.UnmarshalData(&data))
	assert.Equal(t, "user-2", data.UserID)
	assert.Equal(t, int64(500), data.GrandTotal)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("supply.draft.updated", "user-1", "draft", "svc", make(chan int))
	assert.Error(t, err)
}
