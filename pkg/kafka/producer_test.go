package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_Fields(t *testing.T) {
	type OrderData struct {
		OrderID string `json:"order_id"`
		Total   int64  `json:"total"`
	}

	data := OrderData{OrderID: "ord-123", Total: 4999}
	event, err := NewEvent("order.placed", "ord-123", "order", "storefront", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID, "EventID should be a non-empty UUID")
	assert.Equal(t, "order.placed", event.EventType)
	assert.Equal(t, "ord-123", event.AggregateID)
	assert.Equal(t, "order", event.AggregateType)
	assert.Equal(t, "storefront", event.Source)
	assert.Equal(t, 1, event.Version)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)
	assert.NotNil(t, event.Metadata)

	var roundTripped OrderData
	require.NoError(t, json.Unmarshal(event.Data, &roundTripped))
	assert.Equal(t, data, roundTripped)
}

func TestNewEvent_InvalidData(t *testing.T) {
	// Channels are not serializable to JSON.
	_, err := NewEvent("test.event", "agg-1", "test", "storefront", make(chan int))
	require.Error(t, err)
}

func TestEvent_Marshal_Unmarshal(t *testing.T) {
	original, err := NewEvent("product.updated", "prod-456", "product", "storefront", map[string]string{"name": "Tulip Bundle"})
	require.NoError(t, err)
	original.CorrelationID = "corr-abc"
	original.Metadata["user"] = "admin"

	bytes, err := original.Marshal()
	require.NoError(t, err)

	restored, err := UnmarshalEvent(bytes)
	require.NoError(t, err)

	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, original.EventType, restored.EventType)
	assert.Equal(t, original.AggregateID, restored.AggregateID)
	assert.Equal(t, original.CorrelationID, restored.CorrelationID)
	assert.Equal(t, original.Metadata, restored.Metadata)
	assert.JSONEq(t, string(original.Data), string(restored.Data))
}

func TestEvent_WithCorrelationID(t *testing.T) {
	event, err := NewEvent("test.event", "agg-1", "test", "storefront", nil)
	require.NoError(t, err)

	result := event.WithCorrelationID("corr-xyz")
	assert.Same(t, event, result, "WithCorrelationID should return the same event for chaining")
	assert.Equal(t, "corr-xyz", event.CorrelationID)
}

func TestEvent_UnmarshalData(t *testing.T) {
	type ProductPayload struct {
		Name  string `json:"name"`
		Price int64  `json:"price"`
	}

	payload := ProductPayload{Name: "Orchid", Price: 7999}
	event, err := NewEvent("product.created", "prod-1", "product", "storefront", payload)
	require.NoError(t, err)

	var target ProductPayload
	require.NoError(t, event.UnmarshalData(&target))
	assert.Equal(t, payload, target)
}

func TestUnmarshalEvent_InvalidJSON(t *testing.T) {
	_, err := UnmarshalEvent([]byte(`{broken json`))
	require.Error(t, err)
}

func TestDefaultProducerConfig(t *testing.T) {
	brokers := []string{"broker1:9092", "broker2:9092"}
	cfg := DefaultProducerConfig(brokers)

	assert.Equal(t, brokers, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Millisecond, cfg.BatchTimeout)
	assert.False(t, cfg.Async)
}

func TestTopic_Format(t *testing.T) {
	tests := []struct {
		domain string
		action string
		want   string
	}{
		{"order", "placed", "florista.order.placed"},
		{"cart", "synced", "florista.cart.synced"},
		{"product", "created", "florista.product.created"},
		{"user", "registered", "florista.user.registered"},
	}

	for _, tt := range tests {
		t.Run(tt.domain+"."+tt.action, func(t *testing.T) {
			assert.Equal(t, tt.want, Topic(tt.domain, tt.action))
		})
	}
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(t.Context(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}
