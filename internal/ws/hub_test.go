package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishQueuesMarshalledEvent(t *testing.T) {
	hub := NewHub()

	hub.Publish(map[string]interface{}{
		"type":        "document_status_changed",
		"document_id": 7,
	})

	select {
	case msg := <-hub.Broadcast:
		var event map[string]interface{}
		require.NoError(t, json.Unmarshal(msg, &event))
		assert.Equal(t, "document_status_changed", event["type"])
	default:
		t.Fatal("expected a queued broadcast message")
	}
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	hub := NewHub()

	// Fill the buffer; the overflowing publish must return, not block.
	for i := 0; i < cap(hub.Broadcast)+10; i++ {
		hub.Publish(map[string]interface{}{"seq": i})
	}
	assert.Len(t, hub.Broadcast, cap(hub.Broadcast))
}
