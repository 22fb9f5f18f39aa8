package stream

import (
	"testing"

	"github.com/hilthontt/relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Deliver(t *testing.T) {
	client := NewClient("room", "sse", 2)

	require.NoError(t, client.Deliver(domain.Message{ID: "1"}))
	require.NoError(t, client.Deliver(domain.Message{ID: "2"}))

	err := client.Deliver(domain.Message{ID: "3"})
	assert.ErrorIs(t, err, domain.ErrSubscriberSlow)
	assert.True(t, client.Closed())

	// Queued messages are still drained before the channel reports closed.
	var ids []string
	for msg := range client.Message {
		ids = append(ids, msg.ID)
	}
	assert.Equal(t, []string{"1", "2"}, ids)

	assert.ErrorIs(t, client.Deliver(domain.Message{ID: "4"}), domain.ErrSubscriberClosed)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	client := NewClient("room", "websocket", 0)

	assert.NotPanics(t, func() {
		client.Close()
		client.Close()
	})
	assert.ErrorIs(t, client.Deliver(domain.Message{}), domain.ErrSubscriberClosed)
}
