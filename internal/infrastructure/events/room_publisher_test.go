package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hilthontt/relay/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	routingKey string
	body       []byte
}

type mockBroker struct {
	published []published
}

func (m *mockBroker) PublishMessage(_ context.Context, routingKey string, body []byte) error {
	m.published = append(m.published, published{routingKey: routingKey, body: body})
	return nil
}

func TestRoomPublisher(t *testing.T) {
	broker := &mockBroker{}
	pub := NewRoomPublisher(broker)
	occurred := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	pub.now = func() time.Time { return occurred }

	room := domain.NewRoom("AB12CD")
	msg := domain.Message{ID: "01HZY", From: domain.SideA, Text: "Hello", At: occurred}

	ctx := context.Background()
	require.NoError(t, pub.PublishRoomCreated(ctx, room))
	require.NoError(t, pub.PublishRoomJoined(ctx, room, domain.SideB))
	require.NoError(t, pub.PublishMessageSent(ctx, room.ID, msg))

	require.Len(t, broker.published, 3)
	assert.Equal(t, EventRoomCreated, broker.published[0].routingKey)
	assert.Equal(t, EventRoomJoined, broker.published[1].routingKey)
	assert.Equal(t, EventMessageSent, broker.published[2].routingKey)

	var env Envelope
	require.NoError(t, json.Unmarshal(broker.published[1].body, &env))
	assert.Equal(t, room.ID, env.RoomID)
	assert.True(t, occurred.Equal(env.OccurredAt))
	assert.JSONEq(t, `{"side":"B"}`, string(env.Data))

	require.NoError(t, json.Unmarshal(broker.published[2].body, &env))
	assert.JSONEq(t, `{"id":"01HZY","from":"A","text":"Hello","at":1772359200000}`, string(env.Data))
}
