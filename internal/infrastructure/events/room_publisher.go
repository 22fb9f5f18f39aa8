package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hilthontt/relay/internal/domain"
)

// Publisher announces room lifecycle changes to whoever listens downstream.
type Publisher interface {
	PublishRoomCreated(ctx context.Context, room *domain.Room) error
	PublishRoomJoined(ctx context.Context, room *domain.Room, side domain.Side) error
	PublishMessageSent(ctx context.Context, roomID string, msg domain.Message) error
}

// Broker is the subset of messaging.RabbitMQ the publisher needs.
type Broker interface {
	PublishMessage(ctx context.Context, routingKey string, body []byte) error
}

type RoomPublisher struct {
	broker Broker
	now    func() time.Time
}

func NewRoomPublisher(broker Broker) *RoomPublisher {
	return &RoomPublisher{
		broker: broker,
		now:    time.Now,
	}
}

func (p *RoomPublisher) PublishRoomCreated(ctx context.Context, room *domain.Room) error {
	return p.publish(ctx, EventRoomCreated, room.ID, RoomCreatedData{
		Code:      room.Code,
		CreatedAt: room.CreatedAt,
	})
}

func (p *RoomPublisher) PublishRoomJoined(ctx context.Context, room *domain.Room, side domain.Side) error {
	return p.publish(ctx, EventRoomJoined, room.ID, RoomJoinedData{
		Side: side.String(),
	})
}

func (p *RoomPublisher) PublishMessageSent(ctx context.Context, roomID string, msg domain.Message) error {
	return p.publish(ctx, EventMessageSent, roomID, msg)
}

func (p *RoomPublisher) publish(ctx context.Context, routingKey, roomID string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", routingKey, err)
	}

	body, err := json.Marshal(Envelope{
		RoomID:     roomID,
		OccurredAt: p.now().UTC(),
		Data:       raw,
	})
	if err != nil {
		return fmt.Errorf("marshal %s envelope: %w", routingKey, err)
	}

	return p.broker.PublishMessage(ctx, routingKey, body)
}

type nopPublisher struct{}

// NewNopPublisher is used when no broker is configured.
func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) PublishRoomCreated(context.Context, *domain.Room) error { return nil }

func (nopPublisher) PublishRoomJoined(context.Context, *domain.Room, domain.Side) error { return nil }

func (nopPublisher) PublishMessageSent(context.Context, string, domain.Message) error { return nil }
