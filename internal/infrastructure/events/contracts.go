package events

import (
	"encoding/json"
	"time"
)

// Routing keys on the relay exchange.
const (
	EventRoomCreated = "room.created"
	EventRoomJoined  = "room.joined"
	EventMessageSent = "message.sent"
)

// Envelope is the body of every lifecycle event.
type Envelope struct {
	RoomID     string          `json:"roomId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data,omitempty"`
}

type RoomCreatedData struct {
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}

type RoomJoinedData struct {
	Side string `json:"side"`
}
