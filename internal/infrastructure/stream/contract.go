package stream

import (
	"time"

	"github.com/hilthontt/relay/internal/domain"
)

// Envelope wraps every frame on the websocket transport.
type Envelope struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Data   any    `json:"data,omitempty"`
}

// ConnectedPayload is the data of the first frame on both transports.
type ConnectedPayload struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	At     int64  `json:"at"`
}

func NewConnected(roomID string, at time.Time) ConnectedPayload {
	return ConnectedPayload{
		Type:   EventConnected,
		RoomID: roomID,
		At:     at.UnixMilli(),
	}
}

func NewConnectedEnvelope(roomID string, at time.Time) *Envelope {
	return &Envelope{
		Type:   EventConnected,
		RoomID: roomID,
		Data:   NewConnected(roomID, at),
	}
}

func NewMessageEnvelope(roomID string, msg domain.Message) *Envelope {
	return &Envelope{
		Type:   EventMessage,
		RoomID: roomID,
		Data:   msg,
	}
}
