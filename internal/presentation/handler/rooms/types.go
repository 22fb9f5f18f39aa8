package rooms

import (
	"time"

	"github.com/hilthontt/relay/internal/application/relay"
)

type joinRoomRequest struct {
	Code string `json:"code"`
}

type createRoomResponse struct {
	RoomID    string    `json:"roomId"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"createdAt"`
}

type joinRoomResponse struct {
	RoomID string `json:"roomId"`
	Side   string `json:"side"`
	Code   string `json:"code"`
}

type roomResponse struct {
	RoomID          string    `json:"roomId"`
	Code            string    `json:"code"`
	CreatedAt       time.Time `json:"createdAt"`
	Sides           []string  `json:"sides"`
	MessageCount    int       `json:"messageCount"`
	SubscriberCount int       `json:"subscriberCount"`
}

func newRoomResponse(info relay.RoomInfo) roomResponse {
	sides := make([]string, 0, len(info.Sides))
	for _, s := range info.Sides {
		sides = append(sides, s.String())
	}

	return roomResponse{
		RoomID:          info.RoomID,
		Code:            info.Code,
		CreatedAt:       info.CreatedAt,
		Sides:           sides,
		MessageCount:    info.MessageCount,
		SubscriberCount: info.SubscriberCount,
	}
}
