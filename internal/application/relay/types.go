package relay

import (
	"time"

	"github.com/hilthontt/relay/internal/domain"
)

// RoomSummary is what the creator gets back. It never carries history.
type RoomSummary struct {
	RoomID    string
	Code      string
	CreatedAt time.Time
}

type JoinResult struct {
	RoomID string
	Code   string
	Side   domain.Side
}

type RoomInfo struct {
	RoomID          string
	Code            string
	CreatedAt       time.Time
	Sides           []domain.Side
	MessageCount    int
	SubscriberCount int
}

// Subscription is an open feed on a room. Backlog holds the messages missed
// since the requested event id; everything after arrives through the
// subscriber. Cancel is safe to call more than once.
type Subscription struct {
	RoomID  string
	Backlog []domain.Message
	Cancel  func()
}
