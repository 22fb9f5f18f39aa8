package domain

import "errors"

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrInvalidCode  = errors.New("join code is required")
	ErrInvalidSide  = errors.New(`side must be "A" or "B"`)
	ErrEmptyText    = errors.New("message text is empty")
	ErrTextTooLong  = errors.New("message text is too long")
	ErrInvalidEvent = errors.New("last event id is not a message id")

	ErrSubscriberClosed = errors.New("subscriber closed")
	ErrSubscriberSlow   = errors.New("subscriber buffer full")
)
