package stream

import (
	"sync"

	"github.com/google/uuid"
	"github.com/hilthontt/relay/internal/domain"
)

// Client is one open push stream. The room hands messages to Deliver while
// holding its lock, so Deliver only ever does a non-blocking send.
type Client struct {
	ID        string
	RoomID    string
	Transport string
	Message   chan domain.Message

	mu     sync.Mutex
	closed bool
}

func NewClient(roomID, transport string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 1
	}

	return &Client{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Transport: transport,
		Message:   make(chan domain.Message, buffer),
	}
}

// Deliver queues msg for the writer. A full buffer closes the client: the
// writer drains what is queued, ends the stream, and the browser reconnects
// with its last event id to pick up the rest.
func (c *Client) Deliver(msg domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrSubscriberClosed
	}

	select {
	case c.Message <- msg:
		return nil
	default:
		c.closed = true
		close(c.Message)
		return domain.ErrSubscriberSlow
	}
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.Message)
	}
}

func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}
