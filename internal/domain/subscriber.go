package domain

// Subscriber receives messages accepted by a room. Deliver must not block:
// the room calls it while holding its lock. Returning an error drops the
// subscriber from the room.
type Subscriber interface {
	Deliver(msg Message) error
}

// SubscriberFunc adapts a plain function to the Subscriber interface.
type SubscriberFunc func(msg Message) error

func (f SubscriberFunc) Deliver(msg Message) error {
	return f(msg)
}
