package stream

// Frame types shared by both transports.
const (
	EventConnected = "connected"
	EventMessage   = "message"
)
