package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// connWrapper serializes writes; gorilla allows one concurrent writer.
type connWrapper struct {
	conn      *websocket.Conn
	writeWait time.Duration
	mutex     sync.Mutex
}

func newConnWrapper(c *websocket.Conn, writeWait time.Duration) *connWrapper {
	return &connWrapper{conn: c, writeWait: writeWait}
}

func (w *connWrapper) WriteJSON(v any) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeWait))
	return w.conn.WriteJSON(v)
}

func (w *connWrapper) Ping() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	return w.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(w.writeWait))
}

// Close sends a close frame when possible and tears the connection down.
func (w *connWrapper) Close(code int, reason string) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	_ = w.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(w.writeWait),
	)
	return w.conn.Close()
}
