package stream

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/relay/internal/domain"
	"github.com/hilthontt/relay/internal/infrastructure/logging"
	"github.com/hilthontt/relay/internal/infrastructure/metrics"
)

const maxInboundMessageSize = 512

// ServeWS upgrades the request and pushes frames until the peer goes away, the
// client is dropped or the request context ends. Inbound frames are read only
// to notice a close. The caller cancels the subscription afterwards.
func (s *Streamer) ServeWS(w http.ResponseWriter, r *http.Request, client *Client, backlog []domain.Message) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error.
		s.logger.Warn(logging.Stream, logging.Subscribe, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.RoomID:       client.RoomID,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	defer s.metrics.StreamOpened(metrics.TransportWebSocket)()

	wc := newConnWrapper(conn, s.cfg.WriteWait)
	defer wc.Close(websocket.CloseNormalClosure, "")

	peerGone := make(chan struct{})
	go s.readPump(conn, peerGone)

	if err := wc.WriteJSON(NewConnectedEnvelope(client.RoomID, s.now())); err != nil {
		s.logClosed(client, "write failed", err)
		return
	}
	for _, msg := range backlog {
		if err := wc.WriteJSON(NewMessageEnvelope(client.RoomID, msg)); err != nil {
			s.logClosed(client, "write failed", err)
			return
		}
	}

	ping := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logClosed(client, "server shutdown", nil)
			return

		case <-peerGone:
			s.logClosed(client, "client gone", nil)
			return

		case <-ping.C:
			if err := wc.Ping(); err != nil {
				s.logClosed(client, "ping failed", err)
				return
			}

		case msg, ok := <-client.Message:
			if !ok {
				s.logClosed(client, "subscriber dropped", nil)
				return
			}
			if err := wc.WriteJSON(NewMessageEnvelope(client.RoomID, msg)); err != nil {
				s.logClosed(client, "write failed", err)
				return
			}
		}
	}
}

// readPump discards inbound frames and closes peerGone on the first read
// error, which includes a missed pong.
func (s *Streamer) readPump(conn *websocket.Conn, peerGone chan<- struct{}) {
	defer close(peerGone)

	pongWait := 2 * s.cfg.HeartbeatInterval

	conn.SetReadLimit(maxInboundMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
