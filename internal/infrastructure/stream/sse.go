package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hilthontt/relay/internal/domain"
	"github.com/hilthontt/relay/internal/infrastructure/metrics"
)

// ServeSSE writes an event stream until the request context ends, the client
// is dropped, or a write fails. The caller owns the subscription and cancels
// it once ServeSSE returns.
func (s *Streamer) ServeSSE(w http.ResponseWriter, r *http.Request, client *Client, backlog []domain.Message) {
	defer s.metrics.StreamOpened(metrics.TransportSSE)()

	rc := http.NewResponseController(w)

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sw := &sseWriter{w: w, rc: rc, writeWait: s.cfg.WriteWait}

	if err := sw.connected(client.RoomID, s.now(), s.cfg.Retry); err != nil {
		s.logClosed(client, "write failed", err)
		return
	}
	for _, msg := range backlog {
		if err := sw.message(msg); err != nil {
			s.logClosed(client, "write failed", err)
			return
		}
	}
	if err := sw.flush(); err != nil {
		s.logClosed(client, "flush failed", err)
		return
	}

	heartbeat := time.NewTicker(s.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			s.logClosed(client, "client gone", nil)
			return

		case <-heartbeat.C:
			if err := sw.comment("ping"); err != nil {
				s.logClosed(client, "heartbeat failed", err)
				return
			}

		case msg, ok := <-client.Message:
			if !ok {
				s.logClosed(client, "subscriber dropped", nil)
				return
			}
			if err := sw.message(msg); err != nil {
				s.logClosed(client, "write failed", err)
				return
			}
			if err := sw.flush(); err != nil {
				s.logClosed(client, "flush failed", err)
				return
			}
		}
	}
}

type sseWriter struct {
	w         http.ResponseWriter
	rc        *http.ResponseController
	writeWait time.Duration
}

func (sw *sseWriter) connected(roomID string, at time.Time, retry time.Duration) error {
	data, err := json.Marshal(NewConnected(roomID, at))
	if err != nil {
		return err
	}

	sw.deadline()
	if retry > 0 {
		if _, err := fmt.Fprintf(sw.w, "retry: %d\n", retry.Milliseconds()); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(sw.w, "event: %s\ndata: %s\n\n", EventConnected, data)
	return err
}

func (sw *sseWriter) message(msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	sw.deadline()
	_, err = fmt.Fprintf(sw.w, "id: %s\nevent: %s\ndata: %s\n\n", msg.ID, EventMessage, data)
	return err
}

func (sw *sseWriter) comment(text string) error {
	sw.deadline()
	if _, err := fmt.Fprintf(sw.w, ": %s\n\n", text); err != nil {
		return err
	}
	return sw.flush()
}

func (sw *sseWriter) flush() error {
	if err := sw.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

// deadline replaces the server-wide write timeout, which would otherwise cut
// a long-lived stream.
func (sw *sseWriter) deadline() {
	var d time.Time
	if sw.writeWait > 0 {
		d = time.Now().Add(sw.writeWait)
	}
	_ = sw.rc.SetWriteDeadline(d)
}
