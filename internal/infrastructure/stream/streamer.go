package stream

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hilthontt/relay/internal/infrastructure/logging"
	"github.com/hilthontt/relay/internal/infrastructure/metrics"
)

const (
	defaultHeartbeat = 15 * time.Second
	defaultWriteWait = 10 * time.Second
)

type Config struct {
	HeartbeatInterval time.Duration
	WriteWait         time.Duration
	Retry             time.Duration
	BufferSize        int
	AllowedOrigins    []string
}

// Streamer turns a subscribed Client into a live HTTP response.
type Streamer struct {
	cfg      Config
	logger   logging.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader
	now      func() time.Time
}

func NewStreamer(cfg Config, logger logging.Logger, m *metrics.Metrics) *Streamer {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeat
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = defaultWriteWait
	}

	s := &Streamer{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	return s
}

func (s *Streamer) NewClient(roomID, transport string) *Client {
	return NewClient(roomID, transport, s.cfg.BufferSize)
}

func (s *Streamer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin)
}

func (s *Streamer) logClosed(client *Client, reason string, err error) {
	extra := map[logging.ExtraKey]any{
		logging.RoomID:    client.RoomID,
		logging.Transport: client.Transport,
		"reason":          reason,
	}
	if err != nil {
		extra[logging.ErrorMessage] = err.Error()
	}
	s.logger.Debug(logging.Stream, logging.Unsubscribe, "stream closed", extra)
}
