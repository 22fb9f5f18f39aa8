package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hilthontt/relay/internal/domain"
	"github.com/hilthontt/relay/internal/infrastructure/logging"
	"github.com/hilthontt/relay/internal/infrastructure/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStreamer(heartbeat time.Duration) *Streamer {
	return NewStreamer(Config{
		HeartbeatInterval: heartbeat,
		WriteWait:         time.Second,
		Retry:             3 * time.Second,
		BufferSize:        8,
	}, logging.NewNop(), metrics.New())
}

// newRoomServer serves room over the given transport the way the HTTP
// handler does: subscribe first, stream second, unsubscribe on return.
func newRoomServer(t *testing.T, s *Streamer, room *domain.Room, transport string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := s.NewClient(room.ID, transport)
		defer client.Close()

		lastEventID := r.Header.Get("Last-Event-ID")
		if lastEventID == "" {
			lastEventID = r.URL.Query().Get("lastEventId")
		}

		backlog, unsubscribe := room.Subscribe(client, lastEventID)
		defer unsubscribe()

		if transport == metrics.TransportWebSocket {
			s.ServeWS(w, r, client, backlog)
			return
		}
		s.ServeSSE(w, r, client, backlog)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type sseFrame struct {
	id      string
	event   string
	data    string
	retry   string
	comment string
}

func readFrame(t *testing.T, r *bufio.Reader) sseFrame {
	t.Helper()

	var f sseFrame
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			return f
		}

		switch {
		case strings.HasPrefix(line, ": "):
			f.comment = strings.TrimPrefix(line, ": ")
		case strings.HasPrefix(line, "id: "):
			f.id = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			f.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			f.data = strings.TrimPrefix(line, "data: ")
		case strings.HasPrefix(line, "retry: "):
			f.retry = strings.TrimPrefix(line, "retry: ")
		}
	}
}

func openSSE(t *testing.T, ctx context.Context, url, lastEventID string) (*http.Response, *bufio.Reader) {
	t.Helper()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	return resp, bufio.NewReader(resp.Body)
}

func TestServeSSE_ConnectedThenMessages(t *testing.T) {
	room := domain.NewRoom("ABCDEF")
	srv := newRoomServer(t, newTestStreamer(time.Hour), room, metrics.TransportSSE)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp, body := openSSE(t, ctx, srv.URL, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	connected := readFrame(t, body)
	assert.Equal(t, EventConnected, connected.event)
	assert.Equal(t, "3000", connected.retry)

	var payload ConnectedPayload
	require.NoError(t, json.Unmarshal([]byte(connected.data), &payload))
	assert.Equal(t, "connected", payload.Type)
	assert.Equal(t, room.ID, payload.RoomID)

	msg, err := domain.NewMessage(domain.SideA, "Hello", "HELLO")
	require.NoError(t, err)
	accepted, report := room.Append(msg)
	assert.Equal(t, 1, report.Delivered)

	frame := readFrame(t, body)
	assert.Equal(t, EventMessage, frame.event)
	assert.Equal(t, accepted.ID, frame.id)

	var got domain.Message
	require.NoError(t, json.Unmarshal([]byte(frame.data), &got))
	assert.Equal(t, accepted.ID, got.ID)
	assert.Equal(t, domain.SideA, got.From)
	assert.Equal(t, "Hello", got.Text)
	assert.Equal(t, "HELLO", got.SignGloss)
}

func TestServeSSE_ReplaysAfterLastEventID(t *testing.T) {
	room := domain.NewRoom("ABCDEF")
	srv := newRoomServer(t, newTestStreamer(time.Hour), room, metrics.TransportSSE)

	var sent []domain.Message
	for _, text := range []string{"one", "two", "three"} {
		msg, err := domain.NewMessage(domain.SideB, text, "")
		require.NoError(t, err)
		accepted, _ := room.Append(msg)
		sent = append(sent, accepted)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, body := openSSE(t, ctx, srv.URL, sent[0].ID)

	assert.Equal(t, EventConnected, readFrame(t, body).event)
	assert.Equal(t, sent[1].ID, readFrame(t, body).id)
	assert.Equal(t, sent[2].ID, readFrame(t, body).id)
}

func TestServeSSE_Heartbeat(t *testing.T) {
	room := domain.NewRoom("ABCDEF")
	srv := newRoomServer(t, newTestStreamer(20*time.Millisecond), room, metrics.TransportSSE)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, body := openSSE(t, ctx, srv.URL, "")
	readFrame(t, body)

	assert.Equal(t, "ping", readFrame(t, body).comment)
}

func TestServeSSE_DisconnectUnsubscribes(t *testing.T) {
	room := domain.NewRoom("ABCDEF")
	srv := newRoomServer(t, newTestStreamer(time.Hour), room, metrics.TransportSSE)

	ctx, cancel := context.WithCancel(context.Background())
	_, body := openSSE(t, ctx, srv.URL, "")
	readFrame(t, body)
	require.Equal(t, 1, room.SubscriberCount())

	cancel()

	assert.Eventually(t, func() bool {
		return room.SubscriberCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}
