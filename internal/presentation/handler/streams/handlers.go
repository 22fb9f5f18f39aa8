package streams

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/relay/internal/application/relay"
	"github.com/hilthontt/relay/internal/domain"
	"github.com/hilthontt/relay/internal/infrastructure/logging"
	"github.com/hilthontt/relay/internal/infrastructure/metrics"
	"github.com/hilthontt/relay/internal/infrastructure/stream"
	"github.com/hilthontt/relay/internal/presentation/utils"
)

type Handler struct {
	service  relay.Service
	streamer *stream.Streamer
	logger   logging.Logger
}

func NewHandler(service relay.Service, streamer *stream.Streamer, logger logging.Logger) *Handler {
	return &Handler{
		service:  service,
		streamer: streamer,
		logger:   logger,
	}
}

// EventsHandler godoc
// @Summary      Subscribe to a room (SSE)
// @Description  Server-sent events: a connected frame, then one message frame per accepted message.
// @Description  Send Last-Event-ID (or ?lastEventId=) to replay what was missed.
// @Tags         stream
// @Produce      text/event-stream
// @Param        roomId path string true "Room ID"
// @Param        Last-Event-ID header string false "Last message id seen"
// @Failure      400 {object} json.ErrorResponse "Malformed last event id"
// @Failure      404 {object} json.ErrorResponse "Room not found"
// @Router       /rooms/{roomId}/events [get]
func (h *Handler) EventsHandler(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, metrics.TransportSSE, h.streamer.ServeSSE)
}

// WebSocketHandler godoc
// @Summary      Subscribe to a room (WebSocket)
// @Description  Push-only websocket carrying {type, roomId, data} envelopes
// @Tags         stream
// @Param        roomId path string true "Room ID"
// @Failure      404 {object} json.ErrorResponse "Room not found"
// @Router       /rooms/{roomId}/ws [get]
func (h *Handler) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, metrics.TransportWebSocket, h.streamer.ServeWS)
}

type serveFunc func(w http.ResponseWriter, r *http.Request, client *stream.Client, backlog []domain.Message)

// serve subscribes before anything is written, so lookup failures still get
// a plain JSON error.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, transport string, serveStream serveFunc) {
	roomID := chi.URLParam(r, "roomId")

	lastEventID := r.Header.Get("Last-Event-ID")
	if lastEventID == "" {
		lastEventID = r.URL.Query().Get("lastEventId")
	}

	client := h.streamer.NewClient(roomID, transport)
	defer client.Close()

	sub, err := h.service.Subscribe(r.Context(), roomID, client, lastEventID)
	if err != nil {
		utils.WriteServiceError(w, r, h.logger, err)
		return
	}
	defer sub.Cancel()

	h.logger.Info(logging.Stream, logging.Subscribe, "stream opened", map[logging.ExtraKey]any{
		logging.RoomID:    roomID,
		logging.Transport: transport,
		"replayed":        len(sub.Backlog),
	})

	serveStream(w, r, client, sub.Backlog)
}
