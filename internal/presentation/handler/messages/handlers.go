package messages

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hilthontt/relay/internal/application/relay"
	"github.com/hilthontt/relay/internal/infrastructure/json"
	"github.com/hilthontt/relay/internal/infrastructure/logging"
	"github.com/hilthontt/relay/internal/presentation/utils"
)

type Handler struct {
	service relay.Service
	logger  logging.Logger
}

func NewHandler(service relay.Service, logger logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// CreateNewMessageHandler godoc
// @Summary      Send a message
// @Description  Appends a message to the room and pushes it to every open stream
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        roomId  path string true "Room ID"
// @Param        request body createMessageRequest true "Message"
// @Success      201 {object} domain.Message
// @Failure      400 {object} json.ErrorResponse "Invalid side, empty text or malformed body"
// @Failure      404 {object} json.ErrorResponse "Room not found"
// @Router       /rooms/{roomId}/messages [post]
func (h *Handler) CreateNewMessageHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")

	var req createMessageRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if req.RoomID != "" && req.RoomID != roomID {
		json.WriteValidationError(w, errors.New("roomId in body does not match the URL"))
		return
	}

	msg, err := h.service.SendMessage(r.Context(), roomID, req.From, req.Text, req.SignGloss)
	if err != nil {
		utils.WriteServiceError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusCreated, msg)
}

// GetMessagesHandler godoc
// @Summary      List messages
// @Description  Full history of the room in arrival order
// @Tags         messages
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Success      200 {array} domain.Message
// @Failure      404 {object} json.ErrorResponse "Room not found"
// @Router       /rooms/{roomId}/messages [get]
func (h *Handler) GetMessagesHandler(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.service.GetMessages(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		utils.WriteServiceError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, msgs)
}
