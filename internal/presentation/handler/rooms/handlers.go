package rooms

import (
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

// CreateRoomHandler godoc
// @Summary      Create a relay room
// @Description  Creates an empty two-sided room and returns its id and join code
// @Tags         rooms
// @Produce      json
// @Success      201 {object} createRoomResponse "Room created"
// @Failure      429 {object} json.ErrorResponse "Rate limited"
// @Failure      500 {object} json.ErrorResponse "Internal server error"
// @Router       /rooms [post]
func (h *Handler) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.CreateRoom(r.Context())
	if err != nil {
		utils.WriteServiceError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusCreated, createRoomResponse{
		RoomID:    room.RoomID,
		Code:      room.Code,
		CreatedAt: room.CreatedAt,
	})
}

// JoinRoomHandler godoc
// @Summary      Join a room by code
// @Description  Resolves a join code (case-insensitive) and assigns the free side, A first
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Param        request body joinRoomRequest true "Join code"
// @Success      200 {object} joinRoomResponse "Joined"
// @Failure      400 {object} json.ErrorResponse "Malformed body or empty code"
// @Failure      404 {object} json.ErrorResponse "Unknown code"
// @Failure      409 {object} json.ErrorResponse "Both sides taken"
// @Router       /rooms/join [post]
func (h *Handler) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := json.Read(r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	joined, err := h.service.JoinRoom(r.Context(), req.Code)
	if err != nil {
		utils.WriteServiceError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, joinRoomResponse{
		RoomID: joined.RoomID,
		Side:   joined.Side.String(),
		Code:   joined.Code,
	})
}

// GetRoomHandler godoc
// @Summary      Inspect a room
// @Tags         rooms
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Success      200 {object} roomResponse
// @Failure      404 {object} json.ErrorResponse "Room not found"
// @Router       /rooms/{roomId} [get]
func (h *Handler) GetRoomHandler(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.GetRoom(r.Context(), chi.URLParam(r, "roomId"))
	if err != nil {
		utils.WriteServiceError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, newRoomResponse(info))
}
