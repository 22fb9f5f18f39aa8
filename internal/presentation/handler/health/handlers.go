package health

import (
	"net/http"
	"time"

	"github.com/hilthontt/relay/internal/application/relay"
	"github.com/hilthontt/relay/internal/infrastructure/json"
	"github.com/hilthontt/relay/internal/infrastructure/logging"
	"github.com/hilthontt/relay/internal/presentation/utils"
)

type Handler struct {
	service   relay.Service
	logger    logging.Logger
	startedAt time.Time
}

func NewHandler(service relay.Service, logger logging.Logger) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		startedAt: time.Now(),
	}
}

// GetHealth godoc
// @Summary      Liveness and readiness
// @Tags         health
// @Produce      json
// @Success      200 {object} healthResponse
// @Router       /health [get]
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	json.Write(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: now.UTC(),
		Uptime:    now.Sub(h.startedAt).Round(time.Second).String(),
	})
}

// GetStats godoc
// @Summary      Registry counters
// @Tags         health
// @Produce      json
// @Success      200 {object} domain.RegistryStats
// @Router       /stats [get]
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		utils.WriteServiceError(w, r, h.logger, err)
		return
	}

	json.Write(w, http.StatusOK, stats)
}
