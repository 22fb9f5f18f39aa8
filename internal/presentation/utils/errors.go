package utils

import (
	"errors"
	"net/http"

	"github.com/hilthontt/relay/internal/domain"
	"github.com/hilthontt/relay/internal/infrastructure/json"
	"github.com/hilthontt/relay/internal/infrastructure/logging"
)

// WriteServiceError maps relay errors onto HTTP statuses. Anything it does not
// recognise is logged and answered with a generic 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		json.WriteNotFoundError(w, err)
	case errors.Is(err, domain.ErrRoomFull):
		json.WriteConflictError(w, err)
	case errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrInvalidSide),
		errors.Is(err, domain.ErrEmptyText),
		errors.Is(err, domain.ErrTextTooLong),
		errors.Is(err, domain.ErrInvalidEvent):
		json.WriteValidationError(w, err)
	default:
		logger.Error(logging.RequestResponse, logging.ExternalService, "unexpected service error", map[logging.ExtraKey]any{
			logging.Method:       r.Method,
			logging.Path:         r.URL.Path,
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w, err)
	}
}
