package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/brewops/brewops/internal/shared"
)

// RespondError maps domain errors to HTTP responses using RFC7807.
// Unclassified errors are logged and reported with a fixed message.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var vErr *shared.ValidationError
	switch {
	case errors.As(err, &vErr):
		ProblemWithFields(w, http.StatusBadRequest, "Validation Failed", shared.ErrValidation.Error(), vErr.Fields)
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusBadRequest, "Conflict", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		Problem(w, http.StatusInternalServerError, "Internal Error", shared.UserSafeMessage(err))
	}
}
