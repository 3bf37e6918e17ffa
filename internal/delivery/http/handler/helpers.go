package handler

import (
	"errors"
	"net/http"

	"smart-clinic-backend/internal/usecase"
	"smart-clinic-backend/pkg/response"
)

// serverError maps errors that every authenticated endpoint can produce:
// a missing identity to 401, wrapped storage failures to 503 and everything
// else to a generic 500. The auth middleware normally guarantees an
// identity, so the 401 arm only fires on routes wired without it.
func serverError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, usecase.ErrUnauthenticated) {
		response.Unauthorized(w, "Authentication required")
		return
	}
	if errors.Is(err, usecase.ErrStorageUnavailable) {
		response.Error(w, http.StatusServiceUnavailable, "Storage temporarily unavailable", nil)
		return
	}
	response.InternalServerError(w, message)
}
