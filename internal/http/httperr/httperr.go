// Package httperr maps domain errors to HTTP responses.
package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/bluecarbon/internal/identity"
	"github.com/MrJamesThe3rd/bluecarbon/internal/submission"
)

func Status(err error) int {
	switch {
	case errors.Is(err, submission.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, submission.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, submission.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, submission.ErrIllegalState), errors.Is(err, submission.ErrAlreadyIssued):
		return http.StatusConflict
	case errors.Is(err, submission.ErrImmutableField):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Write sends err with its mapped status. Internal errors are logged and
// replaced by a generic message.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		http.Error(w, "internal error", status)

		return
	}

	http.Error(w, err.Error(), status)
}
