package handler

import (
	"errors"
	"net/http"

	"blogwriter/internal/domain"
	"blogwriter/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		markupErr     *domain.MarkupError
		conflictErr   *domain.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		if len(validationErr.Violations) > 0 {
			httputil.RespondErrorWithExtras(w, http.StatusUnprocessableEntity, validationErr.Message, map[string]any{
				"violations": validationErr.Violations,
			})
			return
		}
		httputil.RespondError(w, http.StatusUnprocessableEntity, validationErr.Error())
	case errors.As(err, &markupErr):
		httputil.RespondError(w, http.StatusBadRequest, markupErr.Error())
	case errors.As(err, &conflictErr):
		httputil.RespondErrorWithExtras(w, http.StatusConflict, conflictErr.Error(), map[string]any{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotRepository):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// handleParseError responds to a request body that could not be decoded
func handleParseError(w http.ResponseWriter, err error) {
	if errors.Is(err, httputil.ErrBodyTooLarge) {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
}

// HandleCreateConflict handles conflicts during creation by returning the existing resource with 409
// If the error is a ConflictError, it calls fetchFn to retrieve the existing resource
func HandleCreateConflict[T any](w http.ResponseWriter, err error, fetchFn func(conflict *domain.ConflictError) (*T, error)) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		// Try to fetch existing resource
		existing, fetchErr := fetchFn(conflictErr)
		if fetchErr != nil {
			handleError(w, fetchErr)
			return
		}

		// Return existing resource with 409 status
		httputil.RespondJSON(w, http.StatusConflict, existing)
		return
	}

	// Not a conflict error, handle normally
	handleError(w, err)
}
