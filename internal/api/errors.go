package api

import (
	"errors"
	"log/slog"
	"net/http"

	"tablehub/internal/domain"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var unauthenticated *domain.UnauthenticatedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &unauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorBodyFrom builds the response body for err. Messages of unclassified
// errors are replaced so engine details never reach the caller.
func errorBodyFrom(err error) errorBody {
	status := httpStatusFromDomainError(err)
	body := errorBody{Code: status, Message: err.Error()}

	var validation *domain.ValidationError
	switch status {
	case http.StatusBadRequest:
		errors.As(err, &validation)
		body.Reason = validation.Reason
	case http.StatusUnauthorized:
		body.Reason = "UNAUTHENTICATED"
	case http.StatusNotFound:
		body.Reason = "NOT_FOUND"
	case http.StatusConflict:
		body.Reason = "CONFLICT"
	default:
		body.Reason = "ENGINE_ERROR"
		var engine *domain.EngineError
		if errors.As(err, &engine) {
			body.Message = engine.Error()
		} else {
			body.Message = "internal error"
		}
	}
	return body
}

// writeError logs server errors with their full cause and writes the
// mapped response.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	body := errorBodyFrom(err)
	if body.Code >= http.StatusInternalServerError {
		attrs := []any{"error", err, "method", r.Method, "path", r.URL.Path}
		var comp *domain.CompensationError
		if errors.As(err, &comp) {
			attrs = append(attrs, "compensation_failed", true)
		}
		logger.ErrorContext(r.Context(), "request failed", attrs...)
	}
	writeJSON(w, body.Code, body)
}
