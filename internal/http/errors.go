package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"fintrack/internal/api"
	"fintrack/internal/core"
	"fintrack/internal/export"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// statusFor maps an error to the response status and the message shown to
// the user. Unauthorized is handled separately by writeError.
func statusFor(err error, fallback string) (int, string) {
	var apiErr *api.Error
	switch {
	case errors.As(err, new(core.ValidationErrors)):
		return http.StatusUnprocessableEntity, "Please correct the highlighted fields."
	case errors.Is(err, api.ErrNotFound):
		return http.StatusNotFound, "The record no longer exists. Reload the page and try again."
	case errors.Is(err, core.ErrInvalidType),
		errors.Is(err, export.ErrUnknownFormat),
		errors.Is(err, services.ErrMissingID):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "The server took too long to answer. Please try again."
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return http.StatusBadRequest, api.UserMessage(err, fallback)
		}
		return http.StatusBadGateway, api.UserMessage(err, fallback)
	}
	return http.StatusBadGateway, fallback
}

func errorType(status int) string {
	switch status {
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return applog.ErrorTypeValidation
	case http.StatusNotFound:
		return applog.ErrorTypeNotFound
	case http.StatusBadGateway, http.StatusGatewayTimeout:
		return applog.ErrorTypeNetwork
	}
	return applog.ErrorTypeInternal
}

// writeError is the single place handlers send failures through.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	if errors.Is(err, api.ErrUnauthorized) {
		logger.InfoContext(ctx, "Backend rejected session token",
			applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeAuth)
		s.endSession(w, r)
		return
	}
	if errors.Is(err, context.Canceled) {
		logger.DebugContext(ctx, "Request cancelled", applog.FieldError, err)
		return
	}

	status, msg := statusFor(err, fallback)
	if status >= 500 {
		applog.NewStructuredLogger(logger).LogError(ctx, "Request failed", err, applog.ComponentHTTP, r.Method+" "+r.URL.Path,
			applog.NewFields().WithErrorType(errorType(status)).WithHTTPResponse(status, 0, false))
	} else {
		logger.WarnContext(ctx, "Request rejected",
			applog.FieldError, err,
			applog.FieldStatusCode, status,
			applog.FieldErrorType, errorType(status))
	}

	switch {
	case isAPIRequest(r):
		body := errorBody{Error: msg}
		if verrs, ok := core.AsValidation(err); ok {
			body.Fields = verrs.Messages()
		}
		writeJSON(w, status, body)
	case isHTMX(r):
		ErrorResponse(status, msg).Write(w)
	default:
		s.renderError(w, r, status, msg)
	}
}

type errorPage struct {
	layout
	Status  int
	Message string
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if isHTMX(r) {
		ErrorResponse(status, msg).Write(w)
		return
	}
	s.render(w, r, status, "error", errorPage{
		layout:  s.layoutFor(r, http.StatusText(status), ""),
		Status:  status,
		Message: msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
