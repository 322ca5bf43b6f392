package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to write response body", "error", err)
	}
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	writeJSON(w, http.StatusOK, envelope{Success: true, Count: &count, Data: items})
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := domain.MessageOf(err)
	if status == http.StatusInternalServerError || message == "" {
		logger.FromContext(r.Context()).Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		status, message = http.StatusInternalServerError, "Server error"
	} else if status == http.StatusBadGateway {
		logger.FromContext(r.Context()).Error("Upstream failure", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, envelope{Success: false, Message: message})
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation, domain.KindInvalidState:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUpstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return domain.Validation("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			return domain.Validation("invalid value for field %s", typeErr.Field)
		case errors.As(err, &syntaxErr):
			return domain.Validation("malformed JSON body")
		}
		return domain.Validation("invalid request body")
	}
	return nil
}
