// Package httperr maps the domain error taxonomy onto the HTTP error body
// shared by all services. The integration client parses the same body back
// into domain errors on the consuming side.
package httperr

import (
	"encoding/json"
	"net/http"
	"time"

	"example.com/productmesh/pkg/apperrors"
)

// ErrorInfo is the error body every service returns.
type ErrorInfo struct {
	Timestamp time.Time `json:"timestamp"`
	Path      string    `json:"path"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
}

// New builds an error body for the given request path and domain error.
func New(path string, err error) ErrorInfo {
	status := StatusOf(err)
	return ErrorInfo{
		Timestamp: time.Now().UTC(),
		Path:      path,
		Status:    status,
		Error:     http.StatusText(status),
		Message:   err.Error(),
	}
}

// StatusOf maps a domain error to its HTTP status code.
func StatusOf(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindInvalidInput:
		return http.StatusUnprocessableEntity
	case apperrors.KindBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// FromStatus maps an HTTP status code received from a dependency back into
// a domain error carrying the upstream message.
func FromStatus(status int, message string) error {
	switch status {
	case http.StatusNotFound:
		return apperrors.NewNotFound("%s", message)
	case http.StatusUnprocessableEntity:
		return apperrors.NewInvalidInput("%s", message)
	case http.StatusBadRequest:
		return apperrors.NewBadRequest("%s", message)
	default:
		return apperrors.NewInternal("%s", message)
	}
}

// ParseMessage extracts the message field from an error body, falling back
// to the raw body when it does not parse.
func ParseMessage(body []byte) string {
	var info ErrorInfo
	if err := json.Unmarshal(body, &info); err == nil && info.Message != "" {
		return info.Message
	}
	return string(body)
}
