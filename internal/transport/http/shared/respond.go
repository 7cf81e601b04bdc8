// Package shared holds response helpers used by every handler package.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "servicedesk/pkg/domain-errors"
)

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error code to an HTTP status and writes the
// error body. Internal errors keep a generic description so store details
// never leak to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)

	message := "internal server error"
	var de *dErrors.Error
	if errors.As(err, &de) && code != dErrors.CodeInternal {
		message = de.Message
	}

	if code == dErrors.CodeCongested {
		w.Header().Set("Retry-After", "1")
	}
	WriteJSON(w, statusFor(code), errorBody{Error: string(code), ErrorDescription: message})
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeCongested:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
