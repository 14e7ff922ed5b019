// Package httputil centralizes JSON response and error envelopes so every
// handler returns the same shape.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "qrius/pkg/domain-errors"
)

var codeToStatus = map[dErrors.Code]int{
	dErrors.CodeBadRequest:         http.StatusBadRequest,
	dErrors.CodeUnauthorized:       http.StatusUnauthorized,
	dErrors.CodeForbidden:          http.StatusForbidden,
	dErrors.CodePlanLimit:          http.StatusForbidden,
	dErrors.CodeConflict:           http.StatusConflict,
	dErrors.CodeNotFound:           http.StatusNotFound,
	dErrors.CodeUnavailable:        http.StatusServiceUnavailable,
	dErrors.CodeBadGateway:         http.StatusBadGateway,
	dErrors.CodeInternal:           http.StatusInternalServerError,
	dErrors.CodeInvariantViolation: http.StatusInternalServerError,
}

// ToHTTPStatus maps a domain error code to an HTTP status line.
func ToHTTPStatus(code dErrors.Code) int {
	if status, ok := codeToStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteJSON encodes v as the response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into a JSON envelope with a
// human-readable error field plus any structured hints the error carries
// (e.g. requiredPlan). Internal errors never leak their message.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := ToHTTPStatus(code)

	body := map[string]string{}
	if status >= http.StatusInternalServerError {
		body["error"] = "internal error"
	} else {
		body["error"] = messageOf(err)
	}
	if de, ok := err.(*dErrors.DomainError); ok {
		for k, v := range de.Meta {
			body[k] = v
		}
	}
	WriteJSON(w, status, body)
}

func messageOf(err error) string {
	if de, ok := err.(*dErrors.DomainError); ok {
		return de.Message
	}
	return err.Error()
}
