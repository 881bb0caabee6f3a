// Package httputil provides the JSON response helpers shared by handlers
// and middleware.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/storyst/salestrack/internal/errors"
	"github.com/storyst/salestrack/internal/logging"
)

// ErrorResponse is the single error body shape emitted by the API.
type ErrorResponse struct {
	Status  string                 `json:"status"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	TraceID string                 `json:"trace_id,omitempty"`
}

// WriteJSON serializes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErrorResponse writes the canonical error body. Status "fail" marks
// caller errors (4xx), "error" marks server faults.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]interface{}) {
	body := ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Details: details,
	}
	if status >= 400 && status < 500 {
		body.Status = "fail"
	}
	if r != nil {
		body.TraceID = logging.GetTraceID(r.Context())
	}
	WriteJSON(w, status, body)
}

// WriteServiceError maps err onto the error taxonomy and writes it. Unknown
// errors become a generic internal fault so storage details never leak.
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	svcErr := errors.GetServiceError(err)
	if svcErr == nil {
		svcErr = errors.Internal("An internal error occurred. Please try again later.", err)
	}
	WriteErrorResponse(w, r, svcErr.HTTPStatus, string(svcErr.Code), svcErr.Message, svcErr.Details)
}

// Unauthorized writes a 401 with an optional message.
func Unauthorized(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Unauthorized"
	}
	WriteErrorResponse(w, nil, http.StatusUnauthorized, string(errors.CodeUnauthenticated), message, nil)
}
