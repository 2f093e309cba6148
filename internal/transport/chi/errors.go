package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	domdisc "github.com/kailas-cloud/discover/internal/domain/discovery"
	healthuc "github.com/kailas-cloud/discover/internal/usecase/health"
)

// ErrorResponse is the error envelope: {"error": {...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries the machine-readable code and a message.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]healthuc.CheckResult `json:"checks"`
	Items  int                             `json:"items"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, e *domdisc.Error) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{
		Code:    string(e.Code),
		Message: e.Message,
		Details: e.Details,
	}})
}

// discoveryErrorHandler maps caller-visible discovery errors to 400.
func discoveryErrorHandler(w http.ResponseWriter, err error) bool {
	de, ok := domdisc.AsError(err)
	if !ok || !de.IsClientError() {
		return false
	}
	writeError(w, http.StatusBadRequest, de)
	return true
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The response carries INTERNAL_ERROR with msg.
func sentinelHandler(sentinel error, status int, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, &domdisc.Error{Code: domdisc.CodeInternalError, Message: msg})
		return true
	}
}
