// Package api defines the JSON response contracts shared by the HTTP
// handlers.
package api

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is a standardized error message for API responses
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

// JSON writes a JSON response with the given status code
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Error writes a standardized JSON error response
func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, ErrorResponse{Error: message})
}

// TypedError writes a JSON error response carrying the error taxonomy
// type, so callers can distinguish retryable failures
func TypedError(w http.ResponseWriter, statusCode int, message, errorType string) {
	JSON(w, statusCode, ErrorResponse{Error: message, Type: errorType})
}
