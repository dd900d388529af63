package endpoints

import (
	"encoding/json"
	"log"
	"net/http"
)

// Error types returned in the JSON error envelope.
const (
	ErrTypeInvalidRequest = "invalid_request"
	ErrTypeRateLimit      = "rate_limit"
	ErrTypeProvider       = "provider_error"
	ErrTypeInternal       = "internal"
)

type errorBody struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorBody{Type: errType, Message: message}})
}

// internalError hides err from clients outside development.
func (s *Server) internalError(w http.ResponseWriter, err error) {
	msg := "internal error"
	if s.Config.IsDevelopment() && err != nil {
		msg = err.Error()
	}
	writeJSONError(w, http.StatusInternalServerError, ErrTypeInternal, msg)
}

// providerError reports an upstream failure; detail is only exposed in development.
func (s *Server) providerError(w http.ResponseWriter, message string, err error) {
	if s.Config.IsDevelopment() && err != nil {
		message += ": " + err.Error()
	}
	writeJSONError(w, http.StatusBadGateway, ErrTypeProvider, message)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSONError(w, http.StatusMethodNotAllowed, ErrTypeInvalidRequest, "method not allowed")
}
