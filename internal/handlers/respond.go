package handlers

import (
	"encoding/json"
	"net/http"
)

// envelope is the standard response wrapper. Chat endpoints bypass it and
// return their payloads raw.
type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sendSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// sendRaw writes the payload without the envelope.
func sendRaw(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

func sendError(w http.ResponseWriter, status int, message string, errs ...string) {
	writeJSON(w, status, envelope{Success: false, Message: message, Errors: errs})
}
