package utils

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Responder writes envelopes. Debug adds error detail to failures.
type Responder struct {
	Debug bool
}

// JSON writes a success envelope with the given status.
func (rs Responder) JSON(w http.ResponseWriter, status int, message string, data interface{}) {
	writeEnvelope(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Error maps err to a status code and writes a failure envelope. Unexpected
// errors are logged and reported with a generic message.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	env := Envelope{Success: false, Message: err.Error()}
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		env.Message = "internal server error"
	}
	if rs.Debug {
		env.Error = err.Error()
	}
	writeEnvelope(w, status, env)
}

// Fail writes a failure envelope with an explicit status and message.
func (rs Responder) Fail(w http.ResponseWriter, status int, message string) {
	writeEnvelope(w, status, Envelope{Success: false, Message: message})
}

func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		slog.Error("encode response", slog.String("error", err.Error()))
	}
}
