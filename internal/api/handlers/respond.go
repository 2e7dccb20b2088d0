package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/promptia/internal/generator"
	"github.com/nikhilbhutani/promptia/internal/guardrails"
	"github.com/nikhilbhutani/promptia/internal/library"
	"github.com/nikhilbhutani/promptia/internal/llm"
	"github.com/nikhilbhutani/promptia/internal/prompt"
	"github.com/nikhilbhutani/promptia/internal/wizard"
)

const maxBodyBytes = 12 << 20

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// writeServiceError maps domain errors onto HTTP statuses. Anything unrecognised is a 500
// and its detail stays in the log.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	if msg, ok := upstreamMessage(err); ok {
		// Provider errors may carry upstream detail; clients get the class only.
		slog.Warn("upstream failure", "path", r.URL.Path, "status", status, "error", err)
		writeError(w, status, msg)
		return
	}
	writeError(w, status, err.Error())
}

func upstreamMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, llm.ErrMissingAPIKey):
		return "generation is not configured", true
	case errors.Is(err, llm.ErrRateLimited):
		return "generation provider is rate limited, try again later", true
	case errors.Is(err, llm.ErrTimeout):
		return "generation provider timed out", true
	case errors.Is(err, llm.ErrUnauthorized):
		return "generation provider rejected the server credentials", true
	case errors.Is(err, llm.ErrEmptyResponse):
		return "generation provider returned an empty response", true
	case errors.Is(err, llm.ErrUpstream):
		return "generation provider failed", true
	}
	return "", false
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, library.ErrInvalid),
		errors.Is(err, wizard.ErrInvalidAction),
		errors.Is(err, wizard.ErrUnknownStep),
		errors.Is(err, generator.ErrInvalidInput),
		errors.Is(err, generator.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, wizard.ErrNoObjective),
		errors.Is(err, wizard.ErrOutOfRange),
		errors.Is(err, prompt.ErrMissingVariables),
		errors.Is(err, generator.ErrUnsupportedMedia),
		errors.Is(err, generator.ErrImageTooLarge),
		errors.Is(err, guardrails.ErrRejectedInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, llm.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, llm.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, llm.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, llm.ErrUnauthorized),
		errors.Is(err, llm.ErrEmptyResponse),
		errors.Is(err, llm.ErrUpstream):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
