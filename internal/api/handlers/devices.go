package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/promptia/internal/auth"
)

type DeviceHandler struct {
	tokens *auth.Tokens
}

func NewDeviceHandler(tokens *auth.Tokens) *DeviceHandler {
	return &DeviceHandler{tokens: tokens}
}

type deviceResponse struct {
	DeviceID  uuid.UUID `json:"device_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Register issues a token for a new anonymous device.
func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	id := uuid.New()
	token, expires, err := h.tokens.Issue(id)
	if err != nil {
		slog.Error("issue device token", "error", err)
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	writeJSON(w, http.StatusCreated, deviceResponse{DeviceID: id, Token: token, ExpiresAt: expires})
}
