package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/promptia/internal/device"
	"github.com/nikhilbhutani/promptia/internal/generator"
	"github.com/nikhilbhutani/promptia/internal/library"
	"github.com/nikhilbhutani/promptia/internal/models"
)

type GenerateHandler struct {
	gen *generator.Service
	lib *library.Service
}

func NewGenerateHandler(gen *generator.Service, lib *library.Service) *GenerateHandler {
	return &GenerateHandler{gen: gen, lib: lib}
}

func (h *GenerateHandler) Smart(w http.ResponseWriter, r *http.Request) {
	in := models.DefaultInputs()
	if !decodeJSON(w, r, &in) {
		return
	}

	res, err := h.gen.Smart(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.recordHistory(r.Context(), res.Prompt, in.Model, in.Objective)
	writeJSON(w, http.StatusOK, res)
}

func (h *GenerateHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	var req generator.ReverseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.gen.Reverse(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.recordHistory(r.Context(), res.Prompt, req.Model, "")
	writeJSON(w, http.StatusOK, res)
}

func (h *GenerateHandler) recordHistory(ctx context.Context, final string, model models.Model, objective string) {
	if h.lib == nil {
		return
	}
	if _, err := h.lib.AddHistory(ctx, device.IDFromContext(ctx), final, model, objective); err != nil {
		slog.Warn("record history", "error", err)
	}
}
