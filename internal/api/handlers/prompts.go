package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/promptia/internal/models"
	"github.com/nikhilbhutani/promptia/internal/prompt"
	"github.com/nikhilbhutani/promptia/pkg/tokenizer"
)

type PromptHandler struct{}

func NewPromptHandler() *PromptHandler {
	return &PromptHandler{}
}

func (h *PromptHandler) Models(w http.ResponseWriter, r *http.Request) {
	list := models.Models()
	writeJSON(w, http.StatusOK, map[string]interface{}{"models": list, "count": len(list)})
}

type buildResponse struct {
	models.PromptResult
	Model  models.ModelInfo    `json:"model"`
	Inputs models.PromptInputs `json:"inputs"`
	Tokens tokenizer.Estimate  `json:"tokens"`
}

// Build runs the deterministic engine. Missing fields take their defaults.
func (h *PromptHandler) Build(w http.ResponseWriter, r *http.Request) {
	in := models.DefaultInputs()
	if !decodeJSON(w, r, &in) {
		return
	}

	in = prompt.Normalize(in)
	info, _ := models.LookupModel(in.Model)
	res := prompt.Build(in)

	writeJSON(w, http.StatusOK, buildResponse{
		PromptResult: res,
		Model:        info,
		Inputs:       in,
		Tokens:       tokenizer.EstimateFor(res.FinalPrompt, string(info.Key)),
	})
}

type renderRequest struct {
	Template  string            `json:"template"`
	Variables map[string]string `json:"variables,omitempty"`
	Objective *string           `json:"objective,omitempty"`
}

// Render fills a template. With variables every placeholder must be supplied; with only
// an objective the objective or subject slot is filled and the rest is kept.
func (h *PromptHandler) Render(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Template == "" {
		writeError(w, http.StatusBadRequest, "template required")
		return
	}

	var out string
	if req.Variables == nil && req.Objective != nil {
		out = prompt.Reuse(req.Template, *req.Objective)
	} else {
		vars := req.Variables
		if req.Objective != nil {
			vars = withSlots(vars, *req.Objective)
		}
		rendered, err := prompt.Render(req.Template, vars)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		out = rendered
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prompt":    out,
		"variables": prompt.ExtractVariables(req.Template),
	})
}

func withSlots(vars map[string]string, objective string) map[string]string {
	out := make(map[string]string, len(vars)+2)
	for k, v := range vars {
		out[k] = v
	}
	for _, k := range []string{"objective", "subject"} {
		if _, ok := out[k]; !ok {
			out[k] = objective
		}
	}
	return out
}
