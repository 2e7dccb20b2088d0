package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/promptia/internal/catalog"
	"github.com/nikhilbhutani/promptia/internal/models"
	"github.com/nikhilbhutani/promptia/internal/wizard"
)

type WizardHandler struct {
	cat *catalog.Catalog
}

func NewWizardHandler(cat *catalog.Catalog) *WizardHandler {
	return &WizardHandler{cat: cat}
}

type wizardResponse struct {
	State   wizard.State        `json:"state"`
	Preview models.PromptResult `json:"preview"`
}

type newWizardRequest struct {
	Category string `json:"category,omitempty"`
}

// New starts a draft, optionally from a category whose default model is preselected.
func (h *WizardHandler) New(w http.ResponseWriter, r *http.Request) {
	var req newWizardRequest
	if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
		return
	}

	s := wizard.New()
	if req.Category != "" {
		cat, ok := h.cat.Category(req.Category)
		if !ok {
			writeError(w, http.StatusNotFound, "category not found")
			return
		}
		var err error
		s, err = wizard.Transition(s, wizard.Action{Type: wizard.ActionSelectCategory, Category: cat.ID})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if cat.DefaultModel != "" {
			model := cat.DefaultModel
			s, err = wizard.Transition(s, wizard.Action{Type: wizard.ActionUpdate, Patch: &wizard.Patch{Model: &model}})
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
		}
	}

	writeJSON(w, http.StatusOK, wizardResponse{State: s, Preview: wizard.Preview(s)})
}

type transitionRequest struct {
	State  wizard.State  `json:"state"`
	Action wizard.Action `json:"action"`
}

// Transition applies one action. On a rejected action the unchanged state is returned
// alongside the error so clients can stay in sync.
func (h *WizardHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.State.Step == "" {
		req.State = wizard.New()
	}

	next, err := wizard.Transition(req.State, req.Action)
	if err != nil {
		writeJSON(w, errorStatus(err), map[string]interface{}{"error": err.Error(), "state": req.State})
		return
	}

	writeJSON(w, http.StatusOK, wizardResponse{State: next, Preview: wizard.Preview(next)})
}
