package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/promptia/internal/device"
	"github.com/nikhilbhutani/promptia/internal/library"
	"github.com/nikhilbhutani/promptia/internal/models"
)

type LibraryHandler struct {
	svc *library.Service
}

func NewLibraryHandler(svc *library.Service) *LibraryHandler {
	return &LibraryHandler{svc: svc}
}

func pathUUID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+what+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *LibraryHandler) SavePrompt(w http.ResponseWriter, r *http.Request) {
	req := library.SaveRequest{Inputs: models.DefaultInputs()}
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.Save(r.Context(), device.IDFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *LibraryHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	favorites, _ := strconv.ParseBool(q.Get("favorites"))
	f := library.ListFilter{
		FavoritesOnly: favorites,
		Type:          models.Kind(q.Get("type")),
		Query:         q.Get("q"),
	}
	if v := q.Get("folder_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid folder ID")
			return
		}
		f.FolderID = &id
	}

	prompts, err := h.svc.List(r.Context(), device.IDFromContext(r.Context()), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"prompts": prompts, "count": len(prompts)})
}

func (h *LibraryHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "prompt")
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), device.IDFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *LibraryHandler) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "prompt")
	if !ok {
		return
	}
	var upd library.PromptUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	p, err := h.svc.Update(r.Context(), device.IDFromContext(r.Context()), id, upd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *LibraryHandler) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "prompt")
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), device.IDFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "prompt")
	if !ok {
		return
	}
	p, err := h.svc.ToggleFavorite(r.Context(), device.IDFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type moveRequest struct {
	FolderID *uuid.UUID `json:"folder_id"`
}

func (h *LibraryHandler) MovePrompt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "prompt")
	if !ok {
		return
	}
	var req moveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.Move(r.Context(), device.IDFromContext(r.Context()), id, req.FolderID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *LibraryHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.svc.ListFolders(r.Context(), device.IDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"folders": folders, "count": len(folders)})
}

type folderRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (h *LibraryHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req folderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	f, err := h.svc.CreateFolder(r.Context(), device.IDFromContext(r.Context()), req.Name, req.Color)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *LibraryHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "folder")
	if !ok {
		return
	}
	var upd library.FolderUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	f, err := h.svc.UpdateFolder(r.Context(), device.IDFromContext(r.Context()), id, upd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (h *LibraryHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "folder")
	if !ok {
		return
	}
	if err := h.svc.DeleteFolder(r.Context(), device.IDFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.ListHistory(r.Context(), device.IDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"history": history, "count": len(history)})
}

type historyRequest struct {
	FinalPrompt string       `json:"final_prompt"`
	Model       models.Model `json:"model"`
	Objective   string       `json:"objective"`
}

func (h *LibraryHandler) AddHistory(w http.ResponseWriter, r *http.Request) {
	var req historyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.FinalPrompt == "" {
		writeError(w, http.StatusBadRequest, "final_prompt required")
		return
	}
	e, err := h.svc.AddHistory(r.Context(), device.IDFromContext(r.Context()), req.FinalPrompt, req.Model, req.Objective)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *LibraryHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearHistory(r.Context(), device.IDFromContext(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) Settings(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Settings(r.Context(), device.IDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *LibraryHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var upd library.SettingsUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}
	st, err := h.svc.UpdateSettings(r.Context(), device.IDFromContext(r.Context()), upd)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *LibraryHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.CompleteOnboarding(r.Context(), device.IDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *LibraryHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearAll(r.Context(), device.IDFromContext(r.Context())); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Resolve(r.Context(), device.IDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *LibraryHandler) Remix(w http.ResponseWriter, r *http.Request) {
	in, err := h.svc.Remix(r.Context(), device.IDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"inputs": in})
}
