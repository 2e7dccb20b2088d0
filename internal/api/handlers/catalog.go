package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/promptia/internal/catalog"
	"github.com/nikhilbhutani/promptia/internal/models"
)

type CatalogHandler struct {
	cat *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{cat: cat}
}

func (h *CatalogHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": h.cat.Categories(),
		"chips":      h.cat.Chips(),
		"models":     models.Models(),
		"locales":    h.cat.Locales(),
	})
}

func (h *CatalogHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	picks, _ := strconv.ParseBool(q.Get("editor_picks"))

	items := h.cat.Gallery(catalog.GalleryFilter{
		Tag:         q.Get("tag"),
		Model:       models.Model(q.Get("model")),
		EditorPicks: picks,
		Query:       q.Get("q"),
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"items": items, "count": len(items)})
}

func (h *CatalogHandler) GalleryItem(w http.ResponseWriter, r *http.Request) {
	item, ok := h.cat.GalleryItem(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "gallery item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Strings returns UI strings for a locale. "auto" negotiates from Accept-Language.
func (h *CatalogHandler) Strings(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	if lang == "" || lang == "auto" {
		lang = h.cat.Locale(r.Header.Get("Accept-Language"))
	}
	locale, strs := h.cat.Strings(lang)
	writeJSON(w, http.StatusOK, map[string]interface{}{"locale": locale, "strings": strs})
}
