package handlers

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/posthub/posthub/internal/api/respond"
	"github.com/posthub/posthub/internal/media"
)

// MediaHandler serves stored image payloads back to clients.
type MediaHandler struct {
	store media.Store
}

func NewMediaHandler(store media.Store) *MediaHandler {
	return &MediaHandler{store: store}
}

func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	path := h.store.Path(ref)

	if _, err := os.Stat(path); err != nil {
		respond.Error(w, r, http.StatusNotFound, "Not Found", "No such media file")
		return
	}

	http.ServeFile(w, r, path)
}
