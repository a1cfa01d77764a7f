package daemon

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"jotter/internal/types"
)

func (a *API) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	notes, err := a.Notes.List(r.Context(), userID, parseArchived(r.URL.Query().Get("archived")))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (a *API) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	var draft types.NoteDraft
	if err := decodeJSONBody(w, r, &draft); err != nil {
		writeServiceError(w, err)
		return
	}
	note, err := a.Notes.Create(r.Context(), userID, draft)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (a *API) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	var patch types.NotePatch
	if err := decodeJSONBody(w, r, &patch); err != nil {
		writeServiceError(w, err)
		return
	}
	note, err := a.Notes.Update(r.Context(), userID, id, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (a *API) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := a.Notes.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}
