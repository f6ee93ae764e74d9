package handlers

import (
	"net/http"

	"github.com/robertcoopercode/better-photos/internal/library"
	"github.com/robertcoopercode/better-photos/internal/session"
)

// PeopleHandler handles people endpoints. People are read-only.
type PeopleHandler struct {
	session *session.Session
	library *library.Index
}

// NewPeopleHandler creates a new people handler.
func NewPeopleHandler(s *session.Session, idx *library.Index) *PeopleHandler {
	return &PeopleHandler{session: s, library: idx}
}

// List returns all named people with face counts.
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	people, err := h.library.ListPeople(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"people": people})
}

// Load fills the people cache for the selection.
func (h *PeopleHandler) Load(w http.ResponseWriter, r *http.Request) {
	if err := h.session.LoadPeople(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// NoFaces returns items with no detected faces.
func (h *PeopleHandler) NoFaces(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.library.ItemsWithoutFaces(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"count": total,
	})
}
