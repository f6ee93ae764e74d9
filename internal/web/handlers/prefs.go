package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/robertcoopercode/better-photos/internal/state"
)

// PrefsHandler handles UI preference endpoints.
type PrefsHandler struct {
	store *state.Store
}

// NewPrefsHandler creates a new preferences handler.
func NewPrefsHandler(store *state.Store) *PrefsHandler {
	return &PrefsHandler{store: store}
}

// Get returns the persisted UI preferences.
func (h *PrefsHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.LoadPrefs())
}

// Update persists new UI preferences.
func (h *PrefsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var prefs state.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if prefs.GridDensity < 1 || prefs.ThumbnailSize < 1 {
		respondError(w, http.StatusBadRequest, "grid density and thumbnail size must be positive")
		return
	}
	if err := h.store.SavePrefs(prefs); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, prefs)
}
