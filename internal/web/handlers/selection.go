package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/robertcoopercode/better-photos/internal/session"
)

// SelectionHandler handles selection state endpoints.
type SelectionHandler struct {
	session *session.Session
}

// NewSelectionHandler creates a new selection handler.
func NewSelectionHandler(s *session.Session) *SelectionHandler {
	return &SelectionHandler{session: s}
}

// Get returns the current selection state with its aggregate views.
func (h *SelectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// SetItems installs the ordered item list loaded in the grid.
func (h *SelectionHandler) SetItems(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []string `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	h.session.SetItems(req.Items)
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Select applies a click on an item.
func (h *SelectionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Index  int    `json:"index"`
		Toggle bool   `json:"toggle"`
		Range  bool   `json:"range"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	var mods session.Modifier
	if req.Toggle {
		mods |= session.ModToggle
	}
	if req.Range {
		mods |= session.ModRange
	}

	h.session.SelectItem(req.ID, req.Index, mods)
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// SelectAll selects every loaded item.
func (h *SelectionHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	h.session.SelectAll()
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Clear empties the selection.
func (h *SelectionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.session.ClearSelection()
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Navigate moves the focus by one step.
func (h *SelectionHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Direction string `json:"direction"`
		Extend    bool   `json:"extend"`
		PerRow    int    `json:"per_row"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	h.session.Navigate(session.Direction(req.Direction), req.Extend, req.PerRow)
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}
