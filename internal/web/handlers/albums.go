package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robertcoopercode/better-photos/internal/session"
)

// AlbumsHandler handles album endpoints.
type AlbumsHandler struct {
	session *session.Session
}

// NewAlbumsHandler creates a new albums handler.
func NewAlbumsHandler(s *session.Session) *AlbumsHandler {
	return &AlbumsHandler{session: s}
}

// List returns the global album listing.
func (h *AlbumsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"albums": h.session.Albums()})
}

// Load fills the album membership cache for the selection.
func (h *AlbumsHandler) Load(w http.ResponseWriter, r *http.Request) {
	if err := h.session.LoadAlbums(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

type albumRequest struct {
	AlbumID string `json:"album_id"`
}

// Add puts every selected item into the album.
func (h *AlbumsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.AlbumID == "" {
		respondError(w, http.StatusBadRequest, "album_id is required")
		return
	}
	if err := h.session.AddToAlbum(r.Context(), req.AlbumID); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Remove takes every selected item out of the album.
func (h *AlbumsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.AlbumID == "" {
		respondError(w, http.StatusBadRequest, "album_id is required")
		return
	}
	if err := h.session.RemoveFromAlbum(r.Context(), req.AlbumID); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Create creates a new album and adds the whole selection to it.
func (h *AlbumsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	albumID, err := h.session.CreateAlbumAndAdd(r.Context(), req.Name)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"album_id": albumID,
		"state":    h.session.Snapshot(),
	})
}

// Rename retitles an album.
func (h *AlbumsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "uid")
	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if err := h.session.RenameAlbum(r.Context(), albumID, req.Title); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"albums": h.session.Albums()})
}

// Delete removes an album container, keeping its items.
func (h *AlbumsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	albumID := chi.URLParam(r, "uid")
	if err := h.session.DeleteAlbum(r.Context(), albumID); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Filter records the sidebar album filter.
func (h *AlbumsHandler) Filter(w http.ResponseWriter, r *http.Request) {
	var req albumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	h.session.SetAlbumFilter(req.AlbumID)
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}
