package handlers

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/robertcoopercode/better-photos/internal/session"
)

const autocompleteLimit = 10

// TagsHandler handles tag endpoints.
type TagsHandler struct {
	session *session.Session
}

// NewTagsHandler creates a new tags handler.
func NewTagsHandler(s *session.Session) *TagsHandler {
	return &TagsHandler{session: s}
}

// List returns the sidebar tag counts and the known-tags listing.
func (h *TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"counts": h.session.TagCounts(),
		"known":  h.session.KnownTags(),
	})
}

// Autocomplete ranks known tags against the typed query.
func (h *TagsHandler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondJSON(w, http.StatusOK, map[string]any{"tags": []string{}})
		return
	}

	ranks := fuzzy.RankFindNormalizedFold(query, h.session.KnownTags())
	sort.Sort(ranks)

	tags := make([]string, 0, autocompleteLimit)
	for _, rank := range ranks {
		tags = append(tags, rank.Target)
		if len(tags) == autocompleteLimit {
			break
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// Load fills the tag cache for the selection and returns the fresh state.
func (h *TagsHandler) Load(w http.ResponseWriter, r *http.Request) {
	if err := h.session.LoadTags(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

type tagRequest struct {
	Tag string `json:"tag"`
}

// Add applies a tag to the whole selection.
func (h *TagsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if err := h.session.AddTag(r.Context(), req.Tag); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Remove strips a tag from the whole selection.
func (h *TagsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if err := h.session.RemoveTag(r.Context(), req.Tag); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Promote applies a partial tag to every selected item.
func (h *TagsHandler) Promote(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if err := h.session.PromotePartialTag(r.Context(), req.Tag); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Rename renames a tag across the whole library.
func (h *TagsHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Old string `json:"old"`
		New string `json:"new"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Old == "" || req.New == "" {
		respondError(w, http.StatusBadRequest, "old and new tag names are required")
		return
	}
	if err := h.session.RenameTag(r.Context(), req.Old, req.New); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}

// Delete strips a tag from the whole library and suppresses it.
func (h *TagsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Tag == "" {
		respondError(w, http.StatusBadRequest, "tag is required")
		return
	}
	if err := h.session.DeleteTag(r.Context(), req.Tag); err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, h.session.Snapshot())
}
