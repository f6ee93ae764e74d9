package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/robertcoopercode/better-photos/internal/session"
	"github.com/robertcoopercode/better-photos/internal/suggest"
)

const maxSuggestUpload = 32 << 20 // 32 MB

// SuggestHandler handles tag suggestion requests for the focused item.
type SuggestHandler struct {
	session  *session.Session
	provider suggest.Provider
	matcher  *suggest.Matcher
}

// NewSuggestHandler creates a new suggest handler. provider may be nil when
// no API key is configured.
func NewSuggestHandler(s *session.Session, provider suggest.Provider, matcher *suggest.Matcher) *SuggestHandler {
	return &SuggestHandler{session: s, provider: provider, matcher: matcher}
}

func readImage(r *http.Request) ([]byte, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("image")
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxSuggestUpload))
	}
	return io.ReadAll(io.LimitReader(r.Body, maxSuggestUpload))
}

// Suggest analyzes the uploaded image of the focused item and installs
// pending tag suggestions: ranked known tags first, novel candidates after.
func (h *SuggestHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil {
		respondError(w, http.StatusServiceUnavailable, "no suggestion provider configured")
		return
	}

	imageData, err := readImage(r)
	if err != nil || len(imageData) == 0 {
		respondError(w, http.StatusBadRequest, "image is required")
		return
	}

	known := h.session.KnownTags()
	candidates, err := h.provider.SuggestTags(r.Context(), imageData, known)
	if err != nil {
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	// Tags already on every selected item are not worth suggesting again.
	exclude := make(map[string]struct{})
	for _, tag := range h.session.Snapshot().CommonTags {
		exclude[tag] = struct{}{}
	}

	matches := h.matcher.Rank(r.Context(), candidates, known, exclude)

	suggestions := make([]string, 0, len(matches)+len(candidates))
	seen := make(map[string]struct{})
	for _, m := range matches {
		suggestions = append(suggestions, m.Tag)
		seen[m.Tag] = struct{}{}
	}
	for _, c := range candidates {
		if _, ok := seen[c.Name]; ok {
			continue
		}
		if _, ok := exclude[c.Name]; ok {
			continue
		}
		suggestions = append(suggestions, c.Name)
	}
	h.session.SetSuggestions(suggestions)

	respondJSON(w, http.StatusOK, map[string]any{
		"candidates":  candidates,
		"matches":     matches,
		"suggestions": h.session.Suggestions(),
		"usage":       h.provider.GetUsage(),
	})
}
