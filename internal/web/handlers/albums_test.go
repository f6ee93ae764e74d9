package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/robertcoopercode/better-photos/internal/session"
)

func TestAlbumsHandler_CreateAddsSelection(t *testing.T) {
	s, bridge := testSession(t)
	s.SetItems([]string{"a", "b"})
	s.SelectAll()
	handler := NewAlbumsHandler(s)

	recorder := httptest.NewRecorder()
	handler.Create(recorder, jsonRequest(t, "POST", "/api/v1/albums", map[string]any{"name": "Trip"}))
	assertStatusCode(t, recorder, http.StatusCreated)

	var resp struct {
		AlbumID string `json:"album_id"`
	}
	parseJSONResponse(t, recorder, &resp)
	if resp.AlbumID == "" {
		t.Fatal("expected album id in response")
	}
	if !bridge.albums[resp.AlbumID]["a"] || !bridge.albums[resp.AlbumID]["b"] {
		t.Errorf("selection not added to album: %v", bridge.albums)
	}
}

func TestAlbumsHandler_CreateRejectsBlankName(t *testing.T) {
	s, _ := testSession(t)
	handler := NewAlbumsHandler(s)

	recorder := httptest.NewRecorder()
	handler.Create(recorder, jsonRequest(t, "POST", "/api/v1/albums", map[string]any{"name": "  "}))
	assertStatusCode(t, recorder, http.StatusBadGateway)
}

func TestAlbumsHandler_AddRequiresAlbumID(t *testing.T) {
	s, _ := testSession(t)
	handler := NewAlbumsHandler(s)

	recorder := httptest.NewRecorder()
	handler.Add(recorder, jsonRequest(t, "POST", "/api/v1/albums/add", map[string]any{}))
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "album_id is required")
}

func TestAlbumsHandler_Filter(t *testing.T) {
	s, _ := testSession(t)
	handler := NewAlbumsHandler(s)

	recorder := httptest.NewRecorder()
	handler.Filter(recorder, jsonRequest(t, "POST", "/api/v1/albums/filter", map[string]any{"album_id": "al-1"}))
	assertStatusCode(t, recorder, http.StatusOK)

	var state session.State
	parseJSONResponse(t, recorder, &state)
	if state.AlbumFilter != "al-1" {
		t.Errorf("expected filter al-1, got %q", state.AlbumFilter)
	}
}

func TestAlbumsHandler_DeleteClearsFilter(t *testing.T) {
	s, _ := testSession(t)
	s.SetAlbumFilter("al-1")
	handler := NewAlbumsHandler(s)

	req := httptest.NewRequest("DELETE", "/api/v1/albums/al-1", nil)
	req = requestWithChiParams(req, map[string]string{"uid": "al-1"})
	recorder := httptest.NewRecorder()
	handler.Delete(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var state session.State
	parseJSONResponse(t, recorder, &state)
	if state.AlbumFilter != "" {
		t.Errorf("expected filter cleared, got %q", state.AlbumFilter)
	}
}
