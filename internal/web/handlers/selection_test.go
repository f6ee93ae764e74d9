package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/robertcoopercode/better-photos/internal/session"
)

func TestSelectionHandler_SetItemsAndSelect(t *testing.T) {
	s, _ := testSession(t)
	handler := NewSelectionHandler(s)

	req := jsonRequest(t, "POST", "/api/v1/selection/items", map[string]any{
		"items": []string{"a", "b", "c"},
	})
	recorder := httptest.NewRecorder()
	handler.SetItems(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	req = jsonRequest(t, "POST", "/api/v1/selection/select", map[string]any{
		"id": "b", "index": 1,
	})
	recorder = httptest.NewRecorder()
	handler.Select(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var state session.State
	parseJSONResponse(t, recorder, &state)
	if len(state.Selected) != 1 || state.Selected[0] != "b" {
		t.Errorf("expected selection [b], got %v", state.Selected)
	}
	if state.Focused != "b" {
		t.Errorf("expected focus b, got %q", state.Focused)
	}
}

func TestSelectionHandler_SelectWithModifiers(t *testing.T) {
	s, _ := testSession(t)
	s.SetItems([]string{"a", "b", "c", "d"})
	handler := NewSelectionHandler(s)

	recorder := httptest.NewRecorder()
	handler.Select(recorder, jsonRequest(t, "POST", "/api/v1/selection/select", map[string]any{
		"id": "a", "index": 0,
	}))

	recorder = httptest.NewRecorder()
	handler.Select(recorder, jsonRequest(t, "POST", "/api/v1/selection/select", map[string]any{
		"id": "c", "index": 2, "range": true,
	}))

	var state session.State
	parseJSONResponse(t, recorder, &state)
	if len(state.Selected) != 3 {
		t.Errorf("expected range of 3 items, got %v", state.Selected)
	}
}

func TestSelectionHandler_AllAndClear(t *testing.T) {
	s, _ := testSession(t)
	s.SetItems([]string{"a", "b"})
	handler := NewSelectionHandler(s)

	recorder := httptest.NewRecorder()
	handler.SelectAll(recorder, httptest.NewRequest("POST", "/api/v1/selection/all", nil))
	var state session.State
	parseJSONResponse(t, recorder, &state)
	if len(state.Selected) != 2 {
		t.Errorf("expected 2 selected, got %v", state.Selected)
	}

	recorder = httptest.NewRecorder()
	handler.Clear(recorder, httptest.NewRequest("POST", "/api/v1/selection/clear", nil))
	parseJSONResponse(t, recorder, &state)
	if len(state.Selected) != 0 {
		t.Errorf("expected empty selection, got %v", state.Selected)
	}
}

func TestSelectionHandler_Navigate(t *testing.T) {
	s, _ := testSession(t)
	s.SetItems([]string{"a", "b", "c"})
	s.SelectItem("a", 0, 0)
	handler := NewSelectionHandler(s)

	recorder := httptest.NewRecorder()
	handler.Navigate(recorder, jsonRequest(t, "POST", "/api/v1/selection/navigate", map[string]any{
		"direction": "right", "per_row": 3,
	}))

	var state session.State
	parseJSONResponse(t, recorder, &state)
	if state.Focused != "b" {
		t.Errorf("expected focus b, got %q", state.Focused)
	}
}

func TestSelectionHandler_InvalidBody(t *testing.T) {
	s, _ := testSession(t)
	handler := NewSelectionHandler(s)

	req := httptest.NewRequest("POST", "/api/v1/selection/select", nil)
	recorder := httptest.NewRecorder()
	handler.Select(recorder, req)

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidRequestBody)
}
