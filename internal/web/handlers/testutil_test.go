package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/robertcoopercode/better-photos/internal/library"
	"github.com/robertcoopercode/better-photos/internal/session"
	"github.com/robertcoopercode/better-photos/internal/state"
)

// stubBridge is an always-succeeding in-memory write path.
type stubBridge struct {
	mu       sync.Mutex
	keywords map[string][]string
	albums   map[string]map[string]bool
	nextID   int
}

func newStubBridge() *stubBridge {
	return &stubBridge{
		keywords: make(map[string][]string),
		albums:   make(map[string]map[string]bool),
	}
}

func (b *stubBridge) EnsureRunning(context.Context) error { return nil }

func (b *stubBridge) GetKeywords(_ context.Context, itemID string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.keywords[itemID]...), nil
}

func (b *stubBridge) AddKeywords(_ context.Context, itemID string, kws []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keywords[itemID] = append(b.keywords[itemID], kws...)
	return nil
}

func (b *stubBridge) RemoveKeywords(_ context.Context, itemID string, kws []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, kw := range kws {
		out := b.keywords[itemID][:0]
		for _, existing := range b.keywords[itemID] {
			if existing != kw {
				out = append(out, existing)
			}
		}
		b.keywords[itemID] = out
	}
	return nil
}

func (b *stubBridge) AddToAlbum(_ context.Context, albumID, itemID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.albums[albumID] == nil {
		b.albums[albumID] = make(map[string]bool)
	}
	b.albums[albumID][itemID] = true
	return nil
}

func (b *stubBridge) RemoveFromAlbum(_ context.Context, albumID, itemID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.albums[albumID], itemID)
	return nil
}

func (b *stubBridge) CreateAlbum(_ context.Context, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	return fmt.Sprintf("album-%d", b.nextID), nil
}

func (b *stubBridge) RenameAlbum(context.Context, string, string) error { return nil }
func (b *stubBridge) DeleteAlbum(context.Context, string) error { return nil }

// stubIndex serves empty listings.
type stubIndex struct{}

func (stubIndex) ListTagCounts(context.Context, bool) ([]library.TagCount, error) {
	return nil, nil
}
func (stubIndex) ItemsWithTag(context.Context, string) ([]string, error) { return nil, nil }
func (stubIndex) ListAlbums(context.Context) ([]library.Album, error) { return nil, nil }
func (stubIndex) AlbumContains(context.Context, string, string) (bool, error) {
	return false, nil
}
func (stubIndex) ListPeople(context.Context) ([]library.Person, error) { return nil, nil }
func (stubIndex) PeopleInItem(context.Context, string) ([]library.Person, error) {
	return nil, nil
}

type stubSuppressor struct {
	mu   sync.Mutex
	tags map[string]bool
}

func newStubSuppressor() *stubSuppressor {
	return &stubSuppressor{tags: make(map[string]bool)}
}

func (s *stubSuppressor) IsSuppressed(tag string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tags[tag]
}

func (s *stubSuppressor) Suppress(tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[tag] = true
	return nil
}

func (s *stubSuppressor) Unsuppress(tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tags, tag)
	return nil
}

// testSession creates a session backed by stub collaborators.
func testSession(t *testing.T) (*session.Session, *stubBridge) {
	t.Helper()
	bridge := newStubBridge()
	s := session.New(bridge, stubIndex{}, newStubSuppressor(), time.Hour)
	t.Cleanup(s.Close)
	return s, bridge
}

// testStore creates a state store on a temp file.
func testStore(t *testing.T) *state.Store {
	t.Helper()
	store, err := state.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("failed to open state store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// jsonRequest creates a request with a JSON body.
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
