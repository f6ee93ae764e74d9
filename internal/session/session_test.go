package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/robertcoopercode/better-photos/internal/library"
)

type fakeBridge struct {
	mu       sync.Mutex
	keywords map[string][]string
	albums   map[string]map[string]bool
	titles   map[string]string
	nextID   int

	failAddKeywords    map[string]bool
	failRemoveKeywords map[string]bool
	failAddToAlbum     map[string]bool
	failRemoveFromAl   map[string]bool
	notRunning         bool

	getCalls      int
	addCalls      int
	removeCalls   int
	albumAddCalls int
	removedAlbums []string

	// Hooks run at the start of the matching bridge call.
	onGetKeywords    func(itemID string)
	onAddKeywords    func(itemID string)
	onRemoveKeywords func(itemID string)
	onAddToAlbum     func(itemID string)
	onRemoveFromAl   func(itemID string)
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		keywords:           make(map[string][]string),
		albums:             make(map[string]map[string]bool),
		titles:             make(map[string]string),
		failAddKeywords:    make(map[string]bool),
		failRemoveKeywords: make(map[string]bool),
		failAddToAlbum:     make(map[string]bool),
		failRemoveFromAl:   make(map[string]bool),
	}
}

func (b *fakeBridge) EnsureRunning(_ context.Context) error {
	if b.notRunning {
		return fmt.Errorf("photos is not running")
	}
	return nil
}

func (b *fakeBridge) GetKeywords(_ context.Context, itemID string) ([]string, error) {
	if b.onGetKeywords != nil {
		b.onGetKeywords(itemID)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.getCalls++
	return append([]string(nil), b.keywords[itemID]...), nil
}

func (b *fakeBridge) AddKeywords(_ context.Context, itemID string, kws []string) error {
	if b.onAddKeywords != nil {
		b.onAddKeywords(itemID)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addCalls++
	if b.failAddKeywords[itemID] {
		return fmt.Errorf("execution error")
	}
	for _, kw := range kws {
		present := false
		for _, existing := range b.keywords[itemID] {
			if existing == kw {
				present = true
				break
			}
		}
		if !present {
			b.keywords[itemID] = append(b.keywords[itemID], kw)
		}
	}
	return nil
}

func (b *fakeBridge) RemoveKeywords(_ context.Context, itemID string, kws []string) error {
	if b.onRemoveKeywords != nil {
		b.onRemoveKeywords(itemID)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeCalls++
	if b.failRemoveKeywords[itemID] {
		return fmt.Errorf("execution error")
	}
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

func (b *fakeBridge) AddToAlbum(_ context.Context, albumID, itemID string) error {
	if b.onAddToAlbum != nil {
		b.onAddToAlbum(itemID)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.albumAddCalls++
	if b.failAddToAlbum[itemID] {
		return fmt.Errorf("execution error")
	}
	if b.albums[albumID] == nil {
		b.albums[albumID] = make(map[string]bool)
	}
	b.albums[albumID][itemID] = true
	return nil
}

func (b *fakeBridge) RemoveFromAlbum(_ context.Context, albumID, itemID string) error {
	if b.onRemoveFromAl != nil {
		b.onRemoveFromAl(itemID)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failRemoveFromAl[itemID] {
		return fmt.Errorf("execution error")
	}
	delete(b.albums[albumID], itemID)
	return nil
}

func (b *fakeBridge) CreateAlbum(_ context.Context, name string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := fmt.Sprintf("album-%d", b.nextID)
	b.albums[id] = make(map[string]bool)
	b.titles[id] = name
	return id, nil
}

func (b *fakeBridge) RenameAlbum(_ context.Context, albumID, title string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.titles[albumID] = title
	return nil
}

func (b *fakeBridge) DeleteAlbum(_ context.Context, albumID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.albums, albumID)
	delete(b.titles, albumID)
	b.removedAlbums = append(b.removedAlbums, albumID)
	return nil
}

func (b *fakeBridge) hasKeyword(itemID, kw string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.keywords[itemID] {
		if existing == kw {
			return true
		}
	}
	return false
}

type fakeIndex struct {
	mu           sync.Mutex
	tagCounts    []library.TagCount
	itemsByTag   map[string][]string
	albums       []library.Album
	members      map[string]map[string]bool
	people       []library.Person
	peopleByItem map[string][]library.Person
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{
		itemsByTag:   make(map[string][]string),
		members:      make(map[string]map[string]bool),
		peopleByItem: make(map[string][]library.Person),
	}
}

func (f *fakeIndex) ListTagCounts(_ context.Context, includeZero bool) ([]library.TagCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []library.TagCount
	for _, tc := range f.tagCounts {
		if !includeZero && tc.Total() == 0 {
			continue
		}
		out = append(out, tc)
	}
	return out, nil
}

func (f *fakeIndex) ItemsWithTag(_ context.Context, tag string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.itemsByTag[tag]...), nil
}

func (f *fakeIndex) ListAlbums(_ context.Context) ([]library.Album, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]library.Album(nil), f.albums...), nil
}

func (f *fakeIndex) AlbumContains(_ context.Context, albumID, itemID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[albumID][itemID], nil
}

func (f *fakeIndex) ListPeople(_ context.Context) ([]library.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]library.Person(nil), f.people...), nil
}

func (f *fakeIndex) PeopleInItem(_ context.Context, itemID string) ([]library.Person, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]library.Person(nil), f.peopleByItem[itemID]...), nil
}

type fakeSuppressor struct {
	mu   sync.Mutex
	tags map[string]bool
}

func newFakeSuppressor() *fakeSuppressor {
	return &fakeSuppressor{tags: make(map[string]bool)}
}

func (f *fakeSuppressor) IsSuppressed(tag string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tags[tag]
}

func (f *fakeSuppressor) Suppress(tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags[tag] = true
	return nil
}

func (f *fakeSuppressor) Unsuppress(tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tags, tag)
	return nil
}

type testEnv struct {
	session    *Session
	bridge     *fakeBridge
	index      *fakeIndex
	suppressor *fakeSuppressor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	bridge := newFakeBridge()
	index := newFakeIndex()
	suppressor := newFakeSuppressor()
	// Long settle delay keeps the reconciler from firing mid-test; tests
	// that need a resync call it directly.
	s := New(bridge, index, suppressor, time.Hour)
	t.Cleanup(s.Close)
	return &testEnv{session: s, bridge: bridge, index: index, suppressor: suppressor}
}

func sortedCopy(list []string) []string {
	out := append([]string(nil), list...)
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSnapshot_EmptyViewsSerializeAsArrays(t *testing.T) {
	env := newTestEnv(t)

	data, err := json.Marshal(env.session.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	if strings.Contains(string(data), "null") {
		t.Errorf("expected empty views to serialize as arrays, got %s", data)
	}
}
