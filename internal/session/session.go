// Package session owns the selection, per-item metadata caches, and the
// common/partial aggregate views over the current selection. It is the only
// component that issues bridge mutations, and it reconciles its optimistic
// in-memory state against the library index after writes settle.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/robertcoopercode/better-photos/internal/library"
)

// Bridge is the serialized write path into Photos.
type Bridge interface {
	EnsureRunning(ctx context.Context) error
	GetKeywords(ctx context.Context, itemID string) ([]string, error)
	AddKeywords(ctx context.Context, itemID string, keywords []string) error
	RemoveKeywords(ctx context.Context, itemID string, keywords []string) error
	AddToAlbum(ctx context.Context, albumID, itemID string) error
	RemoveFromAlbum(ctx context.Context, albumID, itemID string) error
	CreateAlbum(ctx context.Context, name string) (string, error)
	RenameAlbum(ctx context.Context, albumID, title string) error
	DeleteAlbum(ctx context.Context, albumID string) error
}

// Index is the read-only view over the library database. It may lag recent
// bridge writes; the session compensates with the settle-delay reconciler.
type Index interface {
	ListTagCounts(ctx context.Context, includeZero bool) ([]library.TagCount, error)
	ItemsWithTag(ctx context.Context, tag string) ([]string, error)
	ListAlbums(ctx context.Context) ([]library.Album, error)
	AlbumContains(ctx context.Context, albumID, itemID string) (bool, error)
	ListPeople(ctx context.Context) ([]library.Person, error)
	PeopleInItem(ctx context.Context, itemID string) ([]library.Person, error)
}

// TagSuppressor is the persistent suppressed-tags set. Tags the user deleted
// stay hidden from listings even while the library still reports them.
type TagSuppressor interface {
	IsSuppressed(tag string) bool
	Suppress(tag string) error
	Unsuppress(tag string) error
}

// Session is the selection/aggregation core. All state behind mu; external
// I/O happens outside the lock and results are applied only when they still
// match the current selection generation.
type Session struct {
	mu         sync.Mutex
	bridge     Bridge
	index      Index
	suppressor TagSuppressor
	reconciler *reconciler

	// Loaded item list and selection.
	items    []string
	position map[string]int
	selected map[string]struct{}
	focused  string
	pivot    int

	// generation is bumped on every selection or item-list change. An
	// aggregation pass stamped with an older generation must not overwrite
	// the aggregate views.
	generation uint64

	// Per-item caches. An entry exists only after one successful full fetch
	// for that item; entries are never partially written.
	tagCache    map[string]map[string]struct{}
	albumCache  map[string]map[string]struct{}
	peopleCache map[string][]library.Person

	// Aggregate views, derived from the caches.
	commonTags    []string
	partialTags   []string
	commonAlbums  []string
	partialAlbums []string
	commonPeople  []string
	partialPeople []string

	// Global listings.
	knownTags    []string
	tagCounts    []library.TagCount
	albums       []library.Album
	albumsLoaded bool
	people       []library.Person
	peopleLoaded bool
	peopleByName map[string]library.Person

	// Sidebar album filter; cleared when the album it references is deleted.
	albumFilter string

	// Pending tag suggestions for the focused item.
	suggestions []string
}

// New creates a session. settleDelay is the wait between an accepted bridge
// mutation and the authoritative listing refresh.
func New(bridge Bridge, index Index, suppressor TagSuppressor, settleDelay time.Duration) *Session {
	s := &Session{
		bridge:       bridge,
		index:        index,
		suppressor:   suppressor,
		position:     make(map[string]int),
		selected:     make(map[string]struct{}),
		pivot:        -1,
		tagCache:     make(map[string]map[string]struct{}),
		albumCache:   make(map[string]map[string]struct{}),
		peopleCache:  make(map[string][]library.Person),
		peopleByName: make(map[string]library.Person),
	}
	s.reconciler = newReconciler(settleDelay, s.resyncAfterSettle)
	return s
}

// Close stops the pending reconciliation timer, if any.
func (s *Session) Close() {
	s.reconciler.Stop()
}

// SetItems installs the ordered item list currently loaded in the grid and
// drops all selection state and caches (library resync event).
func (s *Session) SetItems(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make([]string, len(ids))
	copy(s.items, ids)
	s.position = make(map[string]int, len(ids))
	for i, id := range ids {
		s.position[id] = i
	}

	s.clearSelectionLocked()
}

// Items returns the ordered loaded item list.
func (s *Session) Items() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// selectedListLocked returns the selected ids in item-list order.
func (s *Session) selectedListLocked() []string {
	out := make([]string, 0, len(s.selected))
	for _, id := range s.items {
		if _, ok := s.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// State is a snapshot of the selection and its aggregate views.
type State struct {
	Selected    []string `json:"selected"`
	Focused     string   `json:"focused"`
	CommonTags  []string `json:"common_tags"`
	PartialTags []string `json:"partial_tags"`

	CommonAlbums  []library.Album `json:"common_albums"`
	PartialAlbums []library.Album `json:"partial_albums"`

	CommonPeople  []library.Person `json:"common_people"`
	PartialPeople []library.Person `json:"partial_people"`

	Suggestions []string `json:"suggestions"`
	AlbumFilter string   `json:"album_filter"`
}

// Snapshot returns the current selection state and aggregates. Every slice
// is non-nil so empty views serialize as [] rather than null.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return State{
		Selected:      s.selectedListLocked(),
		Focused:       s.focused,
		CommonTags:    copyStrings(s.commonTags),
		PartialTags:   copyStrings(s.partialTags),
		CommonAlbums:  s.albumRecordsLocked(s.commonAlbums),
		PartialAlbums: s.albumRecordsLocked(s.partialAlbums),
		CommonPeople:  s.personRecordsLocked(s.commonPeople),
		PartialPeople: s.personRecordsLocked(s.partialPeople),
		Suggestions:   copyStrings(s.suggestions),
		AlbumFilter:   s.albumFilter,
	}
}

func copyStrings(in []string) []string {
	return append(make([]string, 0, len(in)), in...)
}

// KnownTags returns the global known-tags listing used for autocomplete.
func (s *Session) KnownTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.knownTags...)
}

// TagCounts returns the sidebar tag counts from the last resync.
func (s *Session) TagCounts() []library.TagCount {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]library.TagCount(nil), s.tagCounts...)
}

// Albums returns the global album listing.
func (s *Session) Albums() []library.Album {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]library.Album(nil), s.albums...)
}

// People returns the global people listing.
func (s *Session) People() []library.Person {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]library.Person(nil), s.people...)
}

// Focused returns the focused item id, or empty when none.
func (s *Session) Focused() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

// SetAlbumFilter records which album the sidebar is filtering on.
func (s *Session) SetAlbumFilter(albumID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.albumFilter = albumID
}

// SetSuggestions installs pending tag suggestions for the focused item.
// Suggestions already applied to the whole selection are dropped.
func (s *Session) SetSuggestions(tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.suggestions = s.suggestions[:0]
	for _, t := range tags {
		t = normalizeTag(t)
		if t == "" || containsFold(s.commonTags, t) {
			continue
		}
		s.suggestions = append(s.suggestions, t)
	}
}

// Suggestions returns the pending tag suggestions.
func (s *Session) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.suggestions...)
}
