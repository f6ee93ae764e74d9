package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/robertcoopercode/better-photos/internal/library"
)

func TestReconciler_CoalescesBursts(t *testing.T) {
	var fired atomic.Int32
	r := newReconciler(30*time.Millisecond, func() { fired.Add(1) })
	defer r.Stop()

	r.Schedule()
	r.Schedule()
	r.Schedule()

	time.Sleep(150 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Errorf("expected a single coalesced run, got %d", got)
	}
}

func TestReconciler_StopCancelsPending(t *testing.T) {
	var fired atomic.Int32
	r := newReconciler(30*time.Millisecond, func() { fired.Add(1) })

	r.Schedule()
	r.Stop()
	r.Schedule()

	time.Sleep(100 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("expected no runs after stop, got %d", got)
	}
}

func TestResync_RefreshesListings(t *testing.T) {
	env := newTestEnv(t)
	s := env.session
	env.index.tagCounts = []library.TagCount{
		{Name: "beach", Photos: 3},
		{Name: "cat", Photos: 10, Videos: 2},
	}
	env.index.albums = []library.Album{{ID: "al-1", Title: "Summer"}}
	env.index.people = []library.Person{{ID: "p1", Name: "Alice", FaceCount: 5}}

	if err := s.Resync(context.Background()); err != nil {
		t.Fatalf("resync: %v", err)
	}

	if got := s.KnownTags(); !equalStrings(got, []string{"beach", "cat"}) {
		t.Errorf("expected known tags [beach cat], got %v", got)
	}
	if counts := s.TagCounts(); len(counts) != 2 {
		t.Errorf("expected 2 tag counts, got %v", counts)
	}
	if albums := s.Albums(); len(albums) != 1 || albums[0].Title != "Summer" {
		t.Errorf("expected album listing, got %v", albums)
	}
	if people := s.People(); len(people) != 1 || people[0].Name != "Alice" {
		t.Errorf("expected people listing, got %v", people)
	}
}

func TestResync_HidesSuppressedOrphans(t *testing.T) {
	env := newTestEnv(t)
	s := env.session
	env.suppressor.Suppress("sunset")
	env.index.tagCounts = []library.TagCount{
		{Name: "sunset"},
		{Name: "cat", Photos: 1},
	}

	if err := s.Resync(context.Background()); err != nil {
		t.Fatalf("resync: %v", err)
	}

	if got := s.KnownTags(); !equalStrings(got, []string{"cat"}) {
		t.Errorf("expected suppressed orphan hidden, got %v", got)
	}
	for _, tc := range s.TagCounts() {
		if tc.Name == "sunset" {
			t.Errorf("suppressed orphan listed in counts")
		}
	}
	if !env.suppressor.IsSuppressed("sunset") {
		t.Errorf("orphan should stay suppressed while its count is zero")
	}
}

func TestResync_UnsuppressesWhenItemsReappear(t *testing.T) {
	env := newTestEnv(t)
	s := env.session
	env.suppressor.Suppress("sunset")
	env.index.tagCounts = []library.TagCount{{Name: "sunset", Photos: 4}}

	if err := s.Resync(context.Background()); err != nil {
		t.Fatalf("resync: %v", err)
	}

	if got := s.KnownTags(); !equalStrings(got, []string{"sunset"}) {
		t.Errorf("expected tag to reappear, got %v", got)
	}
	if env.suppressor.IsSuppressed("sunset") {
		t.Errorf("expected automatic unsuppress once items match again")
	}
}

func TestResync_KeepsCacheObservedTags(t *testing.T) {
	env := newTestEnv(t)
	s := env.session
	env.bridge.keywords["a"] = []string{"fresh"}
	s.SetItems([]string{"a"})
	s.SelectItem("a", 0, 0)
	if err := s.LoadTags(context.Background()); err != nil {
		t.Fatalf("load tags: %v", err)
	}

	// The index has not caught up with the just-written tag yet.
	env.index.tagCounts = []library.TagCount{{Name: "cat", Photos: 1}}

	if err := s.Resync(context.Background()); err != nil {
		t.Fatalf("resync: %v", err)
	}

	if got := s.KnownTags(); !equalStrings(got, []string{"cat", "fresh"}) {
		t.Errorf("expected cache-observed tag retained, got %v", got)
	}
}

func TestMutationSchedulesSettleResync(t *testing.T) {
	bridge := newFakeBridge()
	index := newFakeIndex()
	suppressor := newFakeSuppressor()
	s := New(bridge, index, suppressor, 20*time.Millisecond)
	defer s.Close()

	index.mu.Lock()
	index.tagCounts = []library.TagCount{{Name: "cat", Photos: 1}}
	index.mu.Unlock()

	s.SetItems([]string{"a"})
	s.SelectItem("a", 0, 0)
	if err := s.AddTag(context.Background(), "cat"); err != nil {
		t.Fatalf("add tag: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.TagCounts()) == 1 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("settle-delay resync never refreshed the tag counts")
}
