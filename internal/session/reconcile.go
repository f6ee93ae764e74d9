package session

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robertcoopercode/better-photos/internal/library"
)

// reconciler runs a callback once per burst of mutations, after a settle
// delay. Scheduling again before the delay elapses resets the timer, so a
// run of quick edits produces a single refresh.
type reconciler struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
}

func newReconciler(delay time.Duration, fn func()) *reconciler {
	return &reconciler{delay: delay, fn: fn}
}

func (r *reconciler) Schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, r.fn)
}

func (r *reconciler) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
	}
}

func (s *Session) resyncAfterSettle() {
	if err := s.Resync(context.Background()); err != nil {
		log.Printf("resync after settle delay failed: %v", err)
	}
}

// Resync refreshes the authoritative listings (tag counts, known tags,
// albums, people) from the index. The per-item caches are left alone; they
// were already updated optimistically when the mutations were accepted.
//
// Suppressed tags are hidden only while the index reports no matching items.
// A suppressed tag that comes back with a count means new matching items
// appeared since the delete, so it is unsuppressed and listed again.
func (s *Session) Resync(ctx context.Context) error {
	counts, err := s.index.ListTagCounts(ctx, true)
	if err != nil {
		return fmt.Errorf("could not refresh tag listings: %w", err)
	}

	visible := counts[:0]
	for _, tc := range counts {
		if s.suppressor.IsSuppressed(tc.Name) {
			if tc.Total() == 0 {
				continue
			}
			if err := s.suppressor.Unsuppress(tc.Name); err != nil {
				log.Printf("could not unsuppress tag %q: %v", tc.Name, err)
			}
		}
		visible = append(visible, tc)
	}

	albums, err := s.index.ListAlbums(ctx)
	if err != nil {
		return fmt.Errorf("could not refresh album listing: %w", err)
	}
	people, err := s.index.ListPeople(ctx)
	if err != nil {
		return fmt.Errorf("could not refresh people listing: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tagCounts = visible

	known := make([]string, 0, len(visible))
	for _, tc := range visible {
		known = append(known, tc.Name)
	}
	// Tags observed on cached items but absent from the listing (just
	// written, index not settled yet) stay in the known set.
	for _, set := range s.tagCache {
		for tag := range set {
			if !containsFold(known, tag) && !s.suppressor.IsSuppressed(tag) {
				known = append(known, tag)
			}
		}
	}
	sortFold(known)
	s.knownTags = known

	sort.Slice(albums, func(i, j int) bool {
		return strings.ToLower(albums[i].Title) < strings.ToLower(albums[j].Title)
	})
	s.albums = albums
	s.albumsLoaded = true

	s.people = people
	s.peopleLoaded = true
	byName := make(map[string]library.Person, len(people))
	for _, p := range people {
		key := normalizePersonName(p.Name)
		if key == "" {
			continue
		}
		if _, ok := byName[key]; !ok {
			byName[key] = p
		}
	}
	for _, cached := range s.peopleCache {
		for _, p := range cached {
			key := normalizePersonName(p.Name)
			if key == "" {
				continue
			}
			if _, ok := byName[key]; !ok {
				byName[key] = p
			}
		}
	}
	s.peopleByName = byName

	s.recomputeTagsLocked()
	s.recomputeAlbumsLocked()
	s.recomputePeopleLocked()

	return nil
}
