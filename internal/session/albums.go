package session

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/robertcoopercode/better-photos/internal/library"
)

// LoadAlbums makes sure every selected item has an album membership cache
// entry, then rederives the album aggregates. Membership is resolved per
// item and album pair against the index, which is why entries are cached for
// the lifetime of the selection and never re-fetched within it.
func (s *Session) LoadAlbums(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.albumsLoaded
	s.mu.Unlock()

	if !loaded {
		albums, err := s.index.ListAlbums(ctx)
		if err != nil {
			return fmt.Errorf("could not load albums: %w", err)
		}
		sort.Slice(albums, func(i, j int) bool {
			return strings.ToLower(albums[i].Title) < strings.ToLower(albums[j].Title)
		})
		s.mu.Lock()
		s.albums = albums
		s.albumsLoaded = true
		s.mu.Unlock()
	}

	s.mu.Lock()
	gen := s.generation
	albums := append([]library.Album(nil), s.albums...)
	var missing []string
	for _, id := range s.selectedListLocked() {
		if _, ok := s.albumCache[id]; !ok {
			missing = append(missing, id)
		}
	}
	s.mu.Unlock()

	fetched := make(map[string]map[string]struct{}, len(missing))
	for _, id := range missing {
		set := make(map[string]struct{})
		failed := false
		for _, album := range albums {
			member, err := s.index.AlbumContains(ctx, album.ID, id)
			if err != nil {
				log.Printf("could not check album %q membership of item %s: %v", album.Title, id, err)
				failed = true
				break
			}
			if member {
				set[album.ID] = struct{}{}
			}
		}
		// Entries are all-or-nothing; a half-checked one would make the
		// aggregates lie about membership.
		if !failed {
			fetched[id] = set
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, set := range fetched {
		s.albumCache[id] = set
	}
	if gen == s.generation {
		s.recomputeAlbumsLocked()
	}
	return nil
}

// AddToAlbum adds every selected item to the album. Items whose cache entry
// already shows membership are skipped; the bridge call itself is not
// guaranteed idempotent.
func (s *Session) AddToAlbum(ctx context.Context, albumID string) error {
	if albumID == "" {
		return nil
	}

	s.mu.Lock()
	items := s.selectedListLocked()
	gen := s.generation
	s.mu.Unlock()

	if len(items) == 0 {
		return nil
	}

	if err := s.bridge.EnsureRunning(ctx); err != nil {
		return fmt.Errorf("could not add to album: %w", err)
	}

	var succeeded []string
	attempted := 0
	var lastErr error
	for _, id := range items {
		s.mu.Lock()
		set, cached := s.albumCache[id]
		_, member := set[albumID]
		s.mu.Unlock()
		if cached && member {
			succeeded = append(succeeded, id)
			continue
		}
		attempted++
		if err := s.bridge.AddToAlbum(ctx, albumID, id); err != nil {
			log.Printf("could not add item %s to album: %v", id, err)
			lastErr = err
			continue
		}
		succeeded = append(succeeded, id)
	}
	if attempted > 0 && len(succeeded) == 0 {
		return fmt.Errorf("could not add to album: %w", lastErr)
	}

	s.mu.Lock()
	for _, id := range succeeded {
		if set, ok := s.albumCache[id]; ok {
			set[albumID] = struct{}{}
		}
	}
	// Same staleness rule as the tag mutations: the membership patch is
	// only valid for the selection the bridge loop ran against.
	if gen == s.generation {
		s.commonAlbums = insertSorted(s.commonAlbums, albumID)
		s.partialAlbums = removeString(s.partialAlbums, albumID)
	} else {
		s.recomputeAlbumsLocked()
	}
	s.mu.Unlock()

	s.reconciler.Schedule()
	return nil
}

// RemoveFromAlbum removes every selected item from the album. The bridge
// errors when an item is not a member, so each removal is attempted
// independently and per-item failures are only logged.
func (s *Session) RemoveFromAlbum(ctx context.Context, albumID string) error {
	if albumID == "" {
		return nil
	}

	s.mu.Lock()
	items := s.selectedListLocked()
	gen := s.generation
	s.mu.Unlock()

	if len(items) == 0 {
		return nil
	}

	if err := s.bridge.EnsureRunning(ctx); err != nil {
		return fmt.Errorf("could not remove from album: %w", err)
	}

	for _, id := range items {
		if err := s.bridge.RemoveFromAlbum(ctx, albumID, id); err != nil {
			log.Printf("could not remove item %s from album: %v", id, err)
		}
	}

	s.mu.Lock()
	for _, id := range items {
		if set, ok := s.albumCache[id]; ok {
			delete(set, albumID)
		}
	}
	if gen == s.generation {
		s.commonAlbums = removeString(s.commonAlbums, albumID)
		s.partialAlbums = removeString(s.partialAlbums, albumID)
	} else {
		s.recomputeAlbumsLocked()
	}
	s.mu.Unlock()

	s.reconciler.Schedule()
	return nil
}

// CreateAlbumAndAdd creates a new album and adds the whole selection to it.
// Returns the new album id.
func (s *Session) CreateAlbumAndAdd(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("album name is empty")
	}

	if err := s.bridge.EnsureRunning(ctx); err != nil {
		return "", fmt.Errorf("could not create album %q: %w", name, err)
	}

	albumID, err := s.bridge.CreateAlbum(ctx, name)
	if err != nil {
		return "", fmt.Errorf("could not create album %q: %w", name, err)
	}

	s.mu.Lock()
	s.albums = append(s.albums, library.Album{ID: albumID, Title: name})
	sort.Slice(s.albums, func(i, j int) bool {
		return strings.ToLower(s.albums[i].Title) < strings.ToLower(s.albums[j].Title)
	})
	s.mu.Unlock()

	if err := s.AddToAlbum(ctx, albumID); err != nil {
		return albumID, err
	}
	return albumID, nil
}

// RenameAlbum retitles an album. Independent of the selection.
func (s *Session) RenameAlbum(ctx context.Context, albumID, title string) error {
	title = strings.TrimSpace(title)
	if albumID == "" || title == "" {
		return fmt.Errorf("album title is empty")
	}

	if err := s.bridge.EnsureRunning(ctx); err != nil {
		return fmt.Errorf("could not rename album: %w", err)
	}
	if err := s.bridge.RenameAlbum(ctx, albumID, title); err != nil {
		return fmt.Errorf("could not rename album: %w", err)
	}

	s.mu.Lock()
	for i := range s.albums {
		if s.albums[i].ID == albumID {
			s.albums[i].Title = title
			break
		}
	}
	sort.Slice(s.albums, func(i, j int) bool {
		return strings.ToLower(s.albums[i].Title) < strings.ToLower(s.albums[j].Title)
	})
	s.mu.Unlock()

	s.reconciler.Schedule()
	return nil
}

// DeleteAlbum removes the album container, not its items. A sidebar filter
// pointing at the deleted album is cleared.
func (s *Session) DeleteAlbum(ctx context.Context, albumID string) error {
	if albumID == "" {
		return nil
	}

	if err := s.bridge.EnsureRunning(ctx); err != nil {
		return fmt.Errorf("could not delete album: %w", err)
	}
	if err := s.bridge.DeleteAlbum(ctx, albumID); err != nil {
		return fmt.Errorf("could not delete album: %w", err)
	}

	s.mu.Lock()
	albums := s.albums[:0]
	for _, a := range s.albums {
		if a.ID != albumID {
			albums = append(albums, a)
		}
	}
	s.albums = albums
	for _, set := range s.albumCache {
		delete(set, albumID)
	}
	s.commonAlbums = removeString(s.commonAlbums, albumID)
	s.partialAlbums = removeString(s.partialAlbums, albumID)
	if s.albumFilter == albumID {
		s.albumFilter = ""
	}
	s.mu.Unlock()

	s.reconciler.Schedule()
	return nil
}
