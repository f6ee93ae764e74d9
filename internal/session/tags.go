package session

import (
	"context"
	"fmt"
	"log"
)

// LoadTags makes sure every selected item has a tag cache entry, fetching
// missing entries through the bridge, then rederives the tag aggregates.
// A per-item fetch failure is logged and leaves that item's entry absent.
//
// Fetched entries always land in the cache, but the aggregates are only
// recomputed if the selection has not changed since the pass started. A
// stale pass must not overwrite a newer selection's views.
func (s *Session) LoadTags(ctx context.Context) error {
	s.mu.Lock()
	gen := s.generation
	var missing []string
	for _, id := range s.selectedListLocked() {
		if _, ok := s.tagCache[id]; !ok {
			missing = append(missing, id)
		}
	}
	s.mu.Unlock()

	if len(missing) == 0 {
		s.mu.Lock()
		if gen == s.generation {
			s.recomputeTagsLocked()
		}
		s.mu.Unlock()
		return nil
	}

	if err := s.bridge.EnsureRunning(ctx); err != nil {
		return fmt.Errorf("could not load tags: %w", err)
	}

	fetched := make(map[string]map[string]struct{}, len(missing))
	for _, id := range missing {
		keywords, err := s.bridge.GetKeywords(ctx, id)
		if err != nil {
			log.Printf("could not read keywords of item %s: %v", id, err)
			continue
		}
		set := make(map[string]struct{}, len(keywords))
		for _, kw := range keywords {
			if tag := normalizeTag(kw); tag != "" {
				set[tag] = struct{}{}
			}
		}
		fetched[id] = set
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, set := range fetched {
		s.tagCache[id] = set
		// Tags created outside the app surface in autocomplete through
		// the items they were observed on.
		for tag := range set {
			if !s.suppressor.IsSuppressed(tag) {
				s.knownTags = insertSorted(s.knownTags, tag)
			}
		}
	}

	if gen == s.generation {
		s.recomputeTagsLocked()
	}
	return nil
}

// AddTag applies a tag to every selected item. The tag is normalized first;
// an empty result or a tag that is already common is a no-op. Per-item
// bridge failures are logged and skipped; the operation fails as a whole
// only when no item could be tagged.
func (s *Session) AddTag(ctx context.Context, text string) error {
	tag := normalizeTag(text)
	if tag == "" {
		return nil
	}

	s.mu.Lock()
	if containsFold(s.commonTags, tag) {
		s.mu.Unlock()
		return nil
	}
	items := s.selectedListLocked()
	gen := s.generation
	s.mu.Unlock()

	if len(items) == 0 {
		return nil
	}

	if err := s.bridge.EnsureRunning(ctx); err != nil {
		return fmt.Errorf("could not add tag %q: %w", tag, err)
	}

	var succeeded []string
	var lastErr error
	for _, id := range items {
		if err := s.bridge.AddKeywords(ctx, id, []string{tag}); err != nil {
			log.Printf("could not add tag %q to item %s: %v", tag, id, err)
			lastErr = err
			continue
		}
		succeeded = append(succeeded, id)
	}
	if len(succeeded) == 0 {
		return fmt.Errorf("could not add tag %q: %w", tag, lastErr)
	}

	s.mu.Lock()
	for _, id := range succeeded {
		if set, ok := s.tagCache[id]; ok {
			set[tag] = struct{}{}
		}
	}
	// The optimistic view patch is only valid for the selection the
	// mutation ran against. A selection change mid-flight means the
	// views belong to someone else now; rederive them instead.
	if gen == s.generation {
		s.commonTags = insertSorted(s.commonTags, tag)
		s.partialTags = removeString(s.partialTags, tag)
	} else {
		s.recomputeTagsLocked()
	}
	s.knownTags = insertSorted(s.knownTags, tag)
	s.suggestions = removeString(s.suggestions, tag)
	s.mu.Unlock()

	// Re-tagging a deleted tag brings it back.
	if s.suppressor.IsSuppressed(tag) {
		if err := s.suppressor.Unsuppress(tag); err != nil {
			log.Printf("could not unsuppress tag %q: %v", tag, err)
		}
	}

	s.reconciler.Schedule()
	return nil
}

// PromotePartialTag applies a tag already present on part of the selection
// to every selected item, moving it from the partial view to the common one.
func (s *Session) PromotePartialTag(ctx context.Context, tag string) error {
	return s.AddTag(ctx, tag)
}

// RemoveTag strips a tag from every selected item.
func (s *Session) RemoveTag(ctx context.Context, text string) error {
	tag := normalizeTag(text)
	if tag == "" {
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
		return fmt.Errorf("could not remove tag %q: %w", tag, err)
	}

	var succeeded []string
	var lastErr error
	for _, id := range items {
		if err := s.bridge.RemoveKeywords(ctx, id, []string{tag}); err != nil {
			log.Printf("could not remove tag %q from item %s: %v", tag, id, err)
			lastErr = err
			continue
		}
		succeeded = append(succeeded, id)
	}
	if len(succeeded) == 0 {
		return fmt.Errorf("could not remove tag %q: %w", tag, lastErr)
	}

	s.mu.Lock()
	for _, id := range succeeded {
		if set, ok := s.tagCache[id]; ok {
			delete(set, tag)
		}
	}
	if gen == s.generation {
		s.commonTags = removeString(s.commonTags, tag)
		s.partialTags = removeString(s.partialTags, tag)
	} else {
		s.recomputeTagsLocked()
	}
	s.mu.Unlock()

	s.reconciler.Schedule()
	return nil
}

// DeleteTag strips a tag from every item in the library that still has it
// and adds it to the persistent suppressed set so listings stop showing it.
// A tag with zero matching items (an orphan the index still reports) is
// suppressed without any bridge calls.
func (s *Session) DeleteTag(ctx context.Context, text string) error {
	tag := normalizeTag(text)
	if tag == "" {
		return nil
	}

	items, err := s.index.ItemsWithTag(ctx, tag)
	if err != nil {
		return fmt.Errorf("could not delete tag %q: %w", tag, err)
	}

	if len(items) > 0 {
		if err := s.bridge.EnsureRunning(ctx); err != nil {
			return fmt.Errorf("could not delete tag %q: %w", tag, err)
		}
		for _, id := range items {
			if err := s.bridge.RemoveKeywords(ctx, id, []string{tag}); err != nil {
				log.Printf("could not remove tag %q from item %s: %v", tag, id, err)
			}
		}
	}

	if err := s.suppressor.Suppress(tag); err != nil {
		return fmt.Errorf("could not delete tag %q: %w", tag, err)
	}

	s.mu.Lock()
	for _, set := range s.tagCache {
		delete(set, tag)
	}
	s.knownTags = removeString(s.knownTags, tag)
	s.commonTags = removeString(s.commonTags, tag)
	s.partialTags = removeString(s.partialTags, tag)
	s.suggestions = removeString(s.suggestions, tag)
	counts := s.tagCounts[:0]
	for _, tc := range s.tagCounts {
		if normalizeTag(tc.Name) != tag {
			counts = append(counts, tc)
		}
	}
	s.tagCounts = counts
	s.mu.Unlock()

	s.reconciler.Schedule()
	return nil
}

// RenameTag renames a tag across the whole library. There is no rename
// primitive in the bridge, so it is synthesized in two phases: first the new
// name is added to every affected item, then the old name is removed. The
// removal phase runs only if at least one add succeeded, so a failure
// mid-operation leaves every item reachable under at least one of the two
// names. Once any add succeeds the removal runs against all affected items,
// including ones whose add failed.
func (s *Session) RenameTag(ctx context.Context, oldText, newText string) error {
	oldTag := normalizeTag(oldText)
	newTag := normalizeTag(newText)
	if oldTag == "" || newTag == "" || oldTag == newTag {
		return nil
	}

	items, err := s.index.ItemsWithTag(ctx, oldTag)
	if err != nil {
		return fmt.Errorf("could not rename tag %q: %w", oldTag, err)
	}
	if len(items) == 0 {
		return nil
	}

	if err := s.bridge.EnsureRunning(ctx); err != nil {
		return fmt.Errorf("could not rename tag %q: %w", oldTag, err)
	}

	added := 0
	var lastErr error
	for _, id := range items {
		if err := s.bridge.AddKeywords(ctx, id, []string{newTag}); err != nil {
			log.Printf("could not add tag %q to item %s: %v", newTag, id, err)
			lastErr = err
			continue
		}
		added++
	}
	if added == 0 {
		return fmt.Errorf("could not rename tag %q to %q: %w", oldTag, newTag, lastErr)
	}

	for _, id := range items {
		if err := s.bridge.RemoveKeywords(ctx, id, []string{oldTag}); err != nil {
			log.Printf("could not remove tag %q from item %s: %v", oldTag, id, err)
		}
	}

	// The old name may live on as an orphan in the index for a while.
	if err := s.suppressor.Suppress(oldTag); err != nil {
		log.Printf("could not suppress tag %q: %v", oldTag, err)
	}

	s.mu.Lock()
	for _, set := range s.tagCache {
		if _, ok := set[oldTag]; ok {
			delete(set, oldTag)
			set[newTag] = struct{}{}
		}
	}
	if containsFold(s.knownTags, oldTag) {
		s.knownTags = removeString(s.knownTags, oldTag)
		s.knownTags = insertSorted(s.knownTags, newTag)
	}
	if containsFold(s.commonTags, oldTag) {
		s.commonTags = removeString(s.commonTags, oldTag)
		s.commonTags = insertSorted(s.commonTags, newTag)
	}
	if containsFold(s.partialTags, oldTag) {
		s.partialTags = removeString(s.partialTags, oldTag)
		s.partialTags = insertSorted(s.partialTags, newTag)
	}
	s.mu.Unlock()

	s.reconciler.Schedule()
	return nil
}
