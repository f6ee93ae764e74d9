package session

import (
	"sort"
	"strings"

	"github.com/robertcoopercode/better-photos/internal/library"
)

// normalizeTag trims and lowercases. Tags compare case-insensitively and are
// stored in lowercase form.
func normalizeTag(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// sortFold sorts in place, lexicographically and case-insensitively.
func sortFold(list []string) {
	sort.Slice(list, func(i, j int) bool {
		return strings.ToLower(list[i]) < strings.ToLower(list[j])
	})
}

// insertSorted adds v keeping the case-insensitive sort order. Duplicates
// (case-insensitive) are not added.
func insertSorted(list []string, v string) []string {
	if containsFold(list, v) {
		return list
	}
	list = append(list, v)
	sortFold(list)
	return list
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if !strings.EqualFold(s, v) {
			out = append(out, s)
		}
	}
	return out
}

// computeCommonPartial derives the common (present in every set) and partial
// (present in some but not all) values from the given per-item sets. Both
// results are sorted case-insensitively.
func computeCommonPartial(sets []map[string]struct{}) (common, partial []string) {
	if len(sets) == 0 {
		return nil, nil
	}
	seen := make(map[string]int)
	for _, set := range sets {
		for v := range set {
			seen[v]++
		}
	}
	for v, n := range seen {
		if n == len(sets) {
			common = append(common, v)
		} else {
			partial = append(partial, v)
		}
	}
	sortFold(common)
	sortFold(partial)
	return common, partial
}

// recomputeTagsLocked rederives the tag aggregates from the cache entries of
// the currently selected items. Selected items without a cache entry do not
// participate; their fetch is still pending or failed.
func (s *Session) recomputeTagsLocked() {
	var sets []map[string]struct{}
	for _, id := range s.selectedListLocked() {
		if set, ok := s.tagCache[id]; ok {
			sets = append(sets, set)
		}
	}
	s.commonTags, s.partialTags = computeCommonPartial(sets)
}

func (s *Session) recomputeAlbumsLocked() {
	var sets []map[string]struct{}
	for _, id := range s.selectedListLocked() {
		if set, ok := s.albumCache[id]; ok {
			sets = append(sets, set)
		}
	}
	s.commonAlbums, s.partialAlbums = computeCommonPartial(sets)
}

// recomputePeopleLocked aggregates people by normalized display name. The
// same person can be referenced under several ids, so the name is the
// de-duplication key; the name-to-record table picks up any record seen in a
// per-item cache entry so every aggregate name resolves to a full record.
func (s *Session) recomputePeopleLocked() {
	var sets []map[string]struct{}
	for _, id := range s.selectedListLocked() {
		people, ok := s.peopleCache[id]
		if !ok {
			continue
		}
		set := make(map[string]struct{}, len(people))
		for _, p := range people {
			key := normalizePersonName(p.Name)
			if key == "" {
				continue
			}
			set[key] = struct{}{}
			if _, known := s.peopleByName[key]; !known {
				s.peopleByName[key] = p
			}
		}
		sets = append(sets, set)
	}
	s.commonPeople, s.partialPeople = computeCommonPartial(sets)
}

// albumRecordsLocked resolves album ids against the global listing. An id
// the listing does not know yet (freshly created, listing not resynced)
// still yields a record with the id.
func (s *Session) albumRecordsLocked(ids []string) []library.Album {
	out := make([]library.Album, 0, len(ids))
	for _, id := range ids {
		rec := library.Album{ID: id}
		for _, a := range s.albums {
			if a.ID == id {
				rec = a
				break
			}
		}
		out = append(out, rec)
	}
	return out
}

func (s *Session) personRecordsLocked(names []string) []library.Person {
	out := make([]library.Person, 0, len(names))
	for _, name := range names {
		if p, ok := s.peopleByName[name]; ok {
			out = append(out, p)
			continue
		}
		out = append(out, library.Person{Name: name})
	}
	return out
}
