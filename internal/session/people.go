package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/robertcoopercode/better-photos/internal/library"
)

var nameNormalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizePersonName folds a display name into a de-duplication key:
// trimmed, lowercased, diacritics stripped. The same person can appear under
// differently-accented spellings of one name.
func normalizePersonName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	folded, _, err := transform.String(nameNormalizer, name)
	if err != nil {
		return name
	}
	return folded
}

// LoadPeople makes sure every selected item has a people cache entry, then
// rederives the people aggregates. People are read-only here; there are no
// mutations to schedule reconciliation for.
func (s *Session) LoadPeople(ctx context.Context) error {
	s.mu.Lock()
	loaded := s.peopleLoaded
	s.mu.Unlock()

	if !loaded {
		people, err := s.index.ListPeople(ctx)
		if err != nil {
			return fmt.Errorf("could not load people: %w", err)
		}
		s.mu.Lock()
		s.people = people
		s.peopleLoaded = true
		for _, p := range people {
			key := normalizePersonName(p.Name)
			if key == "" {
				continue
			}
			if _, ok := s.peopleByName[key]; !ok {
				s.peopleByName[key] = p
			}
		}
		s.mu.Unlock()
	}

	s.mu.Lock()
	gen := s.generation
	var missing []string
	for _, id := range s.selectedListLocked() {
		if _, ok := s.peopleCache[id]; !ok {
			missing = append(missing, id)
		}
	}
	s.mu.Unlock()

	fetched := make(map[string][]library.Person, len(missing))
	for _, id := range missing {
		people, err := s.index.PeopleInItem(ctx, id)
		if err != nil {
			log.Printf("could not load people of item %s: %v", id, err)
			continue
		}
		fetched[id] = people
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, people := range fetched {
		s.peopleCache[id] = people
	}
	if gen == s.generation {
		s.recomputePeopleLocked()
	}
	return nil
}
