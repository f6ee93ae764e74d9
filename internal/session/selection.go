package session

import "github.com/robertcoopercode/better-photos/internal/library"

// Modifier alters SelectItem behavior, mirroring click modifier keys.
type Modifier uint8

const (
	// ModToggle flips membership of the clicked item (cmd-click).
	ModToggle Modifier = 1 << iota
	// ModRange unions the contiguous index range from the pivot (shift-click).
	ModRange
)

// Direction is a keyboard navigation direction.
type Direction string

const (
	DirLeft  Direction = "left"
	DirRight Direction = "right"
	DirUp    Direction = "up"
	DirDown  Direction = "down"
)

// SelectItem applies a click at the given index. Out-of-range input is a
// no-op. With no modifier the selection is replaced; with ModToggle the
// item's membership flips; with ModRange the contiguous index range between
// the pivot and the clicked index is added to the selection.
func (s *Session) SelectItem(id string, index int, mods Modifier) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) || id == "" {
		return
	}

	switch {
	case mods&ModRange != 0 && s.pivot >= 0:
		lo, hi := s.pivot, index
		if lo > hi {
			lo, hi = hi, lo
		}
		for i := lo; i <= hi; i++ {
			s.selected[s.items[i]] = struct{}{}
		}
		s.focused = id

	case mods&ModToggle != 0:
		if _, ok := s.selected[id]; ok {
			delete(s.selected, id)
			// Focus must stay within the selection.
			if s.focused == id {
				s.focused = ""
			}
		} else {
			s.selected[id] = struct{}{}
			s.focused = id
		}
		s.pivot = index

	default:
		// Plain click, or a range click with no prior pivot.
		s.selected = map[string]struct{}{id: {}}
		s.focused = id
		s.pivot = index
	}

	s.selectionChangedLocked()
}

// SelectAll selects every loaded item. Focus is left unchanged.
func (s *Session) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return
	}
	for _, id := range s.items {
		s.selected[id] = struct{}{}
	}
	s.selectionChangedLocked()
}

// ClearSelection empties the selection and invalidates all derived caches
// and aggregates.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearSelectionLocked()
}

func (s *Session) clearSelectionLocked() {
	s.selected = make(map[string]struct{})
	s.focused = ""
	s.pivot = -1

	s.tagCache = make(map[string]map[string]struct{})
	s.albumCache = make(map[string]map[string]struct{})
	s.peopleCache = make(map[string][]library.Person)

	s.selectionChangedLocked()
}

// Navigate moves focus by one step. Vertical moves use perRow as the grid
// stride. With extend the candidate item is added to the selection while the
// prior selection is preserved; without it the selection is replaced. This is
// deliberately not range-fill: shift-arrow extends one item at a time.
func (s *Session) Navigate(dir Direction, extend bool, perRow int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.items) == 0 {
		return
	}
	if perRow < 1 {
		perRow = 1
	}

	cur := 0
	if s.focused != "" {
		if i, ok := s.position[s.focused]; ok {
			cur = i
		}
	}

	candidate := cur
	switch dir {
	case DirLeft:
		candidate = cur - 1
	case DirRight:
		candidate = cur + 1
	case DirUp:
		candidate = cur - perRow
	case DirDown:
		candidate = cur + perRow
	default:
		return
	}

	if candidate < 0 {
		candidate = 0
	}
	if candidate >= len(s.items) {
		candidate = len(s.items) - 1
	}

	id := s.items[candidate]
	if extend {
		s.selected[id] = struct{}{}
		s.focused = id
		s.pivot = candidate
		s.selectionChangedLocked()
		return
	}

	s.selected = map[string]struct{}{id: {}}
	s.focused = id
	s.pivot = candidate
	s.selectionChangedLocked()
}

// selectionChangedLocked bumps the generation and rederives all aggregate
// views from current cache contents.
func (s *Session) selectionChangedLocked() {
	s.generation++
	s.recomputeTagsLocked()
	s.recomputeAlbumsLocked()
	s.recomputePeopleLocked()
}
