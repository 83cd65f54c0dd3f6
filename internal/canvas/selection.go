package canvas

import (
	"sort"

	"github.com/samber/lo"

	"boards/internal/domain"
	"boards/internal/geom"
)

// Selection holds either one selected id or a set of ids, never both.
type Selection struct {
	single string
	multi  map[string]struct{}
}

// SetSingle selects id alone, dropping any multi-selection.
func (s *Selection) SetSingle(id string) {
	s.multi = nil
	s.single = id
}

// SetMulti replaces the selection with ids. One id collapses to a single
// selection and none clears it.
func (s *Selection) SetMulti(ids []string) {
	ids = lo.Uniq(lo.Compact(ids))
	switch len(ids) {
	case 0:
		s.Clear()
	case 1:
		s.SetSingle(ids[0])
	default:
		s.single = ""
		s.multi = make(map[string]struct{}, len(ids))
		for _, id := range ids {
			s.multi[id] = struct{}{}
		}
	}
}

// Clear deselects everything.
func (s *Selection) Clear() {
	s.single = ""
	s.multi = nil
}

// Single returns the single selected id, or "".
func (s *Selection) Single() string { return s.single }

// Multi returns the multi-selected ids in sorted order.
func (s *Selection) Multi() []string {
	if len(s.multi) == 0 {
		return nil
	}
	ids := lo.Keys(s.multi)
	sort.Strings(ids)
	return ids
}

// IDs returns every selected id.
func (s *Selection) IDs() []string {
	if s.single != "" {
		return []string{s.single}
	}
	return s.Multi()
}

// Empty reports whether nothing is selected.
func (s *Selection) Empty() bool { return s.single == "" && len(s.multi) == 0 }

// IsMulti reports whether more than one element is selected.
func (s *Selection) IsMulti() bool { return len(s.multi) > 1 }

// Contains reports whether id is selected either way.
func (s *Selection) Contains(id string) bool {
	if id == "" {
		return false
	}
	if s.single == id {
		return true
	}
	_, ok := s.multi[id]
	return ok
}

// Remove drops id from the selection. A multi selection left with one
// member stays a multi selection of one until replaced.
func (s *Selection) Remove(id string) {
	if s.single == id {
		s.single = ""
	}
	delete(s.multi, id)
	if len(s.multi) == 0 {
		s.multi = nil
	}
}

// Prune removes ids that are no longer present in elems.
func (s *Selection) Prune(elems []domain.Element) {
	present := lo.SliceToMap(elems, func(e domain.Element) (string, struct{}) {
		return e.ID, struct{}{}
	})
	for _, id := range s.IDs() {
		if _, ok := present[id]; !ok {
			s.Remove(id)
		}
	}
}

// BoxSelect returns the ids of elements whose rectangle overlaps box, in
// input order. box is in canvas space. Touching the box edge counts as
// overlapping. A box without area selects nothing.
func BoxSelect(box geom.Rect, elems []domain.Element) []string {
	if !box.Valid() || box.Empty() {
		return nil
	}
	var ids []string
	for _, e := range elems {
		if geom.Overlaps(box, e.Rect()) {
			ids = append(ids, e.ID)
		}
	}
	return ids
}
