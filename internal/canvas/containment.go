package canvas

import (
	"boards/internal/domain"
	"boards/internal/geom"
)

// ContainedNotes returns the notes lying fully inside group, edges
// included. Containment is never cached; call this at the moment it matters.
func ContainedNotes(group domain.Element, elems []domain.Element) []domain.Element {
	if !group.IsGroup() {
		return nil
	}
	gr := group.Rect()
	var out []domain.Element
	for _, e := range elems {
		if e.IsNote() && geom.ContainsRect(gr, e.Rect()) {
			out = append(out, e)
		}
	}
	return out
}

// GroupOf returns the top-most group containing note, if any.
func GroupOf(note domain.Element, elems []domain.Element) (domain.Element, bool) {
	var best domain.Element
	found := false
	for _, e := range domain.PaintOrder(elems) {
		if e.IsGroup() && geom.ContainsRect(e.Rect(), note.Rect()) {
			best, found = e, true
		}
	}
	return best, found
}
