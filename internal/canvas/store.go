package canvas

import "boards/internal/domain"

// Store is the owner of a board's elements and viewport. The controller
// never mutates elements itself; every change goes through these calls.
// Calls naming an id that no longer exists must be silent no-ops.
type Store interface {
	Elements() []domain.Element
	UpdateElement(id string, patch domain.ElementPatch)
	DeleteElement(id string)
	AddElement(t domain.ElementType, x, y float64, opts domain.AddOptions) (domain.Element, bool)
	MoveElements(moves []domain.Move)
	DuplicateElement(id string) (domain.Element, bool)
	ViewportChanged(v Viewport)
}
