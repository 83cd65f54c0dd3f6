package canvas

import (
	"boards/internal/domain"
	"boards/internal/geom"
)

// GestureKind names the active gesture.
type GestureKind int

const (
	GestureIdle GestureKind = iota
	GesturePanning
	GestureBoxSelecting
	GestureDragging
	GestureMultiDragging
	GestureResizing
)

func (k GestureKind) String() string {
	switch k {
	case GesturePanning:
		return "panning"
	case GestureBoxSelecting:
		return "boxSelecting"
	case GestureDragging:
		return "dragging"
	case GestureMultiDragging:
		return "multiDragging"
	case GestureResizing:
		return "resizing"
	}
	return "idle"
}

// gesture is the active interaction. Each variant carries only its own
// fields; a nil gesture means idle.
type gesture interface {
	kind() GestureKind
}

type panning struct {
	last geom.Point // screen
}

type boxSelecting struct {
	start, end geom.Point // screen
}

// dragging moves one element. For groups, captured holds the notes that
// were inside the group when the drag started, with their start positions.
type dragging struct {
	subject   string
	duplicate string
	offset    geom.Point // canvas pointer minus element position
	start     geom.Point // element position at drag start
	captured  []domain.Move
}

// retarget points the drag at id. Used after alt-duplication so the drag
// stays on the original element.
func (d *dragging) retarget(id string) { d.subject = id }

// multiDragging moves the selection. carried holds the unselected notes
// that sat inside a selected group when the drag started.
type multiDragging struct {
	anchor  geom.Point // screen
	ids     []string
	carried []string
}

type resizing struct {
	id     string
	handle Handle
	start  geom.Point // screen
	orig   geom.Rect
	cur    geom.Rect
}

func (*panning) kind() GestureKind       { return GesturePanning }
func (*boxSelecting) kind() GestureKind  { return GestureBoxSelecting }
func (*dragging) kind() GestureKind      { return GestureDragging }
func (*multiDragging) kind() GestureKind { return GestureMultiDragging }
func (*resizing) kind() GestureKind      { return GestureResizing }
