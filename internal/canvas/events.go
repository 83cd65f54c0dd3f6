package canvas

import "boards/internal/geom"

// Modifiers is the bitmask of keys held during an event. Space is reported
// by the frontend as a modifier so a primary drag can become a pan.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
	ModSpace
)

// Has reports whether any bit of f is set.
func (m Modifiers) Has(f Modifiers) bool { return m&f != 0 }

// Button uses DOM numbering.
type Button int

const (
	ButtonPrimary   Button = 0
	ButtonMiddle    Button = 1
	ButtonSecondary Button = 2
)

// TargetKind classifies what a pointer-down landed on.
type TargetKind string

const (
	// TargetAuto asks the controller to hit-test the pointer position.
	TargetAuto       TargetKind = ""
	TargetBackground TargetKind = "background"
	TargetElement    TargetKind = "element"
	TargetHandle     TargetKind = "handle"
	// TargetText is an editable text region inside an element.
	TargetText TargetKind = "text"
)

// Target is what the pointer landed on.
type Target struct {
	Kind   TargetKind `json:"kind"`
	ID     string     `json:"id,omitempty"`
	Handle Handle     `json:"handle,omitempty"`
}

// PointerEvent carries a screen-space pointer position relative to the
// canvas container.
type PointerEvent struct {
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Button Button    `json:"button"`
	Mods   Modifiers `json:"mods"`
	Target Target    `json:"target"`
}

// Point returns the event position in screen space.
func (e PointerEvent) Point() geom.Point { return geom.Point{X: e.X, Y: e.Y} }

// WheelEvent is a wheel tick at a screen point.
type WheelEvent struct {
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	DeltaY float64   `json:"deltaY"`
	Mods   Modifiers `json:"mods"`
}

// KeyEvent uses DOM key names ("Escape", "Delete", "Backspace").
type KeyEvent struct {
	Key         string    `json:"key"`
	Mods        Modifiers `json:"mods"`
	InTextInput bool      `json:"inTextInput"`
}
