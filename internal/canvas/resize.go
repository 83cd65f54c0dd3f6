package canvas

import (
	"math"
	"strings"

	"boards/internal/geom"
)

// Handle names a group resize handle by compass direction.
type Handle string

const (
	HandleN  Handle = "n"
	HandleS  Handle = "s"
	HandleE  Handle = "e"
	HandleW  Handle = "w"
	HandleNE Handle = "ne"
	HandleNW Handle = "nw"
	HandleSE Handle = "se"
	HandleSW Handle = "sw"
)

// DefaultMinGroupSize is the smallest width or height a resize leaves.
const DefaultMinGroupSize = 100.0

// Valid reports whether h is one of the eight compass handles.
func (h Handle) Valid() bool {
	switch h {
	case HandleN, HandleS, HandleE, HandleW, HandleNE, HandleNW, HandleSE, HandleSW:
		return true
	}
	return false
}

func (h Handle) north() bool { return strings.Contains(string(h), "n") }
func (h Handle) south() bool { return strings.Contains(string(h), "s") }
func (h Handle) east() bool  { return strings.Contains(string(h), "e") }
func (h Handle) west() bool  { return strings.Contains(string(h), "w") }

// Resize computes the rectangle produced by dragging handle h by d canvas
// units from the gesture's starting rectangle orig. cur is the rectangle as
// last committed during this gesture.
//
// Sizes never drop below min. On the north and west sides the position
// only follows the pointer while the new size exceeds min; once the size
// clamps, the position keeps the value in cur, so the opposite edge can
// drift from where it started.
func Resize(orig, cur geom.Rect, h Handle, d geom.Point, min float64) geom.Rect {
	if !h.Valid() || !d.Valid() || !orig.Valid() {
		return cur
	}
	out := cur
	if h.east() {
		out.Width = math.Max(min, orig.Width+d.X)
	}
	if h.south() {
		out.Height = math.Max(min, orig.Height+d.Y)
	}
	if h.west() {
		w := orig.Width - d.X
		if w > min {
			out.X = orig.X + d.X
		}
		out.Width = math.Max(min, w)
	}
	if h.north() {
		ht := orig.Height - d.Y
		if ht > min {
			out.Y = orig.Y + d.Y
		}
		out.Height = math.Max(min, ht)
	}
	return out
}

// handleAt returns the handle of r under p, if any. tol is the half-size
// of a handle's hit area in the same units as r.
func handleAt(r geom.Rect, p geom.Point, tol float64) (Handle, bool) {
	if !geom.ContainsPoint(geom.Rect{X: r.X - tol, Y: r.Y - tol, Width: r.Width + 2*tol, Height: r.Height + 2*tol}, p) {
		return "", false
	}
	nearW := math.Abs(p.X-r.X) <= tol
	nearE := math.Abs(p.X-r.Right()) <= tol
	nearN := math.Abs(p.Y-r.Y) <= tol
	nearS := math.Abs(p.Y-r.Bottom()) <= tol

	var h string
	switch {
	case nearN:
		h = "n"
	case nearS:
		h = "s"
	}
	switch {
	case nearE:
		h += "e"
	case nearW:
		h += "w"
	}
	if h == "" {
		return "", false
	}
	return Handle(h), true
}
