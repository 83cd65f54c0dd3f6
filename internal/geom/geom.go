// Package geom holds the pure coordinate helpers shared by the board canvas,
// the hierarchy canvases and the renderers. Nothing here keeps state.
package geom

import "math"

// Point is a position in either screen or canvas space; the caller knows which.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p * k.
func (p Point) Scale(k float64) Point { return Point{p.X * k, p.Y * k} }

// Valid reports whether both coordinates are finite numbers.
func (p Point) Valid() bool { return finite(p.X) && finite(p.Y) }

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Position returns the top-left corner.
func (r Rect) Position() Point { return Point{r.X, r.Y} }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point { return Point{r.X + r.Width/2, r.Y + r.Height/2} }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Valid reports whether every field is a finite number.
func (r Rect) Valid() bool {
	return finite(r.X) && finite(r.Y) && finite(r.Width) && finite(r.Height)
}

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	r.X += d.X
	r.Y += d.Y
	return r
}

// RectFromCorners builds a normalised rectangle from two opposite corners,
// so a box dragged up-left produces the same rectangle as one dragged down-right.
func RectFromCorners(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// Overlaps reports whether a and b share at least one point. Edges are
// inclusive: rectangles that only touch along a border overlap.
func Overlaps(a, b Rect) bool {
	if !a.Valid() || !b.Valid() {
		return false
	}
	return !(a.Right() < b.X || a.X > b.Right() || a.Bottom() < b.Y || a.Y > b.Bottom())
}

// ContainsPoint reports whether p lies inside r, edges included.
func ContainsPoint(r Rect, p Point) bool {
	if !r.Valid() || !p.Valid() {
		return false
	}
	return p.X >= r.X && p.X <= r.Right() && p.Y >= r.Y && p.Y <= r.Bottom()
}

// ContainsRect reports whether inner lies fully inside outer, edges included.
func ContainsRect(outer, inner Rect) bool {
	if !outer.Valid() || !inner.Valid() {
		return false
	}
	return inner.X >= outer.X &&
		inner.Y >= outer.Y &&
		inner.Right() <= outer.Right() &&
		inner.Bottom() <= outer.Bottom()
}

// Union returns the smallest rectangle covering every input. ok is false
// when rects is empty.
func Union(rects ...Rect) (r Rect, ok bool) {
	if len(rects) == 0 {
		return Rect{}, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, rc := range rects {
		minX = math.Min(minX, rc.X)
		minY = math.Min(minY, rc.Y)
		maxX = math.Max(maxX, rc.Right())
		maxY = math.Max(maxY, rc.Bottom())
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// ScreenToCanvas maps a screen point through the inverse viewport transform
// screen = canvas*zoom + offset. A non-positive zoom yields the point unchanged.
func ScreenToCanvas(p Point, offset Point, zoom float64) Point {
	if zoom <= 0 || !finite(zoom) {
		return p
	}
	return Point{(p.X - offset.X) / zoom, (p.Y - offset.Y) / zoom}
}

// CanvasToScreen maps a canvas point through screen = canvas*zoom + offset.
func CanvasToScreen(p Point, offset Point, zoom float64) Point {
	return Point{p.X*zoom + offset.X, p.Y*zoom + offset.Y}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
