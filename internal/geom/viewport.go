package geom

// Viewport is the affine transform from canvas space to screen space:
// screen = canvas*Zoom + (X, Y).
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Identity is the viewport at the origin with no zoom.
var Identity = Viewport{Zoom: 1}

// Offset returns the screen-space translation of the viewport.
func (v Viewport) Offset() Point { return Point{v.X, v.Y} }

// ScreenToCanvas converts a screen point to canvas space.
func (v Viewport) ScreenToCanvas(p Point) Point { return ScreenToCanvas(p, v.Offset(), v.Zoom) }

// CanvasToScreen converts a canvas point to screen space.
func (v Viewport) CanvasToScreen(p Point) Point { return CanvasToScreen(p, v.Offset(), v.Zoom) }

// ScreenRectToCanvas converts a screen rectangle to canvas space.
func (v Viewport) ScreenRectToCanvas(r Rect) Rect {
	a := v.ScreenToCanvas(Point{r.X, r.Y})
	b := v.ScreenToCanvas(Point{r.Right(), r.Bottom()})
	return RectFromCorners(a, b)
}

// Valid reports whether the viewport can be used for conversions.
func (v Viewport) Valid() bool {
	return finite(v.X) && finite(v.Y) && finite(v.Zoom) && v.Zoom > 0
}
