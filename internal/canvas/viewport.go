package canvas

import (
	"math"

	"boards/internal/geom"
)

// Viewport is the canvas-to-screen transform shared by every canvas.
type Viewport = geom.Viewport

const (
	DefaultMinZoom          = 0.25
	DefaultMaxZoom          = 2.0
	DefaultWheelSensitivity = 0.001
)

// ViewportController turns pan and wheel input into new viewports.
// It holds only limits; every method is a pure function of its inputs.
type ViewportController struct {
	MinZoom          float64
	MaxZoom          float64
	WheelSensitivity float64
}

// NewViewportController returns a controller with the default zoom
// range and wheel sensitivity.
func NewViewportController() ViewportController {
	return ViewportController{
		MinZoom:          DefaultMinZoom,
		MaxZoom:          DefaultMaxZoom,
		WheelSensitivity: DefaultWheelSensitivity,
	}
}

func (c ViewportController) limits() (lo, hi float64) {
	lo, hi = c.MinZoom, c.MaxZoom
	if lo <= 0 || math.IsNaN(lo) {
		lo = DefaultMinZoom
	}
	if hi < lo || math.IsNaN(hi) {
		hi = DefaultMaxZoom
	}
	return lo, hi
}

// ClampZoom limits z to the controller's zoom range. NaN maps to 1.
func (c ViewportController) ClampZoom(z float64) float64 {
	lo, hi := c.limits()
	if math.IsNaN(z) {
		return geom.Clamp(1, lo, hi)
	}
	return geom.Clamp(z, lo, hi)
}

// Clamp returns v with its zoom forced into range and non-finite offsets reset.
func (c ViewportController) Clamp(v Viewport) Viewport {
	v.Zoom = c.ClampZoom(v.Zoom)
	if math.IsNaN(v.X) || math.IsInf(v.X, 0) {
		v.X = 0
	}
	if math.IsNaN(v.Y) || math.IsInf(v.Y, 0) {
		v.Y = 0
	}
	return v
}

// Pan shifts the viewport by a screen-space delta. Non-finite deltas are ignored.
func (c ViewportController) Pan(v Viewport, dx, dy float64) Viewport {
	if !(geom.Point{X: dx, Y: dy}).Valid() {
		return v
	}
	v.X += dx
	v.Y += dy
	return v
}

// ZoomAt applies a wheel delta anchored on the cursor so the canvas point
// under (cx, cy) stays under it.
func (c ViewportController) ZoomAt(v Viewport, cx, cy, wheelDelta float64) Viewport {
	v = c.Clamp(v)
	if !(geom.Point{X: cx, Y: cy}).Valid() || math.IsNaN(wheelDelta) {
		return v
	}
	sens := c.WheelSensitivity
	if sens <= 0 {
		sens = DefaultWheelSensitivity
	}
	newZoom := c.ClampZoom(v.Zoom - wheelDelta*sens)
	ratio := newZoom / v.Zoom
	return Viewport{
		X:    cx - (cx-v.X)*ratio,
		Y:    cy - (cy-v.Y)*ratio,
		Zoom: newZoom,
	}
}

// FitTo frames bounds inside a screen of the given size, leaving padding
// pixels on every side. An empty or invalid bounds is centred at zoom 1.
func (c ViewportController) FitTo(bounds geom.Rect, screenW, screenH, padding float64) Viewport {
	if screenW <= 0 || screenH <= 0 || !bounds.Valid() {
		return geom.Identity
	}
	availW := math.Max(screenW-2*padding, 1)
	availH := math.Max(screenH-2*padding, 1)

	zoom := 1.0
	if !bounds.Empty() {
		zoom = math.Min(availW/bounds.Width, availH/bounds.Height)
	}
	zoom = c.ClampZoom(zoom)

	center := bounds.Center()
	return Viewport{
		X:    screenW/2 - center.X*zoom,
		Y:    screenH/2 - center.Y*zoom,
		Zoom: zoom,
	}
}
