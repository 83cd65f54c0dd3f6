package canvas

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ViewportAnimation tweens a viewport toward a target. Callers drive it
// with Step once per frame; there is no internal clock.
type ViewportAnimation struct {
	tweens [3]*gween.Tween
	ctrl   ViewportController
	target Viewport
	cur    Viewport
	done   bool
}

// Animate builds an animation from one viewport to another. A nil easing
// function falls back to ease.OutCubic; a non-positive duration finishes
// on the first Step.
func (c ViewportController) Animate(from, to Viewport, duration float32, fn ease.TweenFunc) *ViewportAnimation {
	if fn == nil {
		fn = ease.OutCubic
	}
	from, to = c.Clamp(from), c.Clamp(to)
	a := &ViewportAnimation{ctrl: c, target: to, cur: from}
	if duration <= 0 {
		a.cur = to
		a.done = true
		return a
	}
	a.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	a.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	a.tweens[2] = gween.New(float32(from.Zoom), float32(to.Zoom), duration, fn)
	return a
}

// Step advances the animation by dt seconds and returns the viewport for
// this frame and whether the animation has finished.
func (a *ViewportAnimation) Step(dt float32) (Viewport, bool) {
	if a.done {
		return a.cur, true
	}
	x, doneX := a.tweens[0].Update(dt)
	y, doneY := a.tweens[1].Update(dt)
	z, doneZ := a.tweens[2].Update(dt)
	if doneX && doneY && doneZ {
		// land exactly on the target, float32 tweening loses precision
		a.cur = a.target
		a.done = true
		return a.cur, true
	}
	a.cur = a.ctrl.Clamp(Viewport{X: float64(x), Y: float64(y), Zoom: float64(z)})
	return a.cur, false
}

// Current returns the viewport at the last step.
func (a *ViewportAnimation) Current() Viewport { return a.cur }
// Target returns the viewport the animation ends on.
func (a *ViewportAnimation) Target() Viewport  { return a.target }
// Done reports whether the target has been reached.
func (a *ViewportAnimation) Done() bool        { return a.done }
