// Package canvas turns raw pointer, wheel, keyboard and drop events into
// viewport changes, selection changes and element updates for a board.
//
// A Controller runs exactly one gesture at a time (pan, box-select, drag,
// multi-drag or resize). It never owns element data: it reads elements
// from a Store and reports every change back through it. A Controller is
// not safe for concurrent use; callers serialise events per board.
package canvas

import (
	"math"

	"github.com/samber/lo"
	"github.com/tanema/gween/ease"

	"boards/internal/domain"
	"boards/internal/geom"
)

const (
	DefaultDragThreshold = 0.5
	DefaultHandleSize    = 8.0
	fitDuration          = 0.3
)

// Options tunes a Controller. Zero fields take their defaults.
type Options struct {
	Viewport ViewportController
	// DragThreshold is the per-axis canvas distance a multi-drag must
	// cover before it is applied.
	DragThreshold float64
	MinGroupSize  float64
	// HandleSize is the screen-space half-size of a resize handle's hit area.
	HandleSize float64
	Capture    PointerCapture
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Viewport:      NewViewportController(),
		DragThreshold: DefaultDragThreshold,
		MinGroupSize:  DefaultMinGroupSize,
		HandleSize:    DefaultHandleSize,
	}
}

func (o Options) normalize() Options {
	if o.Viewport == (ViewportController{}) {
		o.Viewport = NewViewportController()
	}
	if o.DragThreshold < 0 || math.IsNaN(o.DragThreshold) {
		o.DragThreshold = DefaultDragThreshold
	}
	if o.MinGroupSize <= 0 {
		o.MinGroupSize = DefaultMinGroupSize
	}
	if o.HandleSize <= 0 {
		o.HandleSize = DefaultHandleSize
	}
	if o.Capture == nil {
		o.Capture = noCapture{}
	}
	return o
}

// RenderState is what the frontend needs to paint interaction chrome.
type RenderState struct {
	Viewport    Viewport `json:"viewport"`
	Gesture     string   `json:"gesture"`
	SelectedID  string   `json:"selectedId,omitempty"`
	SelectedIDs []string `json:"selectedIds,omitempty"`
	// SelectionBox is the rubber band in screen space while box-selecting.
	SelectionBox    *geom.Rect `json:"selectionBox,omitempty"`
	DragSubject     string     `json:"dragSubject,omitempty"`
	DuplicateID     string     `json:"duplicateId,omitempty"`
	ShowAffordances bool       `json:"showAffordances"`
	Animating       bool       `json:"animating"`
}

// Controller drives one board canvas. See the package doc.
type Controller struct {
	store     Store
	opts      Options
	viewport  Viewport
	sel       Selection
	gesture   gesture
	sub       *Subscription
	anim      *ViewportAnimation
	exporting bool
	closed    bool
}

// NewController creates a Controller over store, starting at viewport v.
func NewController(store Store, v Viewport, opts Options) *Controller {
	opts = opts.normalize()
	return &Controller{
		store:    store,
		opts:     opts,
		viewport: opts.Viewport.Clamp(v),
	}
}

// ── Gesture lifecycle ───────────────────────────────────────

func (c *Controller) begin(g gesture) {
	c.anim = nil
	c.gesture = g
	c.sub = subscribe(c.opts.Capture)
}

func (c *Controller) end() {
	c.sub.Release()
	c.sub = nil
	c.gesture = nil
}

// Gesture reports the active gesture.
func (c *Controller) Gesture() GestureKind {
	if c.gesture == nil {
		return GestureIdle
	}
	return c.gesture.kind()
}

// Cancel ends the active gesture without committing anything further.
// Used when the pointer is lost or the window blurs.
func (c *Controller) Cancel() RenderState {
	c.end()
	return c.State()
}

// Close cancels any gesture and makes every later event a no-op.
func (c *Controller) Close() {
	c.end()
	c.anim = nil
	c.closed = true
}

// ── Pointer ─────────────────────────────────────────────────

// PointerDown starts a pan, resize, drag or box selection, depending on
// the button, modifiers and what the pointer landed on.
func (c *Controller) PointerDown(ev PointerEvent) RenderState {
	if c.closed || c.gesture != nil || !ev.Point().Valid() {
		return c.State()
	}
	p := ev.Point()

	if ev.Button == ButtonSecondary || ev.Button == ButtonMiddle || ev.Mods.Has(ModSpace) {
		c.begin(&panning{last: p})
		return c.State()
	}
	if ev.Button != ButtonPrimary {
		return c.State()
	}

	elems := c.store.Elements()
	target := ev.Target
	if target.Kind == TargetAuto {
		target = c.hitTest(p, elems)
	}

	switch target.Kind {
	case TargetHandle:
		c.startResize(p, target, elems)
	case TargetElement:
		c.startDrag(p, target.ID, ev.Mods, elems)
	case TargetText:
		if _, ok := findElement(elems, target.ID); ok {
			c.sel.SetSingle(target.ID)
		}
	default:
		c.sel.Clear()
		c.begin(&boxSelecting{start: p, end: p})
	}
	return c.State()
}

func (c *Controller) startResize(p geom.Point, t Target, elems []domain.Element) {
	el, ok := findElement(elems, t.ID)
	if !ok || !el.IsGroup() || !t.Handle.Valid() {
		return
	}
	c.sel.SetSingle(el.ID)
	c.begin(&resizing{id: el.ID, handle: t.Handle, start: p, orig: el.Rect(), cur: el.Rect()})
}

func (c *Controller) startDrag(p geom.Point, id string, mods Modifiers, elems []domain.Element) {
	el, ok := findElement(elems, id)
	if !ok {
		return
	}
	if c.sel.IsMulti() && c.sel.Contains(id) {
		ids := c.sel.Multi()
		c.begin(&multiDragging{anchor: p, ids: ids, carried: carriedNotes(ids, elems)})
		return
	}

	c.sel.SetSingle(id)
	d := &dragging{subject: id, start: el.Position()}
	if mods.Has(ModAlt) {
		if dup, ok := c.store.DuplicateElement(id); ok {
			d.duplicate = dup.ID
		}
		d.retarget(id)
	}
	d.offset = c.viewport.ScreenToCanvas(p).Sub(el.Position())
	if el.IsGroup() {
		for _, n := range ContainedNotes(el, elems) {
			d.captured = append(d.captured, domain.Move{ID: n.ID, X: n.X, Y: n.Y})
		}
	}
	c.begin(d)
}

// PointerMove advances the active gesture.
func (c *Controller) PointerMove(ev PointerEvent) RenderState {
	if c.closed || c.gesture == nil || !ev.Point().Valid() {
		return c.State()
	}
	p := ev.Point()

	switch g := c.gesture.(type) {
	case *panning:
		d := p.Sub(g.last)
		g.last = p
		c.viewport = c.opts.Viewport.Pan(c.viewport, d.X, d.Y)
		c.store.ViewportChanged(c.viewport)
	case *boxSelecting:
		g.end = p
	case *dragging:
		c.moveDrag(g, p)
	case *multiDragging:
		c.moveMulti(g, p)
	case *resizing:
		c.moveResize(g, p)
	}
	return c.State()
}

func (c *Controller) moveDrag(g *dragging, p geom.Point) {
	pos := c.viewport.ScreenToCanvas(p).Sub(g.offset)
	if len(g.captured) == 0 {
		c.store.UpdateElement(g.subject, domain.ElementPatch{X: &pos.X, Y: &pos.Y})
		return
	}
	delta := pos.Sub(g.start)
	moves := make([]domain.Move, 0, len(g.captured)+1)
	moves = append(moves, domain.Move{ID: g.subject, X: pos.X, Y: pos.Y})
	for _, n := range g.captured {
		moves = append(moves, domain.Move{ID: n.ID, X: n.X + delta.X, Y: n.Y + delta.Y})
	}
	c.store.MoveElements(moves)
}

// carriedNotes returns the notes inside any of the selected groups that
// are not selected themselves, so a multi-drag moves them exactly once.
func carriedNotes(ids []string, elems []domain.Element) []string {
	var out []string
	for _, e := range elems {
		if !e.IsGroup() || !lo.Contains(ids, e.ID) {
			continue
		}
		for _, n := range ContainedNotes(e, elems) {
			if !lo.Contains(ids, n.ID) && !lo.Contains(out, n.ID) {
				out = append(out, n.ID)
			}
		}
	}
	return out
}

func (c *Controller) moveMulti(g *multiDragging, p geom.Point) {
	delta := p.Sub(g.anchor).Scale(1 / c.viewport.Zoom)
	if math.Abs(delta.X) <= c.opts.DragThreshold && math.Abs(delta.Y) <= c.opts.DragThreshold {
		return
	}
	var moves []domain.Move
	for _, e := range c.store.Elements() {
		if lo.Contains(g.ids, e.ID) || lo.Contains(g.carried, e.ID) {
			moves = append(moves, domain.Move{ID: e.ID, X: e.X + delta.X, Y: e.Y + delta.Y})
		}
	}
	if len(moves) > 0 {
		c.store.MoveElements(moves)
	}
	g.anchor = p
}

func (c *Controller) moveResize(g *resizing, p geom.Point) {
	d := p.Sub(g.start).Scale(1 / c.viewport.Zoom)
	r := Resize(g.orig, g.cur, g.handle, d, c.opts.MinGroupSize)
	if r == g.cur {
		return
	}
	g.cur = r
	c.store.UpdateElement(g.id, domain.ElementPatch{X: &r.X, Y: &r.Y, Width: &r.Width, Height: &r.Height})
}

// PointerUp ends the active gesture, resolving a box selection first.
func (c *Controller) PointerUp(ev PointerEvent) RenderState {
	if c.closed || c.gesture == nil {
		return c.State()
	}
	if g, ok := c.gesture.(*boxSelecting); ok {
		if ev.Point().Valid() {
			g.end = ev.Point()
		}
		c.resolveBox(g)
	}
	c.end()
	return c.State()
}

func (c *Controller) resolveBox(g *boxSelecting) {
	box := c.viewport.ScreenRectToCanvas(geom.RectFromCorners(g.start, g.end))
	ids := BoxSelect(box, c.store.Elements())
	switch len(ids) {
	case 0:
	case 1:
		c.sel.SetSingle(ids[0])
	default:
		c.sel.SetMulti(ids)
	}
}

// ── Wheel, keyboard, drop ───────────────────────────────────

// Wheel zooms around the cursor when Ctrl or Meta is held. A plain wheel
// is left to the page.
func (c *Controller) Wheel(ev WheelEvent) RenderState {
	if c.closed || c.gesture != nil || !(ev.Mods.Has(ModCtrl) || ev.Mods.Has(ModMeta)) {
		return c.State()
	}
	v := c.opts.Viewport.ZoomAt(c.viewport, ev.X, ev.Y, ev.DeltaY)
	if v != c.viewport {
		c.anim = nil
		c.viewport = v
		c.store.ViewportChanged(v)
	}
	return c.State()
}

// KeyDown handles Escape (end the gesture, clear the selection) and
// Delete/Backspace (delete the selection while idle). Keys typed into a
// text input are ignored.
func (c *Controller) KeyDown(ev KeyEvent) RenderState {
	if c.closed || ev.InTextInput {
		return c.State()
	}
	switch ev.Key {
	case "Escape":
		// Ends any gesture; moves already applied stay.
		c.end()
		c.sel.Clear()
	case "Delete", "Backspace":
		if c.gesture != nil {
			break
		}
		for _, id := range c.sel.IDs() {
			c.store.DeleteElement(id)
		}
		c.sel.Clear()
	}
	return c.State()
}

// Drop adds an element of the dropped type centred on a screen point
// relative to the canvas container.
func (c *Controller) Drop(typeTag string, x, y float64) (domain.Element, bool) {
	t := domain.ElementType(typeTag)
	if c.closed || (t != domain.ElementNote && t != domain.ElementGroup) {
		return domain.Element{}, false
	}
	p := geom.Point{X: x, Y: y}
	if !p.Valid() {
		return domain.Element{}, false
	}
	cp := c.viewport.ScreenToCanvas(p)
	w, h := domain.DefaultSize(t)
	el, ok := c.store.AddElement(t, cp.X-w/2, cp.Y-h/2, domain.AddOptions{})
	if ok {
		c.sel.SetSingle(el.ID)
	}
	return el, ok
}

// ── Viewport ────────────────────────────────────────────────

// Viewport returns the current viewport.
func (c *Controller) Viewport() Viewport { return c.viewport }

// SetViewport replaces the viewport after an external change. It is not
// reported back to the store.
func (c *Controller) SetViewport(v Viewport) {
	c.anim = nil
	c.viewport = c.opts.Viewport.Clamp(v)
}

// ZoomToFit starts an animation framing every element on a screen of the
// given size. Drive it with StepAnimation.
func (c *Controller) ZoomToFit(screenW, screenH, padding float64) RenderState {
	if c.closed || c.gesture != nil {
		return c.State()
	}
	rects := make([]geom.Rect, 0)
	for _, e := range c.store.Elements() {
		if e.Rect().Valid() {
			rects = append(rects, e.Rect())
		}
	}
	bounds, ok := geom.Union(rects...)
	if !ok {
		bounds = geom.Rect{}
	}
	target := c.opts.Viewport.FitTo(bounds, screenW, screenH, padding)
	c.anim = c.opts.Viewport.Animate(c.viewport, target, fitDuration, ease.OutCubic)
	return c.State()
}

// StepAnimation advances a running viewport animation by dt seconds. The
// store hears about the viewport once, when the animation lands.
func (c *Controller) StepAnimation(dt float32) RenderState {
	if c.anim == nil {
		return c.State()
	}
	v, done := c.anim.Step(dt)
	c.viewport = v
	if done {
		c.anim = nil
		c.store.ViewportChanged(v)
	}
	return c.State()
}

// ── Selection and rendering ─────────────────────────────────

// Selection returns the selected ids.
func (c *Controller) Selection() []string { return c.sel.IDs() }

// Select sets a single selection, ignoring unknown ids.
func (c *Controller) Select(id string) {
	if _, ok := findElement(c.store.Elements(), id); ok {
		c.sel.SetSingle(id)
	}
}

// ClearSelection deselects everything.
func (c *Controller) ClearSelection() { c.sel.Clear() }

// SetExporting hides or shows interactive affordances. Element data is
// never touched.
func (c *Controller) SetExporting(on bool) { c.exporting = on }

// Exporting reports whether affordances are hidden for a snapshot.
func (c *Controller) Exporting() bool { return c.exporting }

// State returns the current render state.
func (c *Controller) State() RenderState {
	c.sel.Prune(c.store.Elements())
	st := RenderState{
		Viewport:        c.viewport,
		Gesture:         c.Gesture().String(),
		SelectedID:      c.sel.Single(),
		SelectedIDs:     c.sel.Multi(),
		ShowAffordances: !c.exporting,
		Animating:       c.anim != nil,
	}
	switch g := c.gesture.(type) {
	case *boxSelecting:
		r := geom.RectFromCorners(g.start, g.end)
		st.SelectionBox = &r
	case *dragging:
		st.DragSubject = g.subject
		st.DuplicateID = g.duplicate
	}
	return st
}

// hitTest finds what lies under a screen point, top-most first. Group
// handles are only live while affordances are shown.
func (c *Controller) hitTest(p geom.Point, elems []domain.Element) Target {
	cp := c.viewport.ScreenToCanvas(p)
	tol := c.opts.HandleSize / c.viewport.Zoom
	order := domain.PaintOrder(elems)
	for i := len(order) - 1; i >= 0; i-- {
		e := order[i]
		if e.IsGroup() && !c.exporting {
			if h, ok := handleAt(e.Rect(), cp, tol); ok {
				return Target{Kind: TargetHandle, ID: e.ID, Handle: h}
			}
		}
		if geom.ContainsPoint(e.Rect(), cp) {
			return Target{Kind: TargetElement, ID: e.ID}
		}
	}
	return Target{Kind: TargetBackground}
}

func findElement(elems []domain.Element, id string) (domain.Element, bool) {
	for _, e := range elems {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Element{}, false
}
