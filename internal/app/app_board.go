package app

import (
	"fmt"
	"sync"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"boards/internal/canvas"
	"boards/internal/domain"
	"boards/internal/service"
)

// EventCanvasCapture is emitted with {"boardId": id, "on": bool} when a
// gesture needs window-level pointer listeners and when it releases them.
const EventCanvasCapture = "canvas:capture"

// openCanvas is one board open in the editor. The controller is not safe
// for concurrent use, so every call goes through mu.
type openCanvas struct {
	mu      sync.Mutex
	session *service.BoardSession
	ctrl    *canvas.Controller
}

func (c *openCanvas) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctrl.Close()
	return c.session.Flush()
}

// SetExporting implements service.Snapshotter.
func (c *openCanvas) SetExporting(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ctrl.SetExporting(on)
}

// ============================================================
// Board CRUD
// ============================================================

func (a *App) ListBoards() ([]domain.Board, error) {
	return a.boards.ListBoards()
}

// GetBoard returns an open board from its session, so a drag in progress
// shows up before it is saved.
func (a *App) GetBoard(id string) (*domain.Board, error) {
	if c := a.canvas(id); c != nil {
		b := c.session.Board()
		return &b, nil
	}
	return a.boards.GetBoard(id)
}

func (a *App) CreateBoard(name string) (*domain.Board, error) {
	return a.boards.CreateBoard(a.ctx, name)
}

func (a *App) RenameBoard(id, name string) error {
	return a.boards.RenameBoard(a.ctx, id, name)
}

func (a *App) DuplicateBoard(id string) (*domain.Board, error) {
	return a.boards.DuplicateBoard(a.ctx, id)
}

// DeleteBoard asks for confirmation, closes the board's canvas and deletes it.
func (a *App) DeleteBoard(id string) (bool, error) {
	b, err := a.boards.GetBoard(id)
	if err != nil {
		return false, err
	}
	if !a.confirm("Delete board", fmt.Sprintf("Delete %q and everything on it?", b.Name)) {
		return false, nil
	}
	a.CloseBoard(id)
	if err := a.boards.DeleteBoard(a.ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// ============================================================
// Element edits outside a gesture
// ============================================================

// UpdateElement applies an edit from the properties panel or an inline editor.
func (a *App) UpdateElement(boardID, id string, patch domain.ElementPatch) error {
	if c := a.canvas(boardID); c != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.session.UpdateElement(id, patch)
		return nil
	}
	return a.boards.UpdateElement(a.ctx, boardID, id, patch)
}

func (a *App) DeleteElement(boardID, id string) error {
	if c := a.canvas(boardID); c != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.session.DeleteElement(id)
		return nil
	}
	return a.boards.DeleteElement(a.ctx, boardID, id)
}

func (a *App) Vote(boardID, id string, delta int) error {
	if err := a.boards.Vote(a.ctx, boardID, id, delta); err != nil {
		return err
	}
	return a.reloadCanvas(boardID)
}

// ============================================================
// Canvas interaction
// ============================================================

// OpenBoard creates the interaction controller for a board, restoring its
// saved viewport. Opening an already open board returns its current state.
func (a *App) OpenBoard(boardID string) (canvas.RenderState, error) {
	a.canvasMu.Lock()
	defer a.canvasMu.Unlock()

	if c, ok := a.canvases[boardID]; ok {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.ctrl.State(), nil
	}

	session, err := a.boards.Open(a.ctx, boardID)
	if err != nil {
		return canvas.RenderState{}, err
	}
	opts := a.cfg.CanvasOptions()
	opts.Capture = a.captureFor(boardID)

	c := &openCanvas{
		session: session,
		ctrl:    canvas.NewController(session, session.Board().Viewport, opts),
	}
	a.canvases[boardID] = c
	wailsRuntime.LogDebugf(a.ctx, "[Canvas] Opened board %s", boardID)
	return c.ctrl.State(), nil
}

// CloseBoard drops the board's controller. Closing a board that is not
// open does nothing.
func (a *App) CloseBoard(boardID string) {
	a.canvasMu.Lock()
	c, ok := a.canvases[boardID]
	delete(a.canvases, boardID)
	a.canvasMu.Unlock()
	if ok {
		if err := c.close(); err != nil {
			wailsRuntime.LogErrorf(a.ctx, "[Canvas] Close board %s: %v", boardID, err)
		}
	}
}

func (a *App) PointerDown(boardID string, ev canvas.PointerEvent) (canvas.RenderState, error) {
	return a.withCanvas(boardID, func(ctrl *canvas.Controller) canvas.RenderState {
		return ctrl.PointerDown(ev)
	})
}

func (a *App) PointerMove(boardID string, ev canvas.PointerEvent) (canvas.RenderState, error) {
	return a.withCanvas(boardID, func(ctrl *canvas.Controller) canvas.RenderState {
		return ctrl.PointerMove(ev)
	})
}

func (a *App) PointerUp(boardID string, ev canvas.PointerEvent) (canvas.RenderState, error) {
	return a.withCanvas(boardID, func(ctrl *canvas.Controller) canvas.RenderState {
		return ctrl.PointerUp(ev)
	})
}

// PointerCancel ends a gesture when the pointer is lost or the window blurs.
func (a *App) PointerCancel(boardID string) (canvas.RenderState, error) {
	return a.withCanvas(boardID, func(ctrl *canvas.Controller) canvas.RenderState {
		return ctrl.Cancel()
	})
}

func (a *App) Wheel(boardID string, ev canvas.WheelEvent) (canvas.RenderState, error) {
	return a.withCanvas(boardID, func(ctrl *canvas.Controller) canvas.RenderState {
		return ctrl.Wheel(ev)
	})
}

func (a *App) KeyDown(boardID string, ev canvas.KeyEvent) (canvas.RenderState, error) {
	return a.withCanvas(boardID, func(ctrl *canvas.Controller) canvas.RenderState {
		return ctrl.KeyDown(ev)
	})
}

// DropResult is the outcome of dropping a palette item onto the canvas.
type DropResult struct {
	Element *domain.Element    `json:"element,omitempty"`
	State   canvas.RenderState `json:"state"`
}

// Drop creates an element from a palette drag. Unknown type tags create
// nothing.
func (a *App) Drop(boardID, typeTag string, x, y float64) (DropResult, error) {
	var res DropResult
	st, err := a.withCanvas(boardID, func(ctrl *canvas.Controller) canvas.RenderState {
		if e, ok := ctrl.Drop(typeTag, x, y); ok {
			res.Element = &e
		}
		return ctrl.State()
	})
	res.State = st
	return res, err
}

// ZoomToFit starts an animated fit of every element into the visible area.
func (a *App) ZoomToFit(boardID string, screenW, screenH float64) (canvas.RenderState, error) {
	return a.withCanvas(boardID, func(ctrl *canvas.Controller) canvas.RenderState {
		return ctrl.ZoomToFit(screenW, screenH, zoomToFitPadding)
	})
}

// StepAnimation advances a running viewport animation by dt seconds.
func (a *App) StepAnimation(boardID string, dt float32) (canvas.RenderState, error) {
	return a.withCanvas(boardID, func(ctrl *canvas.Controller) canvas.RenderState {
		return ctrl.StepAnimation(dt)
	})
}

func (a *App) SelectElement(boardID, id string) (canvas.RenderState, error) {
	return a.withCanvas(boardID, func(ctrl *canvas.Controller) canvas.RenderState {
		ctrl.Select(id)
		return ctrl.State()
	})
}

func (a *App) ClearSelection(boardID string) (canvas.RenderState, error) {
	return a.withCanvas(boardID, func(ctrl *canvas.Controller) canvas.RenderState {
		ctrl.ClearSelection()
		return ctrl.State()
	})
}

const zoomToFitPadding = 50

func (a *App) canvas(boardID string) *openCanvas {
	a.canvasMu.Lock()
	defer a.canvasMu.Unlock()
	return a.canvases[boardID]
}

func (a *App) withCanvas(boardID string, fn func(*canvas.Controller) canvas.RenderState) (canvas.RenderState, error) {
	c := a.canvas(boardID)
	if c == nil {
		return canvas.RenderState{}, fmt.Errorf("board %s is not open", boardID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	st := fn(c.ctrl)
	if err := c.session.Track(c.ctrl.Gesture()); err != nil {
		wailsRuntime.LogErrorf(a.ctx, "[Canvas] Save board %s: %v", boardID, err)
	}
	return st, nil
}

// reloadCanvas refreshes an open board after a write that bypassed its session.
func (a *App) reloadCanvas(boardID string) error {
	c := a.canvas(boardID)
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Reload()
}

// captureFor tells the frontend to attach window-level listeners for the
// length of a gesture on boardID.
func (a *App) captureFor(boardID string) canvas.PointerCapture {
	return canvas.CaptureFunc(func() func() {
		wailsRuntime.EventsEmit(a.ctx, EventCanvasCapture, map[string]any{"boardId": boardID, "on": true})
		return func() {
			wailsRuntime.EventsEmit(a.ctx, EventCanvasCapture, map[string]any{"boardId": boardID, "on": false})
		}
	})
}
