package app

import (
	"context"
	"sync"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	mcpserver "boards/internal/mcp"
	"boards/internal/storage"
)

const (
	EventExternalBoards      = "mcp:boards-changed"
	EventExternalHierarchies = "mcp:hierarchies-changed"
	EventMCPActivity         = "mcp:activity"

	watchInterval = 2 * time.Second
)

var watchedHierarchies = []string{storage.CollSiteMaps, storage.CollImpactMaps}

// storeWatcher polls collection fingerprints to catch writes made by
// another process sharing the store (a standalone MCP server), reloads
// open canvases and tells the frontend to refresh. It also relays MCP
// approval requests, which cross processes through the store.
type storeWatcher struct {
	ctx context.Context
	app *App

	mu     sync.Mutex
	last   map[string]storage.Fingerprint
	stopCh chan struct{}
	// Approval ids already shown, so each is emitted once
	emittedApprovals map[string]bool
}

func newStoreWatcher(ctx context.Context, app *App) *storeWatcher {
	return &storeWatcher{
		ctx:              ctx,
		app:              app,
		last:             map[string]storage.Fingerprint{},
		emittedApprovals: map[string]bool{},
	}
}

// Start begins the polling loop. Should be called once on app startup.
func (w *storeWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.pollLoop()
}

// Stop terminates the polling loop.
func (w *storeWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *storeWatcher) pollLoop() {
	stop := w.stopCh
	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.check()
		case <-stop:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

func (w *storeWatcher) check() {
	docs := w.app.stores.Docs

	// ── Boards ─────────────────────────────────────────
	if w.changed(storage.CollBoards) {
		w.app.reloadOpenCanvases()
		wailsRuntime.EventsEmit(w.ctx, EventExternalBoards, nil)
	}

	// ── Site maps and impact maps ───────────────────────
	for _, coll := range watchedHierarchies {
		if w.changed(coll) {
			wailsRuntime.EventsEmit(w.ctx, EventExternalHierarchies, map[string]string{"collection": coll})
		}
	}

	// ── Pending MCP approvals ──────────────────────────
	pending, err := mcpserver.PendingApprovals(w.ctx, docs)
	if err != nil {
		return
	}
	live := make(map[string]bool, len(pending))
	for _, action := range pending {
		live[action.ID] = true
		w.mu.Lock()
		alreadySent := w.emittedApprovals[action.ID]
		w.emittedApprovals[action.ID] = true
		w.mu.Unlock()
		if !alreadySent {
			wailsRuntime.EventsEmit(w.ctx, EventMCPActivity, map[string]any{"changes": 1})
			wailsRuntime.EventsEmit(w.ctx, mcpserver.EventApprovalRequired, action)
		}
	}

	// Forget approvals that were resolved or timed out
	w.mu.Lock()
	for id := range w.emittedApprovals {
		if !live[id] {
			delete(w.emittedApprovals, id)
		}
	}
	w.mu.Unlock()
}

// changed reports whether a collection's fingerprint moved since the last
// poll. The first poll only records a baseline.
func (w *storeWatcher) changed(coll string) bool {
	fp, err := w.app.stores.Docs.Fingerprint(w.ctx, coll)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	prev, seen := w.last[coll]
	w.last[coll] = fp
	return seen && prev != fp
}

// reloadOpenCanvases refreshes every open board from the store. Boards
// that no longer exist are closed.
func (a *App) reloadOpenCanvases() {
	a.canvasMu.Lock()
	open := make(map[string]*openCanvas, len(a.canvases))
	for id, c := range a.canvases {
		open[id] = c
	}
	a.canvasMu.Unlock()

	for id, c := range open {
		c.mu.Lock()
		err := c.session.Reload()
		c.mu.Unlock()
		if storage.IsNotFound(err) {
			a.CloseBoard(id)
			continue
		}
		if err != nil {
			wailsRuntime.LogErrorf(a.ctx, "[Watcher] Reload board %s: %v", id, err)
		}
	}
}
