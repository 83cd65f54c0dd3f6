package app

import (
	"context"
	"fmt"
	"sync"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"boards/internal/config"
	"boards/internal/layout"
	mcpserver "boards/internal/mcp"
	"boards/internal/secret"
	"boards/internal/service"
	"boards/internal/storage"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context
	cfg *config.Config

	stores   *storage.Stores
	settings *storage.Settings

	boards      *service.BoardService
	hierarchies *service.HierarchyService
	personas    *service.PersonaService
	export      *service.ExportService
	backup      *service.BackupService
	importer    *service.ImportWatcher
	window      *service.WindowSettingsService

	watcher   *storeWatcher
	remeasure *layout.RemeasureScheduler

	// Open canvases, keyed by board id
	canvasMu sync.Mutex
	canvases map[string]*openCanvas

	// Hierarchy whose connectors are waiting to be re-measured
	remeasureMu     sync.Mutex
	remeasureKind   string
	remeasureTarget string
}

// New creates a new App. cfg may be nil, in which case the config file is
// loaded at startup.
func New(cfg *config.Config) *App {
	return &App{cfg: cfg, canvases: map[string]*openCanvas{}}
}

// Emit implements service.EventEmitter by forwarding to the frontend.
func (a *App) Emit(ctx context.Context, event string, data any) {
	if ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(ctx, event, data)
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	if a.cfg == nil {
		a.cfg = config.Load()
	}
	if err := a.cfg.ResolveSecrets(secret.Default()); err != nil {
		wailsRuntime.LogErrorf(ctx, "[Startup] %v", err)
	}

	docs, err := storage.Open(ctx, a.cfg.StorageParams())
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "[Startup] Failed to open %s store: %v", a.cfg.Storage.Backend, err)
		return
	}
	wailsRuntime.LogInfof(ctx, "[Startup] Using %s store", a.cfg.Storage.Backend)

	a.stores = storage.NewStores(docs)
	a.settings = storage.NewSettings(docs)

	a.boards = service.NewBoardService(a.stores.Boards, a)
	a.hierarchies = service.NewHierarchyService(a.stores.Hierarchies, a.cfg.Layout, service.ConfirmFunc(a.confirm), a)
	a.personas = service.NewPersonaService(a.stores.Personas, a.stores.JourneyMaps, a)
	a.export = service.NewExportService(a.stores.Boards, a.stores.Hierarchies, a.cfg.Layout, a.cfg.Export, a)
	a.backup = service.NewBackupService(a.stores, a.cfg.Backup, a)
	a.window = service.NewWindowSettingsService(a.settings)
	a.remeasure = layout.NewRemeasureScheduler(layout.FrameDelay, a.runRemeasure)

	if err := a.backup.Start(ctx); err != nil {
		wailsRuntime.LogErrorf(ctx, "[Backup] Failed to start schedule: %v", err)
	}
	if a.cfg.Import.Enabled {
		a.importer = service.NewImportWatcher(a.cfg.Import.WatchDir, a.stores, a)
		if err := a.importer.Start(ctx); err != nil {
			wailsRuntime.LogErrorf(ctx, "[Import] Failed to watch %s: %v", a.cfg.Import.WatchDir, err)
			a.importer = nil
		}
	}

	// Pick up writes from a standalone MCP process sharing the store
	a.watcher = newStoreWatcher(ctx, a)
	a.watcher.Start()

	size := a.window.LoadWindowSize()
	wailsRuntime.WindowSetSize(ctx, size.Width, size.Height)
}

// BeforeClose saves the window size. Returning false lets the window close.
func (a *App) BeforeClose(ctx context.Context) bool {
	if a.window == nil {
		return false
	}
	w, h := wailsRuntime.WindowGetSize(ctx)
	if err := a.window.SaveWindowSize(w, h); err != nil {
		wailsRuntime.LogErrorf(ctx, "[Window] Failed to save size: %v", err)
	}
	return false
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.remeasure != nil {
		a.remeasure.Stop()
	}
	if a.importer != nil {
		a.importer.Stop()
	}
	if a.backup != nil {
		a.backup.Stop(ctx)
	}

	a.canvasMu.Lock()
	for id, c := range a.canvases {
		if err := c.close(); err != nil {
			wailsRuntime.LogErrorf(ctx, "[Shutdown] Save board %s: %v", id, err)
		}
		delete(a.canvases, id)
	}
	a.canvasMu.Unlock()

	if a.stores != nil {
		a.stores.Close()
	}
}

// confirm asks the user through a native dialog. macOS answers with the
// button label, other platforms with "Yes"/"No".
func (a *App) confirm(title, message string) bool {
	answer, err := wailsRuntime.MessageDialog(a.ctx, wailsRuntime.MessageDialogOptions{
		Type:          wailsRuntime.QuestionDialog,
		Title:         title,
		Message:       message,
		Buttons:       []string{"Delete", "Cancel"},
		DefaultButton: "Cancel",
		CancelButton:  "Cancel",
	})
	if err != nil {
		wailsRuntime.LogErrorf(a.ctx, "[Dialog] %v", err)
		return false
	}
	return answer == "Delete" || answer == "Yes"
}

// ============================================================
// Settings
// ============================================================

// GetConfig returns the active configuration.
func (a *App) GetConfig() config.Config {
	return *a.cfg
}

// ============================================================
// MCP approvals
// ============================================================

// ListPendingApprovals returns actions a standalone MCP process is waiting on.
func (a *App) ListPendingApprovals() ([]mcpserver.PendingAction, error) {
	return mcpserver.PendingApprovals(a.ctx, a.stores.Docs)
}

// ApproveAction lets a pending MCP action proceed.
func (a *App) ApproveAction(id string) error {
	return a.resolveApproval(id, true)
}

// RejectAction refuses a pending MCP action.
func (a *App) RejectAction(id string) error {
	return a.resolveApproval(id, false)
}

func (a *App) resolveApproval(id string, approved bool) error {
	if err := mcpserver.ResolveApproval(a.ctx, a.stores.Docs, id, approved); err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	wailsRuntime.EventsEmit(a.ctx, mcpserver.EventApprovalDismissed, map[string]string{"id": id})
	return nil
}
