package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"boards/internal/domain"
	"boards/internal/service"
)

var (
	pngFilter      = wailsRuntime.FileFilter{DisplayName: "PNG Image", Pattern: "*.png"}
	markdownFilter = wailsRuntime.FileFilter{DisplayName: "Markdown", Pattern: "*.md"}
	bundleFilter   = wailsRuntime.FileFilter{DisplayName: "Workspace Bundle", Pattern: "*.json"}
)

// ============================================================
// Board export
// ============================================================

// ExportBoardPNG asks for a file and renders the board into it. While the
// bitmap is taken, the open canvas hides its selection chrome. Returns the
// written path, or "" if the dialog was cancelled.
func (a *App) ExportBoardPNG(boardID string) (string, error) {
	b, err := a.boards.GetBoard(boardID)
	if err != nil {
		return "", err
	}
	path, err := a.saveDialog("Export Board as PNG", b.Name+".png", pngFilter)
	if err != nil || path == "" {
		return "", err
	}
	var snap service.Snapshotter
	if c := a.canvas(boardID); c != nil {
		snap = c
	}
	return path, service.ToFile(path, func(w io.Writer) error {
		return a.export.BoardPNG(a.ctx, boardID, w, snap)
	})
}

func (a *App) ExportBoardMarkdown(boardID string) (string, error) {
	b, err := a.boards.GetBoard(boardID)
	if err != nil {
		return "", err
	}
	path, err := a.saveDialog("Export Board as Markdown", b.Name+".md", markdownFilter)
	if err != nil || path == "" {
		return "", err
	}
	return path, service.ToFile(path, func(w io.Writer) error {
		return a.export.BoardMarkdown(boardID, w)
	})
}

// ============================================================
// Hierarchy export
// ============================================================

// ExportHierarchyPNG renders a site map or impact map. Maps have no
// interaction chrome in the backend, so the frontend is told through the
// snapshot events alone.
func (a *App) ExportHierarchyPNG(kind, id string) (string, error) {
	h, err := a.hierarchies.GetHierarchy(domain.HierarchyKind(kind), id)
	if err != nil {
		return "", err
	}
	path, err := a.saveDialog("Export Map as PNG", h.Name+".png", pngFilter)
	if err != nil || path == "" {
		return "", err
	}
	return path, service.ToFile(path, func(w io.Writer) error {
		return a.export.HierarchyPNG(a.ctx, domain.HierarchyKind(kind), id, w, nil)
	})
}

func (a *App) ExportHierarchyMarkdown(kind, id string) (string, error) {
	h, err := a.hierarchies.GetHierarchy(domain.HierarchyKind(kind), id)
	if err != nil {
		return "", err
	}
	path, err := a.saveDialog("Export Map as Markdown", h.Name+".md", markdownFilter)
	if err != nil || path == "" {
		return "", err
	}
	return path, service.ToFile(path, func(w io.Writer) error {
		return a.export.HierarchyMarkdown(domain.HierarchyKind(kind), id, w)
	})
}

// ============================================================
// Workspace bundles and backups
// ============================================================

// ExportWorkspace writes every board, map, persona and journey map into
// one JSON bundle.
func (a *App) ExportWorkspace() (string, error) {
	path, err := a.saveDialog("Export Workspace", "boards-workspace.json", bundleFilter)
	if err != nil || path == "" {
		return "", err
	}
	ws, err := a.stores.ExportAll()
	if err != nil {
		return "", err
	}
	return path, service.ToFile(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ws)
	})
}

// ImportWorkspace reads a bundle chosen by the user. Documents with the
// same id are replaced. Returns the number of documents written.
func (a *App) ImportWorkspace() (int, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title:   "Import Workspace",
		Filters: []wailsRuntime.FileFilter{bundleFilter},
	})
	if err != nil || path == "" {
		return 0, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read bundle: %w", err)
	}
	_, n, err := service.ImportBundle(a.ctx, a.stores, a, data)
	if err != nil {
		return 0, err
	}
	a.reloadOpenCanvases()
	wailsRuntime.LogInfof(a.ctx, "[Import] %d documents from %s", n, filepath.Base(path))
	return n, nil
}

// BackupNow writes a backup immediately and returns its path.
func (a *App) BackupNow() (string, error) {
	return a.backup.RunNow(a.ctx)
}

func (a *App) ListBackups() ([]service.BackupInfo, error) {
	return a.backup.List()
}

// RestoreBackup replaces matching documents with those in a backup file,
// after confirmation.
func (a *App) RestoreBackup(path string) (int, error) {
	if !a.confirm("Restore backup", "Replace current boards and maps with "+filepath.Base(path)+"?") {
		return 0, nil
	}
	n, err := a.backup.Restore(a.ctx, path)
	if err != nil {
		return 0, err
	}
	a.reloadOpenCanvases()
	return n, nil
}

func (a *App) saveDialog(title, name string, filter wailsRuntime.FileFilter) (string, error) {
	return wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           title,
		DefaultFilename: safeFilename(name),
		Filters:         []wailsRuntime.FileFilter{filter},
	})
}

// safeFilename replaces path separators so a board name can't point a
// save dialog at another directory.
func safeFilename(name string) string {
	return strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(strings.TrimSpace(name))
}
