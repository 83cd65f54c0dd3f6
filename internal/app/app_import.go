package app

import (
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"boards/internal/domain"
	"boards/internal/etl"
	_ "boards/internal/etl/sources"
)

// ============================================================
// Note import from CSV / JSON
// ============================================================

// NotesFile is a file picked for note import and the columns it offers.
type NotesFile struct {
	Path   string      `json:"path"`
	Source string      `json:"source"`
	Fields []etl.Field `json:"fields"`
}

// PickNotesFile opens a file dialog and inspects the chosen file so the
// user can map its columns. Returns nil if the dialog was cancelled.
func (a *App) PickNotesFile() (*NotesFile, error) {
	path, err := wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Import Notes",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Spreadsheets", Pattern: "*.csv;*.tsv"},
			{DisplayName: "JSON Files", Pattern: "*.json"},
		},
	})
	if err != nil || path == "" {
		return nil, err
	}
	src, err := etl.SourceForFile(path)
	if err != nil {
		return nil, err
	}
	schema, err := src.Discover(a.ctx, etl.SourceConfig{"filePath": path})
	if err != nil {
		return nil, err
	}
	return &NotesFile{Path: path, Source: src.Spec().Type, Fields: schema.Fields}, nil
}

// ImportNotes reads path and adds one note per row, grouped by the
// mapping's group column. Blank and repeated rows are skipped.
func (a *App) ImportNotes(boardID, path string, m etl.Mapping) ([]domain.Element, error) {
	src, err := etl.SourceForFile(path)
	if err != nil {
		return nil, err
	}
	drafts, err := etl.Collect(a.ctx, src, etl.SourceConfig{"filePath": path}, m,
		&etl.NonEmptyTransform{Field: m.Content},
		&etl.DedupeTransform{Field: m.Content},
	)
	if err != nil {
		return nil, err
	}
	added, err := a.boards.ImportNotes(a.ctx, boardID, drafts)
	if err != nil {
		return nil, err
	}
	wailsRuntime.LogInfof(a.ctx, "[Import] %d notes into board %s", len(drafts), boardID)
	return added, a.reloadCanvas(boardID)
}
