package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"boards/internal/domain"
	"boards/internal/layout"
	"boards/internal/render"
)

// ─────────────────────────────────────────────────────────────
// Export Service: PNG snapshots and Markdown outlines
// ─────────────────────────────────────────────────────────────

// EventExportSnapshot is emitted with {"on": bool} around a bitmap export so
// the frontend can hide selection chrome and handles.
const EventExportSnapshot = "export:snapshot"

// Snapshotter hides interactive affordances while a bitmap is taken.
// *canvas.Controller implements it.
type Snapshotter interface {
	SetExporting(on bool)
}

// ExportService renders boards and hierarchies to files.
type ExportService struct {
	boards      domain.BoardStore
	hierarchies domain.HierarchyStore
	layout      layout.Config
	opts        render.Options
	emitter     EventEmitter

	// FrameDelay is how long a snapshot waits after hiding chrome, giving
	// the frontend one paint to commit.
	FrameDelay time.Duration
}

// NewExportService creates an ExportService.
func NewExportService(boards domain.BoardStore, hierarchies domain.HierarchyStore, cfg layout.Config, opts render.Options, emitter EventEmitter) *ExportService {
	return &ExportService{
		boards:      boards,
		hierarchies: hierarchies,
		layout:      cfg,
		opts:        opts,
		emitter:     emitter,
		FrameDelay:  layout.FrameDelay,
	}
}

// BoardPNG renders a board. snap may be nil when no canvas is open.
func (s *ExportService) BoardPNG(ctx context.Context, boardID string, w io.Writer, snap Snapshotter) error {
	b, err := s.boards.GetBoard(boardID)
	if err != nil {
		return fmt.Errorf("export board: %w", err)
	}
	return s.snapshot(ctx, snap, func() error { return render.BoardPNG(w, b, s.opts) })
}

func (s *ExportService) BoardMarkdown(boardID string, w io.Writer) error {
	b, err := s.boards.GetBoard(boardID)
	if err != nil {
		return fmt.Errorf("export board: %w", err)
	}
	return render.BoardMarkdown(w, b)
}

func (s *ExportService) HierarchyPNG(ctx context.Context, kind domain.HierarchyKind, id string, w io.Writer, snap Snapshotter) error {
	h, err := s.hierarchies.GetHierarchy(kind, id)
	if err != nil {
		return fmt.Errorf("export hierarchy: %w", err)
	}
	return s.snapshot(ctx, snap, func() error { return render.HierarchyPNG(w, h, s.layout, s.opts) })
}

func (s *ExportService) HierarchyMarkdown(kind domain.HierarchyKind, id string, w io.Writer) error {
	h, err := s.hierarchies.GetHierarchy(kind, id)
	if err != nil {
		return fmt.Errorf("export hierarchy: %w", err)
	}
	return render.HierarchyMarkdown(w, h)
}

// ToFile runs export into a buffer and writes it to path only when it
// succeeds, so a failed export never leaves a truncated file behind.
func ToFile(path string, export func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := export(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// snapshot hides affordances, waits one frame, runs fn and always
// restores the affordances afterwards.
func (s *ExportService) snapshot(ctx context.Context, snap Snapshotter, fn func() error) error {
	if snap != nil {
		snap.SetExporting(true)
		defer snap.SetExporting(false)
	}
	s.emitter.Emit(ctx, EventExportSnapshot, map[string]bool{"on": true})
	defer s.emitter.Emit(ctx, EventExportSnapshot, map[string]bool{"on": false})

	if s.FrameDelay > 0 {
		t := time.NewTimer(s.FrameDelay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
	return fn()
}
