package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"boards/internal/domain"
	"boards/internal/layout"
	"boards/internal/render"
	"boards/internal/service"
)

// ─────────────────────────────────────────────────────────────
// ExportService tests
// ─────────────────────────────────────────────────────────────

type recordingSnapshotter struct{ calls []bool }

func (r *recordingSnapshotter) SetExporting(on bool) { r.calls = append(r.calls, on) }

func newExportService(t *testing.T) (*service.ExportService, *service.MockEmitter) {
	t.Helper()
	stores := newStores(t)
	stores.Boards.SaveBoard(&domain.Board{ID: "b1", Name: "Retro", Elements: []domain.Element{
		{ID: "n1", Type: domain.ElementNote, Width: 150, Height: 100, Content: "ship it", Color: "#fef08a"},
	}})
	stores.Hierarchies.SaveHierarchy(&domain.Hierarchy{ID: "s1", Name: "Site", Kind: domain.KindSiteMap, Nodes: []domain.HierarchicalNode{
		{ID: "home", Title: "Home", Type: domain.NodeScreen},
	}})
	emitter := &service.MockEmitter{}
	svc := service.NewExportService(stores.Boards, stores.Hierarchies, layout.DefaultConfig(), render.Options{Scale: 1, Padding: 10}, emitter)
	svc.FrameDelay = time.Millisecond
	return svc, emitter
}

func TestExportService_BoardPNGTogglesSnapshot(t *testing.T) {
	svc, emitter := newExportService(t)
	snap := &recordingSnapshotter{}

	var buf bytes.Buffer
	if err := svc.BoardPNG(context.Background(), "b1", &buf, snap); err != nil {
		t.Fatalf("BoardPNG: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
		t.Error("output is not a PNG")
	}
	if len(snap.calls) != 2 || !snap.calls[0] || snap.calls[1] {
		t.Errorf("SetExporting calls = %v, want [true false]", snap.calls)
	}
	if countEvents(emitter, service.EventExportSnapshot) != 2 {
		t.Errorf("events = %v", emitter.Names())
	}
}

func TestExportService_CancelledSnapshotRestoresChrome(t *testing.T) {
	svc, _ := newExportService(t)
	svc.FrameDelay = time.Hour
	snap := &recordingSnapshotter{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := svc.BoardPNG(ctx, "b1", &bytes.Buffer{}, snap)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if len(snap.calls) != 2 || snap.calls[1] {
		t.Errorf("SetExporting calls = %v", snap.calls)
	}
}

func TestExportService_Markdown(t *testing.T) {
	svc, _ := newExportService(t)
	var buf bytes.Buffer
	if err := svc.BoardMarkdown("b1", &buf); err != nil {
		t.Fatalf("BoardMarkdown: %v", err)
	}
	if !strings.Contains(buf.String(), "- ship it") {
		t.Errorf("markdown = %q", buf.String())
	}
	buf.Reset()
	if err := svc.HierarchyMarkdown(domain.KindSiteMap, "s1", &buf); err != nil {
		t.Fatalf("HierarchyMarkdown: %v", err)
	}
	if !strings.Contains(buf.String(), "- Home") {
		t.Errorf("markdown = %q", buf.String())
	}
}

func TestExportService_MissingBoard(t *testing.T) {
	svc, _ := newExportService(t)
	if err := svc.BoardPNG(context.Background(), "nope", &bytes.Buffer{}, nil); err == nil {
		t.Error("exporting a missing board succeeded")
	}
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.md")
	err := service.ToFile(bad, func(w io.Writer) error {
		w.Write([]byte("partial"))
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("ToFile swallowed the export error")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Error("failed export left a file behind")
	}

	good := filepath.Join(dir, "good.md")
	if err := service.ToFile(good, func(w io.Writer) error {
		_, err := w.Write([]byte("# Retro\n"))
		return err
	}); err != nil {
		t.Fatalf("ToFile: %v", err)
	}
	if data, _ := os.ReadFile(good); string(data) != "# Retro\n" {
		t.Errorf("file = %q", data)
	}
}
