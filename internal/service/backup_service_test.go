package service_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"boards/internal/config"
	"boards/internal/domain"
	"boards/internal/service"
)

// ─────────────────────────────────────────────────────────────
// BackupService tests
// ─────────────────────────────────────────────────────────────

func TestBackupService_RunNowWritesBundle(t *testing.T) {
	stores := newStores(t)
	stores.Boards.SaveBoard(&domain.Board{ID: "b1", Name: "Retro"})
	dir := t.TempDir()
	emitter := &service.MockEmitter{}
	svc := service.NewBackupService(stores, config.BackupConfig{Dir: dir, Keep: 5}, emitter)

	path, err := svc.RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}
	if filepath.Dir(path) != dir || !strings.HasPrefix(filepath.Base(path), "boards-") {
		t.Errorf("unexpected backup path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !strings.Contains(string(data), `"Retro"`) {
		t.Errorf("backup does not contain the board:\n%s", data)
	}
	if countEvents(emitter, service.EventBackupCompleted) != 1 {
		t.Errorf("events = %v", emitter.Names())
	}
}

func TestBackupService_PruneKeepsNewest(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"boards-20240101-100000.000.json",
		"boards-20240102-100000.000.json",
		"boards-20240103-100000.000.json",
		"notes.txt",
	}
	for _, n := range names {
		os.WriteFile(filepath.Join(dir, n), []byte("{}"), 0o644)
	}
	svc := service.NewBackupService(newStores(t), config.BackupConfig{Dir: dir, Keep: 2}, &service.MockEmitter{})

	removed, err := svc.Prune()
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed %d, want 1", removed)
	}
	if _, err := os.Stat(filepath.Join(dir, names[0])); !os.IsNotExist(err) {
		t.Error("oldest backup survived")
	}
	if _, err := os.Stat(filepath.Join(dir, "notes.txt")); err != nil {
		t.Error("unrelated file was removed")
	}

	list, _ := svc.List()
	if len(list) != 2 || list[0].Name != names[2] {
		t.Errorf("List = %+v", list)
	}
}

func TestBackupService_RestoreRoundtrip(t *testing.T) {
	src := newStores(t)
	src.Boards.SaveBoard(&domain.Board{ID: "b1", Name: "Retro"})
	src.Personas.SavePersona(&domain.Persona{ID: "p1", Name: "Ana"})
	dir := t.TempDir()
	path, err := service.NewBackupService(src, config.BackupConfig{Dir: dir, Keep: 5}, &service.MockEmitter{}).RunNow(context.Background())
	if err != nil {
		t.Fatalf("RunNow: %v", err)
	}

	dst := newStores(t)
	emitter := &service.MockEmitter{}
	n, err := service.NewBackupService(dst, config.BackupConfig{Dir: dir}, emitter).Restore(context.Background(), path)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if n != 2 {
		t.Errorf("restored %d documents, want 2", n)
	}
	if b, err := dst.Boards.GetBoard("b1"); err != nil || b.Name != "Retro" {
		t.Errorf("restored board = %+v, %v", b, err)
	}
	if countEvents(emitter, service.EventWorkspaceImported) != 1 {
		t.Errorf("events = %v", emitter.Names())
	}
}

// blockingWorkspace holds ExportAll until release is closed.
type blockingWorkspace struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingWorkspace) ExportAll() (*domain.Workspace, error) {
	close(b.started)
	<-b.release
	return &domain.Workspace{Version: domain.WorkspaceVersion}, nil
}

func (b *blockingWorkspace) ImportAll(*domain.Workspace) (int, error) { return 0, nil }

func TestBackupService_OneRunAtATime(t *testing.T) {
	ws := &blockingWorkspace{started: make(chan struct{}), release: make(chan struct{})}
	svc := service.NewBackupService(ws, config.BackupConfig{Dir: t.TempDir(), Keep: 5}, &service.MockEmitter{})

	errs := make(chan error, 1)
	go func() {
		_, err := svc.RunNow(context.Background())
		errs <- err
	}()
	<-ws.started

	if _, err := svc.RunNow(context.Background()); err != service.ErrBackupRunning {
		t.Errorf("concurrent RunNow err = %v, want ErrBackupRunning", err)
	}
	close(ws.release)
	if err := <-errs; err != nil {
		t.Errorf("first RunNow: %v", err)
	}
}

func TestBackupService_StartRejectsBadSchedule(t *testing.T) {
	svc := service.NewBackupService(newStores(t), config.BackupConfig{Enabled: true, Schedule: "often", Dir: t.TempDir()}, &service.MockEmitter{})
	if err := svc.Start(context.Background()); err == nil {
		t.Error("invalid schedule accepted")
	}

	ok := service.NewBackupService(newStores(t), config.BackupConfig{Enabled: true, Schedule: "@every 1h", Dir: t.TempDir()}, &service.MockEmitter{})
	if err := ok.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ok.Stop(ctx)
}
