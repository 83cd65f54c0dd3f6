package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"boards/internal/config"
	"boards/internal/domain"
	"boards/internal/storage"
)

// ─────────────────────────────────────────────────────────────
// Backup Service: scheduled workspace snapshots
// ─────────────────────────────────────────────────────────────

const (
	EventBackupCompleted = "backup:completed"

	backupJobID   = "backup"
	backupPrefix  = "boards-"
	backupSuffix  = ".json"
	backupTimeFmt = "20060102-150405.000"
)

// ErrBackupRunning is returned when a backup is requested while one runs.
var ErrBackupRunning = errors.New("backup already running")

// Workspace is the whole-workspace read/write surface backups need.
// *storage.Stores implements it.
type Workspace interface {
	ExportAll() (*domain.Workspace, error)
	ImportAll(ws *domain.Workspace) (int, error)
}

// BackupInfo describes one backup file.
type BackupInfo struct {
	Path    string    `json:"path"`
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	TakenAt time.Time `json:"takenAt"`
}

// BackupService writes timestamped JSON bundles on a cron schedule and
// prunes old ones.
type BackupService struct {
	ws      Workspace
	cfg     config.BackupConfig
	emitter EventEmitter
	guard   jobGuard
	now     func() time.Time

	mu        sync.Mutex
	cronSched *cron.Cron
}

// NewBackupService creates a BackupService.
func NewBackupService(ws Workspace, cfg config.BackupConfig, emitter EventEmitter) *BackupService {
	return &BackupService{ws: ws, cfg: cfg, emitter: emitter, now: time.Now}
}

// Start schedules backups when they are enabled. Calling Start again
// replaces the schedule.
func (s *BackupService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopCron()

	if !s.cfg.Enabled {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(s.cfg.Schedule, func() {
		log.Printf("backup cron: running")
		path, err := s.RunNow(ctx)
		if err != nil {
			log.Printf("backup cron: failed: %v", err)
			return
		}
		log.Printf("backup cron: wrote %s", path)
	})
	if err != nil {
		return fmt.Errorf("backup cron: invalid schedule %q: %w", s.cfg.Schedule, err)
	}
	c.Start()
	s.cronSched = c
	log.Printf("backup cron: scheduled %q into %s", s.cfg.Schedule, s.cfg.Dir)
	return nil
}

// RunNow writes one backup and prunes the directory to the configured
// number of files. Only one backup runs at a time.
func (s *BackupService) RunNow(ctx context.Context) (string, error) {
	release, ok := s.guard.Acquire(backupJobID)
	if !ok {
		return "", ErrBackupRunning
	}
	defer release()

	ws, err := s.ws.ExportAll()
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}
	data, err := json.MarshalIndent(ws, "", "  ")
	if err != nil {
		return "", fmt.Errorf("backup: encode: %w", err)
	}
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: create dir: %w", err)
	}

	path := filepath.Join(s.cfg.Dir, backupPrefix+s.now().Format(backupTimeFmt)+backupSuffix)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("backup: write: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("backup: write: %w", err)
	}

	if _, err := s.Prune(); err != nil {
		log.Printf("backup: prune failed: %v", err)
	}
	s.emitter.Emit(ctx, EventBackupCompleted, map[string]string{"path": path})
	return path, nil
}

// List returns the backups in the directory, newest first.
func (s *BackupService) List() ([]BackupInfo, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	var out []BackupInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, backupPrefix) || !strings.HasSuffix(name, backupSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, backupPrefix), backupSuffix)
		taken, err := time.ParseInLocation(backupTimeFmt, stamp, time.Local)
		if err != nil {
			continue
		}
		info := BackupInfo{Path: filepath.Join(s.cfg.Dir, name), Name: name, TakenAt: taken}
		if fi, err := e.Info(); err == nil {
			info.Size = fi.Size()
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TakenAt.After(out[j].TakenAt) })
	return out, nil
}

// Prune deletes all but the newest Keep backups and returns how many
// files it removed.
func (s *BackupService) Prune() (int, error) {
	if s.cfg.Keep <= 0 {
		return 0, nil
	}
	list, err := s.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, b := range list[min(s.cfg.Keep, len(list)):] {
		if err := os.Remove(b.Path); err != nil {
			return removed, fmt.Errorf("prune backup %s: %w", b.Name, err)
		}
		removed++
	}
	return removed, nil
}

// Restore imports a backup file over the current workspace.
func (s *BackupService) Restore(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("restore backup: %w", err)
	}
	ws, err := storage.DecodeWorkspace(data)
	if err != nil {
		return 0, fmt.Errorf("restore backup: %w", err)
	}
	n, err := s.ws.ImportAll(ws)
	if err != nil {
		return n, fmt.Errorf("restore backup: %w", err)
	}
	s.emitter.Emit(ctx, EventWorkspaceImported, map[string]any{"path": path, "documents": n})
	return n, nil
}

// Stop cancels the schedule and waits for a running backup to finish or
// ctx to expire.
func (s *BackupService) Stop(ctx context.Context) {
	s.mu.Lock()
	s.stopCron()
	s.mu.Unlock()
	s.guard.Wait(ctx)
}

func (s *BackupService) stopCron() {
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
