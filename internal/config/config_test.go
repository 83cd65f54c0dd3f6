package config

import (
	"os"
	"path/filepath"
	"testing"

	"boards/internal/secret"
)

func TestDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/test-data")
	cfg := Default()

	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.DataDir != "/tmp/test-data/boards" {
		t.Errorf("unexpected data dir %q", cfg.Storage.DataDir)
	}
	if cfg.Canvas.MinZoom != 0.25 || cfg.Canvas.MaxZoom != 2.0 {
		t.Errorf("zoom range = %v..%v", cfg.Canvas.MinZoom, cfg.Canvas.MaxZoom)
	}
	if cfg.Canvas.MinGroupSize != 100 {
		t.Errorf("expected min group size 100, got %v", cfg.Canvas.MinGroupSize)
	}
	if cfg.Layout.NodeWidth != 200 || cfg.Layout.VGap != 80 {
		t.Errorf("unexpected layout defaults %+v", cfg.Layout)
	}
	if cfg.Backup.Enabled {
		t.Error("default backups should be disabled")
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg")
	if dir := ConfigDir(); dir != "/tmp/test-xdg/boards" {
		t.Errorf("expected /tmp/test-xdg/boards, got %q", dir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	if dir := ConfigDir(); dir != filepath.Join(home, ".config", "boards") {
		t.Errorf("unexpected config dir %q", dir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Storage.Backend = "postgres"
	cfg.Storage.Host = "db.local"
	cfg.Backup.Keep = 7

	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := Load()
	if loaded.Storage.Backend != "postgres" || loaded.Storage.Host != "db.local" {
		t.Errorf("storage after load = %+v", loaded.Storage)
	}
	if loaded.Backup.Keep != 7 {
		t.Errorf("expected keep 7, got %d", loaded.Backup.Keep)
	}
}

func TestLoadFile_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[canvas]\nmax_zoom = 4.0\n"), 0o644)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Canvas.MaxZoom != 4.0 {
		t.Errorf("expected max zoom 4, got %v", cfg.Canvas.MaxZoom)
	}
	if cfg.Canvas.MinZoom != 0.25 {
		t.Errorf("min zoom should keep its default, got %v", cfg.Canvas.MinZoom)
	}
}

func TestLoadFile_Broken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("[canvas\n"), 0o644)

	cfg, err := LoadFile(path)
	if err == nil {
		t.Error("expected a parse error")
	}
	if cfg == nil || cfg.Storage.Backend != "sqlite" {
		t.Error("broken file should still yield defaults")
	}
}

func TestNormalize(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "MongoDB"
	cfg.Canvas.MinZoom = 3
	cfg.Canvas.MaxZoom = 1
	cfg.Canvas.MinGroupSize = -5
	cfg.Backup.Schedule = "every tuesday"
	cfg.Backup.Keep = 0
	cfg.Export.Scale = 0
	cfg.Normalize()

	if cfg.Storage.Backend != "mongo" {
		t.Errorf("backend = %q", cfg.Storage.Backend)
	}
	if cfg.Canvas.MinZoom != 0.25 || cfg.Canvas.MaxZoom != 2.0 {
		t.Errorf("inverted zoom range not reset: %v..%v", cfg.Canvas.MinZoom, cfg.Canvas.MaxZoom)
	}
	if cfg.Canvas.MinGroupSize != 100 {
		t.Errorf("min group size = %v", cfg.Canvas.MinGroupSize)
	}
	if cfg.Backup.Schedule != "0 * * * *" || cfg.Backup.Keep != 24 {
		t.Errorf("backup = %+v", cfg.Backup)
	}
	if cfg.Export.Scale != 2 {
		t.Errorf("export scale = %v", cfg.Export.Scale)
	}

	cfg.Storage.Backend = "oracle"
	cfg.Normalize()
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("unknown backend should fall back to sqlite, got %q", cfg.Storage.Backend)
	}
}

func TestCanvasOptions(t *testing.T) {
	cfg := Default()
	cfg.Canvas.MaxZoom = 3
	cfg.Canvas.SnapThreshold = 2
	opts := cfg.CanvasOptions()
	if opts.Viewport.MaxZoom != 3 || opts.DragThreshold != 2 || opts.MinGroupSize != 100 {
		t.Errorf("canvas options = %+v", opts)
	}
	if p := cfg.StorageParams(); p.Backend != "sqlite" || p.DataDir != cfg.Storage.DataDir {
		t.Errorf("storage params = %+v", p)
	}
}

func TestResolveSecrets(t *testing.T) {
	t.Setenv("BOARDS_SECRET_PROD_DB", "s3cret")

	cfg := Default()
	cfg.Storage.Backend = "postgres"
	cfg.Storage.PasswordSecret = "prod-db"
	if err := cfg.ResolveSecrets(secret.EnvStore{}); err != nil {
		t.Fatalf("ResolveSecrets: %v", err)
	}
	if cfg.StorageParams().Password != "s3cret" {
		t.Errorf("password = %q", cfg.StorageParams().Password)
	}

	// an explicit password wins
	cfg = Default()
	cfg.Storage.Password = "inline"
	cfg.Storage.PasswordSecret = "prod-db"
	cfg.ResolveSecrets(secret.EnvStore{})
	if cfg.Storage.Password != "inline" {
		t.Errorf("inline password replaced with %q", cfg.Storage.Password)
	}

	cfg = Default()
	cfg.Storage.PasswordSecret = "missing"
	if err := cfg.ResolveSecrets(secret.EnvStore{}); err == nil {
		t.Error("expected an error for an unset secret")
	}
}
