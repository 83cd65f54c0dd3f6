package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"

	"boards/internal/canvas"
	"boards/internal/layout"
	"boards/internal/render"
	"boards/internal/secret"
	"boards/internal/storage"
)

// Config holds boards configuration.
type Config struct {
	Storage StorageConfig  `toml:"storage"`
	Canvas  CanvasConfig   `toml:"canvas"`
	Layout  layout.Config  `toml:"layout"`
	Backup  BackupConfig   `toml:"backup"`
	Import  ImportConfig   `toml:"import"`
	Export  render.Options `toml:"export"`
}

// StorageConfig selects the document backend.
type StorageConfig struct {
	Backend  string `toml:"backend"` // "sqlite", "postgres", "mysql", "mongo"
	DSN      string `toml:"dsn"`
	DataDir  string `toml:"data_dir"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	// PasswordSecret names a secret holding the password, read from
	// BOARDS_SECRET_<NAME> or the macOS Keychain when password is empty.
	PasswordSecret string `toml:"password_secret"`
	Database       string `toml:"database"`
	SSLMode        string `toml:"ssl_mode"`
}

// CanvasConfig tunes pointer interaction.
type CanvasConfig struct {
	MinZoom          float64 `toml:"min_zoom"`
	MaxZoom          float64 `toml:"max_zoom"`
	WheelSensitivity float64 `toml:"wheel_sensitivity"`
	SnapThreshold    float64 `toml:"snap_threshold"`
	MinGroupSize     float64 `toml:"min_group_size"`
}

// BackupConfig controls scheduled workspace snapshots.
type BackupConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"` // cron expression
	Dir      string `toml:"dir"`
	Keep     int    `toml:"keep"`
}

// ImportConfig controls the drop-folder importer.
type ImportConfig struct {
	Enabled  bool   `toml:"enabled"`
	WatchDir string `toml:"watch_dir"`
}

var backends = []string{"sqlite", "postgres", "mysql", "mongo"}

// Default returns the default configuration.
func Default() *Config {
	data := DataDir()
	return &Config{
		Storage: StorageConfig{Backend: "sqlite", DataDir: data},
		Canvas: CanvasConfig{
			MinZoom:          0.25,
			MaxZoom:          2.0,
			WheelSensitivity: 0.001,
			SnapThreshold:    0.5,
			MinGroupSize:     100,
		},
		Layout: layout.DefaultConfig(),
		Backup: BackupConfig{
			Enabled:  false,
			Schedule: "0 * * * *",
			Dir:      filepath.Join(data, "backups"),
			Keep:     24,
		},
		Import: ImportConfig{Enabled: false, WatchDir: filepath.Join(data, "import")},
		Export: render.DefaultOptions(),
	}
}

// DataDir returns the default directory for the database and backups.
func DataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, "boards")
}

// ConfigDir returns the boards config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "boards")
}

// Path returns the default config file location.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at the default path. A missing or broken
// file yields the defaults.
func Load() *Config {
	cfg, _ := LoadFile(Path())
	return cfg
}

// LoadFile reads path over the defaults. The returned config is always
// usable; the error reports a file that exists but could not be parsed.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, nil
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return Default(), err
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg *Config) error {
	return SaveFile(Path(), cfg)
}

func SaveFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(Path()); err == nil {
		return nil // already exists
	}
	return Save(Default())
}

// Normalize replaces invalid values with their defaults.
func (c *Config) Normalize() {
	d := Default()

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "mongodb" {
		c.Storage.Backend = "mongo"
	}
	if !lo.Contains(backends, c.Storage.Backend) {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = d.Storage.DataDir
	}

	if c.Canvas.MinZoom <= 0 || c.Canvas.MaxZoom <= 0 || c.Canvas.MinZoom > c.Canvas.MaxZoom {
		c.Canvas.MinZoom, c.Canvas.MaxZoom = d.Canvas.MinZoom, d.Canvas.MaxZoom
	}
	if c.Canvas.WheelSensitivity <= 0 {
		c.Canvas.WheelSensitivity = d.Canvas.WheelSensitivity
	}
	if c.Canvas.SnapThreshold < 0 {
		c.Canvas.SnapThreshold = d.Canvas.SnapThreshold
	}
	if c.Canvas.MinGroupSize <= 0 {
		c.Canvas.MinGroupSize = d.Canvas.MinGroupSize
	}

	if c.Layout.NodeWidth <= 0 || c.Layout.NodeHeight <= 0 {
		c.Layout.NodeWidth, c.Layout.NodeHeight = d.Layout.NodeWidth, d.Layout.NodeHeight
	}
	if c.Layout.HGap < 0 {
		c.Layout.HGap = d.Layout.HGap
	}
	if c.Layout.VGap < 0 {
		c.Layout.VGap = d.Layout.VGap
	}

	if _, err := cron.ParseStandard(c.Backup.Schedule); err != nil {
		c.Backup.Schedule = d.Backup.Schedule
	}
	if c.Backup.Keep <= 0 {
		c.Backup.Keep = d.Backup.Keep
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = filepath.Join(c.Storage.DataDir, "backups")
	}
	if c.Import.WatchDir == "" {
		c.Import.WatchDir = filepath.Join(c.Storage.DataDir, "import")
	}

	if c.Export.Scale <= 0 {
		c.Export.Scale = d.Export.Scale
	}
	if c.Export.Padding < 0 {
		c.Export.Padding = d.Export.Padding
	}
	if c.Export.Background == "" {
		c.Export.Background = d.Export.Background
	}
}

// ResolveSecrets fills the storage password from store when the config
// names a secret instead of holding the password.
func (c *Config) ResolveSecrets(store secret.Store) error {
	name := c.Storage.PasswordSecret
	if c.Storage.Password != "" || name == "" {
		return nil
	}
	v, err := store.Get(name)
	if err != nil {
		return fmt.Errorf("resolve storage password: %w", err)
	}
	if len(v) == 0 {
		return fmt.Errorf("resolve storage password: secret %q is not set", name)
	}
	c.Storage.Password = string(v)
	return nil
}

// StorageParams converts the storage section for storage.Open.
func (c *Config) StorageParams() storage.Params {
	s := c.Storage
	return storage.Params{
		Backend:  s.Backend,
		DSN:      s.DSN,
		DataDir:  s.DataDir,
		Host:     s.Host,
		Port:     s.Port,
		User:     s.User,
		Password: s.Password,
		Database: s.Database,
		SSLMode:  s.SSLMode,
	}
}

// CanvasOptions converts the canvas section into controller options.
func (c *Config) CanvasOptions() canvas.Options {
	opts := canvas.DefaultOptions()
	opts.Viewport = canvas.ViewportController{
		MinZoom:          c.Canvas.MinZoom,
		MaxZoom:          c.Canvas.MaxZoom,
		WheelSensitivity: c.Canvas.WheelSensitivity,
	}
	opts.DragThreshold = c.Canvas.SnapThreshold
	opts.MinGroupSize = c.Canvas.MinGroupSize
	return opts
}
