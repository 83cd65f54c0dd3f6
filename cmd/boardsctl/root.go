package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"boards/internal/config"
	"boards/internal/secret"
	"boards/internal/storage"
	"boards/internal/ui"
)

var version = "0.3.0"

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "boardsctl",
	Short: "boardsctl: boards workspace tools",
	Long: ui.Brand.Sprint("boardsctl") + ": work with boards, site maps and impact maps\n" +
		ui.Subtle.Sprint("Lay out maps, export, import, back up and serve MCP"),
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("boardsctl {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file (default "+config.Path()+")")

	rootCmd.AddCommand(
		layoutCmd(),
		exportCmd(),
		importCmd(),
		notesCmd(),
		backupCmd(),
		mcpCmd(),
		configCmd(),
	)
}

// Execute runs the root command and prints any error.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		ui.Bad.Printf("boardsctl: %v\n", err)
	}
	return err
}

func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := cfg.ResolveSecrets(secret.Default()); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStores(ctx context.Context, cfg *config.Config) (*storage.Stores, error) {
	docs, err := storage.Open(ctx, cfg.StorageParams())
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	return storage.NewStores(docs), nil
}

// quietEmitter drops service events; the CLI reports results itself.
type quietEmitter struct{}

func (quietEmitter) Emit(context.Context, string, any) {}
