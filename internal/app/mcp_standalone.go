package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"boards/internal/config"
	mcpserver "boards/internal/mcp"
	"boards/internal/secret"
	"boards/internal/storage"
)

// noopEmitter is a no-op EventEmitter used in MCP-only mode (no Wails frontend).
type noopEmitter struct{}

func (noopEmitter) Emit(_ context.Context, _ string, _ any) {}

// ServeMCP runs the app as a standalone MCP server on stdin/stdout with no GUI.
// It loads the config file and runs the MCP server until interrupted.
func ServeMCP() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := RunMCP(ctx, config.Load()); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}

// RunMCP opens the configured store and serves MCP over stdio. Approvals
// are written to the store, where a running desktop app picks them up.
func RunMCP(ctx context.Context, cfg *config.Config) error {
	if err := cfg.ResolveSecrets(secret.Default()); err != nil {
		return err
	}
	docs, err := storage.Open(ctx, cfg.StorageParams())
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	stores := storage.NewStores(docs)
	defer stores.Close()

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:        noopEmitter{},
		Stores:         stores,
		Layout:         cfg.Layout,
		Render:         cfg.Export,
		StoreApprovals: true,
	})

	log.Printf("[MCP] Starting standalone stdio server (%s store)...", cfg.Storage.Backend)
	return mcpSrv.ServeStdio()
}
