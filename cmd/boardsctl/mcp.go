package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"boards/internal/app"
)

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve board and map tools over MCP on stdin/stdout",
		Long: "Runs an MCP server for agents and editors. Destructive tools wait\n" +
			"for approval in a running boards window sharing the same store.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return app.RunMCP(ctx, cfg)
		},
	}
}
