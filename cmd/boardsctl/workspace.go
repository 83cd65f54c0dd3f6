package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"boards/internal/service"
	"boards/internal/ui"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <bundle.json>",
		Short: "Import a workspace bundle, replacing documents with the same id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			stores, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			bundle, n, err := service.ImportBundle(ctx, stores, quietEmitter{}, data)
			if err != nil {
				return err
			}
			fmt.Printf("  %s imported %d documents from %s\n", ui.StatusIcon(true), n, filepath.Base(args[0]))
			fmt.Printf("  %s\n", ui.Subtle.Sprintf("%d boards · %d site maps · %d impact maps · %d personas · %d journey maps",
				len(bundle.Boards), len(bundle.SiteMaps), len(bundle.ImpactMaps), len(bundle.Personas), len(bundle.JourneyMaps)))
			return nil
		},
	}
}

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a workspace backup now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := newBackupService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			path, err := svc.RunNow(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("  %s %s\n", ui.StatusIcon(true), path)
			return nil
		},
	}

	cmd.AddCommand(backupListCmd(), backupRestoreCmd())
	return cmd
}

func backupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List backups, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := newBackupService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			backups, err := svc.List()
			if err != nil {
				return err
			}
			if len(backups) == 0 {
				fmt.Println("  No backups yet")
				return nil
			}
			rows := make([][]string, len(backups))
			for i, b := range backups {
				rows[i] = []string{b.Name, b.TakenAt.Format("2006-01-02 15:04:05"), strconv.FormatInt(b.Size, 10)}
			}
			ui.Table([]string{"Name", "Taken", "Bytes"}, rows)
			return nil
		},
	}
}

func backupRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore documents from a backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := newBackupService(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := svc.Restore(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("  %s restored %d documents\n", ui.StatusIcon(true), n)
			return nil
		},
	}
}

func newBackupService(cmd *cobra.Command) (*service.BackupService, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	stores, err := openStores(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return service.NewBackupService(stores, cfg.Backup, quietEmitter{}), func() { stores.Close() }, nil
}
