package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"boards/internal/config"
	"boards/internal/secret"
	"boards/internal/ui"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or show the configuration file",
	}
	cmd.AddCommand(configInitCmd(), configShowCmd(), configSetPasswordCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgPath
			if path == "" {
				path = config.Path()
			}
			if _, err := os.Stat(path); err == nil && !force {
				ui.Warn.Printf("  %s already exists (use --force to overwrite)\n", path)
				return nil
			}
			if err := config.SaveFile(path, config.Default()); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Printf("  %s %s\n", ui.StatusIcon(true), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return toml.NewEncoder(os.Stdout).Encode(cfg)
		},
	}
}

func configSetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-password <secret-name>",
		Short: "Store the storage backend password in the keychain",
		Long: "Reads the password from stdin and stores it under <secret-name>.\n" +
			"Set storage.password_secret to the same name to use it.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			pw := strings.TrimRight(line, "\r\n")
			if pw == "" {
				return fmt.Errorf("read password: empty")
			}
			if err := secret.Default().Set(args[0], []byte(pw)); err != nil {
				return fmt.Errorf("store password: %w (export %s instead)", err, secret.EnvKey(args[0]))
			}
			fmt.Printf("  %s stored %s\n", ui.StatusIcon(true), args[0])
			fmt.Println(ui.Subtle.Sprintf("  set password_secret = %q under [storage]", args[0]))
			return nil
		},
	}
}
