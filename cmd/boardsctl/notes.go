package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"boards/internal/etl"
	_ "boards/internal/etl/sources"
	"boards/internal/service"
	"boards/internal/ui"
)

func notesCmd() *cobra.Command {
	var m etl.Mapping
	var dataPath string
	var noHeader, columns bool

	cmd := &cobra.Command{
		Use:   "notes <boardID> <file.csv|file.json>",
		Short: "Add sticky notes to a board from a CSV or JSON file",
		Long: "Creates one note per row. Rows sharing a --group value are placed\n" +
			"together inside a group. Use --columns to list the file's columns.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			boardID, path := args[0], args[1]
			src, err := etl.SourceForFile(path)
			if err != nil {
				return err
			}
			srcCfg := etl.SourceConfig{"filePath": path}
			if dataPath != "" {
				srcCfg["dataPath"] = dataPath
			}
			if noHeader {
				srcCfg["hasHeader"] = "false"
			}
			ctx := cmd.Context()

			if columns {
				schema, err := src.Discover(ctx, srcCfg)
				if err != nil {
					return err
				}
				rows := make([][]string, len(schema.Fields))
				for i, f := range schema.Fields {
					rows[i] = []string{f.Name, f.Type}
				}
				ui.Table([]string{"Column", "Type"}, rows)
				return nil
			}

			drafts, err := etl.Collect(ctx, src, srcCfg, m,
				&etl.NonEmptyTransform{Field: m.Content},
				&etl.DedupeTransform{Field: m.Content},
			)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			stores, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			added, err := service.NewBoardService(stores.Boards, quietEmitter{}).ImportNotes(ctx, boardID, drafts)
			if err != nil {
				return err
			}
			fmt.Printf("  %s %d notes, %d groups\n", ui.StatusIcon(true), len(drafts), len(added)-len(drafts))
			return nil
		},
	}

	cmd.Flags().StringVar(&m.Content, "content", "content", "Column holding the note text")
	cmd.Flags().StringVar(&m.Group, "group", "", "Column whose values become groups")
	cmd.Flags().StringVar(&m.Color, "color", "", "Column holding a note color")
	cmd.Flags().StringVar(&m.Votes, "votes", "", "Column holding a vote count")
	cmd.Flags().StringVar(&dataPath, "data-path", "", "Dot path to the array inside a JSON file")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "The CSV has no header row (columns are col_1, col_2, ...)")
	cmd.Flags().BoolVar(&columns, "columns", false, "List the file's columns and exit")
	return cmd
}
