package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"boards/internal/domain"
	"boards/internal/service"
	"boards/internal/storage"
	"boards/internal/ui"
)

func exportCmd() *cobra.Command {
	var pngPath, mdPath, kind string

	cmd := &cobra.Command{
		Use:   "export <boardID|mapID>",
		Short: "Export a board or map as PNG or Markdown",
		Long: "Looks the id up among boards, then site maps, then impact maps.\n" +
			"Pass --kind to skip the search.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pngPath == "" && mdPath == "" {
				return errors.New("export: pass --png or --md")
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			stores, err := openStores(ctx, cfg)
			if err != nil {
				return err
			}
			defer stores.Close()

			svc := service.NewExportService(stores.Boards, stores.Hierarchies, cfg.Layout, cfg.Export, quietEmitter{})
			target, err := findTarget(stores, args[0], domain.HierarchyKind(kind))
			if err != nil {
				return err
			}

			if pngPath != "" {
				if err := service.ToFile(pngPath, func(w io.Writer) error { return target.png(ctx, svc, w) }); err != nil {
					return err
				}
				fmt.Printf("  %s %s\n", ui.StatusIcon(true), pngPath)
			}
			if mdPath != "" {
				if err := service.ToFile(mdPath, func(w io.Writer) error { return target.markdown(svc, w) }); err != nil {
					return err
				}
				fmt.Printf("  %s %s\n", ui.StatusIcon(true), mdPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&pngPath, "png", "", "Write a PNG image to this path")
	cmd.Flags().StringVar(&mdPath, "md", "", "Write a Markdown outline to this path")
	cmd.Flags().StringVar(&kind, "kind", "", "board, sitemap or impactmap")
	return cmd
}

// exportTarget is a board (kind "") or a map.
type exportTarget struct {
	kind domain.HierarchyKind
	id   string
}

func (t exportTarget) png(ctx context.Context, svc *service.ExportService, w io.Writer) error {
	if t.kind == "" {
		return svc.BoardPNG(ctx, t.id, w, nil)
	}
	return svc.HierarchyPNG(ctx, t.kind, t.id, w, nil)
}

func (t exportTarget) markdown(svc *service.ExportService, w io.Writer) error {
	if t.kind == "" {
		return svc.BoardMarkdown(t.id, w)
	}
	return svc.HierarchyMarkdown(t.kind, t.id, w)
}

func findTarget(stores *storage.Stores, id string, kind domain.HierarchyKind) (exportTarget, error) {
	switch kind {
	case "board":
		return exportTarget{id: id}, nil
	case domain.KindSiteMap, domain.KindImpactMap:
		return exportTarget{kind: kind, id: id}, nil
	case "":
	default:
		return exportTarget{}, fmt.Errorf("export: unknown kind %q", kind)
	}

	if _, err := stores.Boards.GetBoard(id); err == nil {
		return exportTarget{id: id}, nil
	} else if !storage.IsNotFound(err) {
		return exportTarget{}, err
	}
	for _, k := range []domain.HierarchyKind{domain.KindSiteMap, domain.KindImpactMap} {
		_, err := stores.Hierarchies.GetHierarchy(k, id)
		if err == nil {
			return exportTarget{kind: k, id: id}, nil
		}
		if !storage.IsNotFound(err) {
			return exportTarget{}, err
		}
	}
	return exportTarget{}, fmt.Errorf("export: no board or map with id %s", id)
}
