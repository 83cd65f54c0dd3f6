package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"boards/internal/domain"
	"boards/internal/service"
	"boards/internal/ui"
)

func layoutCmd() *cobra.Command {
	var horizontal, asJSON bool

	cmd := &cobra.Command{
		Use:   "layout <file.json>",
		Short: "Lay out a site map or impact map and print positions and connectors",
		Long: "Reads a map document or a bare JSON array of nodes and prints where\n" +
			"each node lands and the SVG path of every connector. Impact maps are\n" +
			"laid out left to right; use --horizontal to force it for a node list.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			nodes, kind, err := parseNodes(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			res := service.LayoutNodes(nodes, cfg.Layout, horizontal || kind == domain.KindImpactMap)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printLayout(nodes, res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&horizontal, "horizontal", false, "Grow the tree to the right")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the layout as JSON")
	return cmd
}

// parseNodes accepts either a map document with a "nodes" field or a bare
// array of nodes. The kind is empty for a bare array.
func parseNodes(data []byte) ([]domain.HierarchicalNode, domain.HierarchyKind, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var nodes []domain.HierarchicalNode
		if err := json.Unmarshal(data, &nodes); err != nil {
			return nil, "", err
		}
		return nodes, "", nil
	}
	var h domain.Hierarchy
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, "", err
	}
	return h.Nodes, h.Kind, nil
}

func printLayout(nodes []domain.HierarchicalNode, res *service.LayoutResult) {
	dir := "top-down"
	if res.Horizontal {
		dir = "left-to-right"
	}
	ui.Header(fmt.Sprintf("layout · %d nodes · %s", len(nodes), dir))

	titles := make(map[string]string, len(nodes))
	for _, n := range nodes {
		titles[n.ID] = n.Title
	}

	ids := make([]string, 0, len(res.Positions))
	for id := range res.Positions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := res.Positions[ids[i]], res.Positions[ids[j]]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		p := res.Positions[id]
		rows = append(rows, []string{id, titles[id], fmtCoord(p.X), fmtCoord(p.Y)})
	}
	ui.Table([]string{"ID", "Title", "X", "Y"}, rows)

	if len(res.Edges) > 0 {
		fmt.Println()
		ui.Info.Println("  Connectors")
		for _, e := range res.Edges {
			fmt.Printf("  %s → %s  %s\n", e.ParentID, e.ChildID, ui.Subtle.Sprint(e.Path))
		}
	}
	fmt.Printf("\n  bounds %s×%s at (%s, %s)\n",
		fmtCoord(res.Bounds.Width), fmtCoord(res.Bounds.Height), fmtCoord(res.Bounds.X), fmtCoord(res.Bounds.Y))
}

func fmtCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
