package render

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"boards/internal/canvas"
	"boards/internal/domain"
	"boards/internal/layout"
)

// BoardMarkdown writes b as an outline: one section per group listing the
// notes inside it, then the notes that sit in no group. A note inside
// overlapping groups is listed under the top-most one.
func BoardMarkdown(w io.Writer, b *domain.Board) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", title(b.Name, "Untitled board"))

	owned := make(map[string][]domain.Element)
	var loose []domain.Element
	for _, e := range b.Elements {
		if !e.IsNote() {
			continue
		}
		if g, ok := canvas.GroupOf(e, b.Elements); ok {
			owned[g.ID] = append(owned[g.ID], e)
		} else {
			loose = append(loose, e)
		}
	}

	for _, g := range domain.PaintOrder(b.Elements) {
		if !g.IsGroup() {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", title(g.Label, "Group"))
		if len(owned[g.ID]) == 0 {
			sb.WriteString("_No notes_\n")
		}
		for _, n := range readingOrder(owned[g.ID]) {
			writeNote(&sb, n)
		}
	}

	if len(loose) > 0 {
		sb.WriteString("\n## Ungrouped\n\n")
		for _, n := range readingOrder(loose) {
			writeNote(&sb, n)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func writeNote(sb *strings.Builder, n domain.Element) {
	content := strings.Join(strings.Fields(n.Content), " ")
	if content == "" {
		content = "_(empty)_"
	}
	if n.Votes > 0 {
		fmt.Fprintf(sb, "- %s (+%d)\n", content, n.Votes)
		return
	}
	fmt.Fprintf(sb, "- %s\n", content)
}

// readingOrder sorts notes top to bottom, then left to right.
func readingOrder(notes []domain.Element) []domain.Element {
	out := append([]domain.Element(nil), notes...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// HierarchyMarkdown writes h as a nested bullet list in sibling order.
func HierarchyMarkdown(w io.Writer, h *domain.Hierarchy) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", title(h.Name, "Untitled map"))
	if h.Kind == domain.KindImpactMap && h.Goal != "" {
		fmt.Fprintf(&sb, "\n**Goal:** %s\n", h.Goal)
	}
	sb.WriteString("\n")

	seen := make(map[string]bool)
	var walk func(n domain.HierarchicalNode, depth int)
	walk = func(n domain.HierarchicalNode, depth int) {
		if seen[n.ID] {
			return
		}
		seen[n.ID] = true
		fmt.Fprintf(&sb, "%s- %s", strings.Repeat("  ", depth), title(n.Title, "Untitled"))
		if h.Kind == domain.KindImpactMap {
			fmt.Fprintf(&sb, " _(%s)_", n.Type)
		}
		if n.URL != "" {
			fmt.Fprintf(&sb, " `%s`", n.URL)
		}
		sb.WriteString("\n")
		for _, c := range layout.Children(h.Nodes, n.ID) {
			walk(c, depth+1)
		}
	}
	for _, r := range layout.Roots(h.Nodes) {
		walk(r, 0)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func title(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}
