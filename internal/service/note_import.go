package service

import (
	"context"
	"fmt"
	"math"

	"boards/internal/domain"
	"boards/internal/etl"
)

// ── Note import ──────────────────────────────────────────
// Turns rows from a spreadsheet or JSON file into sticky notes. Rows that
// share a group value land inside one group, laid out on a grid; rows
// without one form a loose grid after the groups.

const (
	importGap        = 20.0
	importHeader     = 40.0 // room for the group label
	importClusterGap = 60.0
)

// ImportNotes places drafts to the right of everything on the board in a
// single write and returns the created elements, groups first.
func (s *BoardService) ImportNotes(ctx context.Context, boardID string, drafts []etl.NoteDraft) ([]domain.Element, error) {
	if len(drafts) == 0 {
		return nil, nil
	}
	var added []domain.Element
	err := s.mutate(ctx, boardID, func(b *domain.Board) bool {
		added = importNotes(b, drafts)
		return len(added) > 0
	})
	if err != nil {
		return nil, fmt.Errorf("import notes: %w", err)
	}
	return added, nil
}

type noteCluster struct {
	label string
	notes []etl.NoteDraft
}

// clusterDrafts groups drafts by label in order of first appearance, with
// ungrouped drafts last.
func clusterDrafts(drafts []etl.NoteDraft) []noteCluster {
	var clusters []noteCluster
	index := map[string]int{}
	var loose []etl.NoteDraft
	for _, d := range drafts {
		if d.Group == "" {
			loose = append(loose, d)
			continue
		}
		i, ok := index[d.Group]
		if !ok {
			i = len(clusters)
			index[d.Group] = i
			clusters = append(clusters, noteCluster{label: d.Group})
		}
		clusters[i].notes = append(clusters[i].notes, d)
	}
	if len(loose) > 0 {
		clusters = append(clusters, noteCluster{notes: loose})
	}
	return clusters
}

func importNotes(b *domain.Board, drafts []etl.NoteDraft) []domain.Element {
	x, y := importOrigin(b)
	var added []domain.Element

	for _, c := range clusterDrafts(drafts) {
		cols := int(math.Ceil(math.Sqrt(float64(len(c.notes)))))
		rows := (len(c.notes) + cols - 1) / cols
		cellW := domain.NoteWidth + importGap
		cellH := domain.NoteHeight + importGap

		noteX, noteY := x, y
		width := float64(cols)*cellW - importGap
		if c.label != "" {
			g, ok := addElement(b, domain.ElementGroup, x, y, domain.AddOptions{
				Label:  c.label,
				Width:  importGap + float64(cols)*cellW,
				Height: importHeader + float64(rows)*cellH,
			})
			if ok {
				added = append(added, g)
			}
			noteX, noteY = x+importGap, y+importHeader
			width = g.Width
		}

		for i, d := range c.notes {
			col, row := i%cols, i/cols
			n, ok := addElement(b, domain.ElementNote, noteX+float64(col)*cellW, noteY+float64(row)*cellH, domain.AddOptions{
				Content: d.Content,
				Color:   d.Color,
			})
			if !ok {
				continue
			}
			if d.Votes > 0 {
				b.Elements[len(b.Elements)-1].Votes = d.Votes
				n.Votes = d.Votes
			}
			added = append(added, n)
		}
		x += width + importClusterGap
	}
	return added
}

// importOrigin is the top-right corner of the board's content, one
// cluster gap further right. An empty board starts at the origin.
func importOrigin(b *domain.Board) (float64, float64) {
	if len(b.Elements) == 0 {
		return 0, 0
	}
	right, top := math.Inf(-1), math.Inf(1)
	for _, e := range b.Elements {
		right = max(right, e.X+e.Width)
		top = min(top, e.Y)
	}
	return right + importClusterGap, top
}
