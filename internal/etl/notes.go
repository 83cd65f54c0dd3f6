package etl

import (
	"context"
	"fmt"
)

// ── Notes ──────────────────────────────────────────────────
// The pipeline's only destination: sticky notes for a board.

// Mapping names the record fields that feed each note property. Only
// Content is required.
type Mapping struct {
	Content string `json:"content"`
	Group   string `json:"group,omitempty"`
	Color   string `json:"color,omitempty"`
	Votes   string `json:"votes,omitempty"`
}

// NoteDraft is a note waiting to be placed on a board.
type NoteDraft struct {
	Content string `json:"content"`
	Group   string `json:"group,omitempty"`
	Color   string `json:"color,omitempty"`
	Votes   int    `json:"votes,omitempty"`
}

// MaxNotes caps one import so a mis-picked file can't flood a board.
const MaxNotes = 500

// Collect reads src through the transforms and maps each surviving record
// to a note. Records with no content are skipped.
func Collect(ctx context.Context, src Source, cfg SourceConfig, m Mapping, transforms ...Transformer) ([]NoteDraft, error) {
	if m.Content == "" {
		return nil, fmt.Errorf("collect notes: no content field")
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records, errs := src.Read(ctx, cfg)
	var notes []NoteDraft
	for rec := range records {
		keep := true
		for _, t := range transforms {
			if rec, keep = t.Transform(rec); !keep {
				break
			}
		}
		if !keep {
			continue
		}
		n := m.note(rec)
		if n.Content == "" {
			continue
		}
		if len(notes) == MaxNotes {
			return nil, fmt.Errorf("collect notes: more than %d rows", MaxNotes)
		}
		notes = append(notes, n)
	}
	if err := <-errs; err != nil {
		return nil, fmt.Errorf("collect notes: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return notes, nil
}

func (m Mapping) note(r Record) NoteDraft {
	n := NoteDraft{Content: r.String(m.Content)}
	if m.Group != "" {
		n.Group = r.String(m.Group)
	}
	if m.Color != "" {
		n.Color = r.String(m.Color)
	}
	if m.Votes != "" {
		n.Votes = max(toInt(r.Data[m.Votes]), 0)
	}
	return n
}
