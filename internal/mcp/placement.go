package mcpserver

import (
	"math"

	"boards/internal/domain"
	"boards/internal/geom"
)

const (
	GridSize = 20.0
	Gap      = 20.0 // free space kept around existing elements
	MaxRowW  = 1600.0
)

// Placer picks positions for elements an agent adds without coordinates,
// so they land on free canvas instead of on top of existing work.
type Placer struct {
	gridSize float64
	gap      float64
	maxRowW  float64
}

// NewPlacer creates a Placer on the default grid.
func NewPlacer() *Placer {
	return &Placer{gridSize: GridSize, gap: Gap, maxRowW: MaxRowW}
}

func (p *Placer) snap(v float64) float64 {
	return math.Round(v/p.gridSize) * p.gridSize
}

func (p *Placer) free(candidate geom.Rect, occupied []geom.Rect) bool {
	for _, occ := range occupied {
		padded := geom.Rect{X: occ.X - p.gap, Y: occ.Y - p.gap, Width: occ.Width + p.gap*2, Height: occ.Height + p.gap*2}
		// touching the padded box is fine
		if candidate.X < padded.Right() && candidate.Right() > padded.X &&
			candidate.Y < padded.Bottom() && candidate.Bottom() > padded.Y {
			return false
		}
	}
	return true
}

// NextPosition finds the first free grid position, scanning rows top to
// bottom, for an element of size (w, h). Every element is an obstacle.
func (p *Placer) NextPosition(existing []domain.Element, w, h float64) (float64, float64) {
	if len(existing) == 0 {
		return 0, 0
	}
	occupied := make([]geom.Rect, len(existing))
	for i, e := range existing {
		occupied[i] = e.Rect()
	}

	for y := 0.0; y < 100000; y += p.gridSize {
		for x := 0.0; x+w <= p.maxRowW; x += p.gridSize {
			c := geom.Rect{X: p.snap(x), Y: p.snap(y), Width: w, Height: h}
			if p.free(c, occupied) {
				return c.X, c.Y
			}
		}
	}

	maxY := 0.0
	for _, r := range occupied {
		maxY = math.Max(maxY, r.Bottom())
	}
	return 0, p.snap(maxY + p.gap)
}

// NextPositionIn finds a free spot for a note of size (w, h) fully inside
// group, avoiding the notes already there. It reports false when the
// group is full.
func (p *Placer) NextPositionIn(group domain.Element, notes []domain.Element, w, h float64) (float64, float64, bool) {
	area := group.Rect()
	occupied := make([]geom.Rect, len(notes))
	for i, n := range notes {
		occupied[i] = n.Rect()
	}
	for y := area.Y + p.gap; y+h <= area.Bottom(); y += p.gridSize {
		for x := area.X + p.gap; x+w <= area.Right(); x += p.gridSize {
			c := geom.Rect{X: x, Y: y, Width: w, Height: h}
			if p.free(c, occupied) {
				return x, y, true
			}
		}
	}
	return 0, 0, false
}
