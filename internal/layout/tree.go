// Package layout positions hierarchical nodes and derives the connector
// curves between them. Everything here is a pure function of its input
// except RemeasureScheduler.
package layout

import (
	"boards/internal/domain"
	"boards/internal/geom"
)

// Config holds node sizes and spacing, in canvas units.
type Config struct {
	NodeWidth  float64 `json:"nodeWidth" toml:"node_width"`
	NodeHeight float64 `json:"nodeHeight" toml:"node_height"`
	HGap       float64 `json:"hGap" toml:"h_gap"`
	VGap       float64 `json:"vGap" toml:"v_gap"`
	OriginX    float64 `json:"originX" toml:"origin_x"`
	OriginY    float64 `json:"originY" toml:"origin_y"`
}

// DefaultConfig returns the standard node size and gaps.
func DefaultConfig() Config {
	return Config{
		NodeWidth:  200,
		NodeHeight: 80,
		HGap:       60,
		VGap:       80,
		OriginX:    50,
		OriginY:    0,
	}
}

// Positions maps node ids to top-left corners in canvas space.
type Positions map[string]geom.Point

// Rect returns the box of node id under cfg's node size.
func (p Positions) Rect(id string, cfg Config) (geom.Rect, bool) {
	pt, ok := p[id]
	if !ok {
		return geom.Rect{}, false
	}
	return geom.Rect{X: pt.X, Y: pt.Y, Width: cfg.NodeWidth, Height: cfg.NodeHeight}, true
}

// Bounds returns the rectangle covering every positioned node.
func (p Positions) Bounds(cfg Config) (geom.Rect, bool) {
	rects := make([]geom.Rect, 0, len(p))
	for id := range p {
		r, _ := p.Rect(id, cfg)
		rects = append(rects, r)
	}
	return geom.Union(rects...)
}

// Tree lays a forest out top-down. Leaves take the next free column,
// parents sit at the midpoint of their first and last child, and every
// level is NodeHeight+VGap below the previous one. Roots are placed left
// to right in Order, each starting where the previous subtree ended.
func Tree(nodes []domain.HierarchicalNode, cfg Config) Positions {
	out := make(Positions, len(nodes))
	walk(nodes, cfg.OriginX, cfg.NodeWidth+cfg.HGap, func(id string, slot float64, depth int) {
		out[id] = geom.Point{X: slot, Y: cfg.OriginY + float64(depth)*(cfg.NodeHeight+cfg.VGap)}
	})
	return out
}

// TreeHorizontal is Tree with the axes swapped: depth grows to the right
// and siblings stack downwards. Impact maps read this way.
func TreeHorizontal(nodes []domain.HierarchicalNode, cfg Config) Positions {
	out := make(Positions, len(nodes))
	walk(nodes, cfg.OriginY, cfg.NodeHeight+cfg.VGap, func(id string, slot float64, depth int) {
		out[id] = geom.Point{X: cfg.OriginX + float64(depth)*(cfg.NodeWidth+cfg.HGap), Y: slot}
	})
	return out
}

// walk runs the post-order placement along one axis. place receives each
// node's position on the breadth axis and its depth.
func walk(nodes []domain.HierarchicalNode, origin, step float64, place func(id string, slot float64, depth int)) {
	byParent := childIndex(nodes)
	visited := make(map[string]bool, len(nodes))

	var layout func(id string, depth int, left float64) (next, slot float64)
	layout = func(id string, depth int, left float64) (float64, float64) {
		visited[id] = true
		var kids []domain.HierarchicalNode
		for _, c := range byParent[id] {
			if !visited[c.ID] {
				kids = append(kids, c)
			}
		}
		if len(kids) == 0 {
			place(id, left, depth)
			return left + step, left
		}
		next := left
		var first, last float64
		for i, c := range kids {
			var s float64
			next, s = layout(c.ID, depth+1, next)
			if i == 0 {
				first = s
			}
			last = s
		}
		slot := (first + last) / 2
		place(id, slot, depth)
		return next, slot
	}

	left := origin
	for _, r := range Roots(nodes) {
		if visited[r.ID] {
			continue
		}
		left, _ = layout(r.ID, 0, left)
	}
}
