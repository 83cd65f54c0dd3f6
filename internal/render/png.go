// Package render draws boards and hierarchy maps to PNG and writes
// Markdown outlines of them.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"boards/internal/domain"
	"boards/internal/geom"
	"boards/internal/layout"
)

// Options controls the exported bitmap.
type Options struct {
	Scale      float64 `json:"scale" toml:"scale"`
	Padding    float64 `json:"padding" toml:"padding"`
	Background string  `json:"background" toml:"background"`
}

// DefaultOptions returns the export scale, padding and background.
func DefaultOptions() Options {
	return Options{Scale: 2, Padding: 40, Background: "#ffffff"}
}

// MaxDimension caps either side of an exported image in pixels. Larger
// exports are scaled down to fit.
const MaxDimension = 8192

const (
	borderColor    = "#94a3b8"
	textColor      = "#1e293b"
	connectorColor = "#64748b"
	voteColor      = "#2563eb"
)

var (
	fontOnce   sync.Once
	fontSource *text.FontSource
	fontErr    error
)

func loadFont() (*text.FontSource, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewFontSource(goregular.TTF)
	})
	return fontSource, fontErr
}

// bitmap maps canvas-space coordinates onto the bitmap.
type bitmap struct {
	dc     *gg.Context
	fonts  *text.FontSource
	origin geom.Point
	scale  float64
}

func newBitmap(bounds geom.Rect, opts Options) (*bitmap, error) {
	fonts, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	w := bounds.Width + 2*opts.Padding
	h := bounds.Height + 2*opts.Padding
	scale := opts.Scale
	if biggest := math.Max(w, h) * scale; biggest > MaxDimension {
		scale = MaxDimension / math.Max(w, h)
	}

	dc := gg.NewContext(max(int(math.Ceil(w*scale)), 1), max(int(math.Ceil(h*scale)), 1))
	bg := opts.Background
	if bg == "" {
		bg = "#ffffff"
	}
	dc.ClearWithColor(gg.Hex(bg))
	return &bitmap{
		dc:     dc,
		fonts:  fonts,
		origin: geom.Point{X: bounds.X - opts.Padding, Y: bounds.Y - opts.Padding},
		scale:  scale,
	}, nil
}

func (c *bitmap) pt(p geom.Point) (float64, float64) {
	return (p.X - c.origin.X) * c.scale, (p.Y - c.origin.Y) * c.scale
}

func (c *bitmap) box(r geom.Rect, radius float64, fill string) {
	x, y := c.pt(r.Position())
	c.dc.SetHexColor(fill)
	c.dc.DrawRoundedRectangle(x, y, r.Width*c.scale, r.Height*c.scale, radius*c.scale)
	c.dc.Fill()
	c.dc.SetHexColor(borderColor)
	c.dc.SetLineWidth(1.5 * c.scale)
	c.dc.DrawRoundedRectangle(x, y, r.Width*c.scale, r.Height*c.scale, radius*c.scale)
	c.dc.Stroke()
}

// text draws s wrapped to r, clipping lines that would fall below it.
func (c *bitmap) text(s string, r geom.Rect, size float64) {
	if strings.TrimSpace(s) == "" {
		return
	}
	face := c.fonts.Face(size * c.scale)
	c.dc.SetFont(face)
	c.dc.SetHexColor(textColor)

	x, y := c.pt(r.Position())
	lineH := size * 1.3 * c.scale
	maxW := r.Width * c.scale
	baseline := y + size*c.scale
	bottom := y + r.Height*c.scale
	measure := func(t string) float64 {
		w, _ := c.dc.MeasureString(t)
		return w
	}
	for _, line := range wrap(s, maxW, measure) {
		if baseline > bottom {
			break
		}
		c.dc.DrawString(line, x, baseline)
		baseline += lineH
	}
}

func (c *bitmap) connector(k layout.Connector) {
	sx, sy := c.pt(k.Start)
	c1x, c1y := c.pt(k.C1)
	c2x, c2y := c.pt(k.C2)
	ex, ey := c.pt(k.End)
	c.dc.SetHexColor(connectorColor)
	c.dc.SetLineWidth(2 * c.scale)
	c.dc.MoveTo(sx, sy)
	c.dc.CubicTo(c1x, c1y, c2x, c2y, ex, ey)
	c.dc.Stroke()
}

func (c *bitmap) badge(center geom.Point, label string) {
	x, y := c.pt(center)
	c.dc.SetHexColor(voteColor)
	c.dc.DrawCircle(x, y, 10*c.scale)
	c.dc.Fill()
	c.dc.SetFont(c.fonts.Face(11 * c.scale))
	c.dc.SetHexColor("#ffffff")
	c.dc.DrawStringAnchored(label, x, y, 0.5, 0.35)
}

func (c *bitmap) encode(w io.Writer) error {
	defer c.dc.Close()
	if err := c.dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// wrap breaks s into lines no wider than maxW. Words wider than maxW get
// a line of their own.
func wrap(s string, maxW float64, measure func(string) float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if measure(line+" "+w) > maxW {
				lines = append(lines, line)
				line = w
				continue
			}
			line += " " + w
		}
		lines = append(lines, line)
	}
	return lines
}

// ─────────────────────────────────────────────────────────────
// Boards
// ─────────────────────────────────────────────────────────────

// emptyBounds is the canvas area used for a board or map with nothing on it.
var emptyBounds = geom.Rect{Width: 200, Height: 120}

// BoardPNG draws every element of b back to front.
func BoardPNG(w io.Writer, b *domain.Board, opts Options) error {
	rects := make([]geom.Rect, 0, len(b.Elements))
	for _, e := range b.Elements {
		if e.Rect().Valid() {
			rects = append(rects, e.Rect())
		}
	}
	bounds, ok := geom.Union(rects...)
	if !ok {
		bounds = emptyBounds
	}

	c, err := newBitmap(bounds, opts)
	if err != nil {
		return err
	}
	for _, e := range domain.PaintOrder(b.Elements) {
		if !e.Rect().Valid() {
			continue
		}
		r := e.Rect()
		if e.IsGroup() {
			c.box(r, 8, e.Color)
			c.text(e.Label, geom.Rect{X: r.X + 12, Y: r.Y + 8, Width: r.Width - 24, Height: 24}, 14)
			continue
		}
		c.box(r, 4, e.Color)
		c.text(e.Content, geom.Rect{X: r.X + 10, Y: r.Y + 10, Width: r.Width - 20, Height: r.Height - 20}, 13)
		if e.Votes > 0 {
			c.badge(geom.Point{X: r.Right() - 4, Y: r.Y + 4}, strconv.Itoa(e.Votes))
		}
	}
	return c.encode(w)
}

// ─────────────────────────────────────────────────────────────
// Hierarchies
// ─────────────────────────────────────────────────────────────

var nodeColors = map[domain.NodeType]string{
	domain.NodeScreen:      "#e0f2fe",
	domain.NodeActor:       "#fde68a",
	domain.NodeImpact:      "#bbf7d0",
	domain.NodeDeliverable: "#ddd6fe",
}

// HierarchyPNG lays out h with cfg and draws its nodes and connectors.
// Impact maps are drawn left to right, site maps top down.
func HierarchyPNG(w io.Writer, h *domain.Hierarchy, cfg layout.Config, opts Options) error {
	horizontal := h.Kind == domain.KindImpactMap
	place := layout.Tree
	if horizontal {
		place = layout.TreeHorizontal
	}
	pos := place(h.Nodes, cfg)
	bounds, ok := pos.Bounds(cfg)
	if !ok {
		bounds = emptyBounds
	}

	c, err := newBitmap(bounds, opts)
	if err != nil {
		return err
	}
	for _, e := range layout.Edges(h.Nodes, layout.MeasurePositions(pos, cfg), horizontal) {
		c.connector(e.Connector)
	}
	for _, n := range h.Nodes {
		r, ok := pos.Rect(n.ID, cfg)
		if !ok {
			continue
		}
		fill := n.Color
		if fill == "" {
			fill = nodeColors[n.Type]
		}
		if fill == "" {
			fill = "#f1f5f9"
		}
		c.box(r, 6, fill)
		c.text(n.Title, geom.Rect{X: r.X + 10, Y: r.Y + 10, Width: r.Width - 20, Height: r.Height - 20}, 14)
	}
	return c.encode(w)
}
