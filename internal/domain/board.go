package domain

import (
	"sort"
	"time"

	"boards/internal/geom"
)

// ElementType tags an Element as a note or a group.
type ElementType string

const (
	ElementNote  ElementType = "note"
	ElementGroup ElementType = "group"
)

// Default element sizes, in canvas units.
const (
	NoteWidth   = 150.0
	NoteHeight  = 100.0
	GroupWidth  = 400.0
	GroupHeight = 300.0
)

const (
	DefaultNoteColor  = "#fef08a"
	DefaultGroupColor = "#e2e8f0"
)

// Element is a single item on a board. Notes use Content and Votes,
// groups use Label; the unused fields stay zero.
type Element struct {
	ID      string      `json:"id"`
	Type    ElementType `json:"type"`
	X       float64     `json:"x"`
	Y       float64     `json:"y"`
	Width   float64     `json:"width"`
	Height  float64     `json:"height"`
	Content string      `json:"content,omitempty"`
	Label   string      `json:"label,omitempty"`
	Color   string      `json:"color"`
	ZIndex  int         `json:"zIndex"`
	Votes   int         `json:"votes,omitempty"`
}

// Rect returns the element's bounds in canvas space.
func (e Element) Rect() geom.Rect {
	return geom.Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}
}

// Position returns the element's top-left corner.
func (e Element) Position() geom.Point {
	return geom.Point{X: e.X, Y: e.Y}
}

func (e Element) IsNote() bool  { return e.Type == ElementNote }
func (e Element) IsGroup() bool { return e.Type == ElementGroup }

// DefaultSize returns the width and height a new element of type t gets.
func DefaultSize(t ElementType) (float64, float64) {
	if t == ElementGroup {
		return GroupWidth, GroupHeight
	}
	return NoteWidth, NoteHeight
}

// ElementPatch carries a partial element update. Nil fields are left as is.
type ElementPatch struct {
	X       *float64 `json:"x,omitempty"`
	Y       *float64 `json:"y,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	Content *string  `json:"content,omitempty"`
	Label   *string  `json:"label,omitempty"`
	Color   *string  `json:"color,omitempty"`
	ZIndex  *int     `json:"zIndex,omitempty"`
	Votes   *int     `json:"votes,omitempty"`
}

// Apply writes every set field of p onto e.
func (p ElementPatch) Apply(e *Element) {
	if p.X != nil {
		e.X = *p.X
	}
	if p.Y != nil {
		e.Y = *p.Y
	}
	if p.Width != nil {
		e.Width = *p.Width
	}
	if p.Height != nil {
		e.Height = *p.Height
	}
	if p.Content != nil {
		e.Content = *p.Content
	}
	if p.Label != nil {
		e.Label = *p.Label
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.ZIndex != nil {
		e.ZIndex = *p.ZIndex
	}
	if p.Votes != nil {
		e.Votes = *p.Votes
	}
}

// Move is one entry of a batched position update.
type Move struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// AddOptions tunes a newly created element.
type AddOptions struct {
	Content string  `json:"content,omitempty"`
	Label   string  `json:"label,omitempty"`
	Color   string  `json:"color,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
}

// Board is a sticky-note canvas.
type Board struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Elements  []Element     `json:"elements"`
	Viewport  geom.Viewport `json:"viewport"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Find returns the index of the element with the given id, or -1.
func (b *Board) Find(id string) int {
	for i := range b.Elements {
		if b.Elements[i].ID == id {
			return i
		}
	}
	return -1
}

// MaxZIndex returns the highest z-index among elements of type t.
func (b *Board) MaxZIndex(t ElementType) int {
	max := 0
	for _, e := range b.Elements {
		if e.Type == t && e.ZIndex > max {
			max = e.ZIndex
		}
	}
	return max
}

// PaintOrder returns a copy of elems sorted back-to-front: every group
// before every note, then by ZIndex within each variant.
func PaintOrder(elems []Element) []Element {
	out := make([]Element, len(elems))
	copy(out, elems)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := variantRank(out[i].Type), variantRank(out[j].Type)
		if ri != rj {
			return ri < rj
		}
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

func variantRank(t ElementType) int {
	if t == ElementGroup {
		return 0
	}
	return 1
}

type BoardStore interface {
	GetBoard(id string) (*Board, error)
	SaveBoard(b *Board) error
	DeleteBoard(id string) error
	ListBoards() ([]Board, error)
}
