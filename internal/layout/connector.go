package layout

import (
	"strconv"
	"strings"

	"boards/internal/domain"
	"boards/internal/geom"
)

// Connector is a cubic bezier from Start to End.
type Connector struct {
	Start geom.Point `json:"start"`
	C1    geom.Point `json:"c1"`
	C2    geom.Point `json:"c2"`
	End   geom.Point `json:"end"`
}

// VerticalConnector runs from the bottom centre of parent to the top
// centre of child as an S-curve. It is a straight line when both ends
// share a y.
func VerticalConnector(parent, child geom.Rect) Connector {
	start := geom.Point{X: parent.X + parent.Width/2, Y: parent.Bottom()}
	end := geom.Point{X: child.X + child.Width/2, Y: child.Y}
	midY := (start.Y + end.Y) / 2
	return Connector{
		Start: start,
		C1:    geom.Point{X: start.X, Y: midY},
		C2:    geom.Point{X: end.X, Y: midY},
		End:   end,
	}
}

// HorizontalConnector runs from the right middle of parent to the left
// middle of child.
func HorizontalConnector(parent, child geom.Rect) Connector {
	start := geom.Point{X: parent.Right(), Y: parent.Y + parent.Height/2}
	end := geom.Point{X: child.X, Y: child.Y + child.Height/2}
	midX := (start.X + end.X) / 2
	return Connector{
		Start: start,
		C1:    geom.Point{X: midX, Y: start.Y},
		C2:    geom.Point{X: midX, Y: end.Y},
		End:   end,
	}
}

// Path renders the connector as SVG path data.
func (c Connector) Path() string {
	var b strings.Builder
	b.WriteString("M ")
	writePoint(&b, c.Start)
	b.WriteString(" C ")
	writePoint(&b, c.C1)
	b.WriteString(", ")
	writePoint(&b, c.C2)
	b.WriteString(", ")
	writePoint(&b, c.End)
	return b.String()
}

func writePoint(b *strings.Builder, p geom.Point) {
	b.WriteString(strconv.FormatFloat(p.X, 'f', -1, 64))
	b.WriteByte(' ')
	b.WriteString(strconv.FormatFloat(p.Y, 'f', -1, 64))
}

// Measure reports the on-screen rectangle of a node. The rendering layer
// supplies it; ok is false for nodes that are not currently drawn.
type Measure func(id string) (geom.Rect, bool)

// MeasurePositions adapts laid-out positions to a Measure.
func MeasurePositions(p Positions, cfg Config) Measure {
	return func(id string) (geom.Rect, bool) { return p.Rect(id, cfg) }
}

type Edge struct {
	ParentID  string    `json:"parentId"`
	ChildID   string    `json:"childId"`
	Connector Connector `json:"connector"`
	Path      string    `json:"path"`
}

// Edges builds one connector per parent-child pair that measure can place.
func Edges(nodes []domain.HierarchicalNode, measure Measure, horizontal bool) []Edge {
	connect := VerticalConnector
	if horizontal {
		connect = HorizontalConnector
	}
	var out []Edge
	for _, n := range nodes {
		if n.ParentID == nil {
			continue
		}
		pr, ok := measure(*n.ParentID)
		if !ok {
			continue
		}
		cr, ok := measure(n.ID)
		if !ok {
			continue
		}
		c := connect(pr, cr)
		out = append(out, Edge{ParentID: *n.ParentID, ChildID: n.ID, Connector: c, Path: c.Path()})
	}
	return out
}
