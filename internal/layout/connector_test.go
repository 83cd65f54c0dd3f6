package layout

import (
	"sync/atomic"
	"testing"
	"time"

	"boards/internal/geom"
)

func TestVerticalConnector(t *testing.T) {
	parent := geom.Rect{X: 0, Y: 0, Width: 200, Height: 80}
	child := geom.Rect{X: 260, Y: 160, Width: 200, Height: 80}
	c := VerticalConnector(parent, child)
	want := Connector{
		Start: geom.Point{X: 100, Y: 80},
		C1:    geom.Point{X: 100, Y: 120},
		C2:    geom.Point{X: 360, Y: 120},
		End:   geom.Point{X: 360, Y: 160},
	}
	if c != want {
		t.Errorf("VerticalConnector = %+v, want %+v", c, want)
	}
	if got := c.Path(); got != "M 100 80 C 100 120, 360 120, 360 160" {
		t.Errorf("Path = %q", got)
	}
}

func TestVerticalConnector_StraightWhenLevel(t *testing.T) {
	parent := geom.Rect{X: 0, Y: 0, Width: 200, Height: 80}
	child := geom.Rect{X: 300, Y: 80, Width: 200, Height: 80}
	c := VerticalConnector(parent, child)
	if c.C1.Y != c.Start.Y || c.C2.Y != c.End.Y {
		t.Errorf("level ends should give a straight line: %+v", c)
	}
}

func TestHorizontalConnector(t *testing.T) {
	parent := geom.Rect{X: 0, Y: 0, Width: 200, Height: 80}
	child := geom.Rect{X: 260, Y: 160, Width: 200, Height: 80}
	c := HorizontalConnector(parent, child)
	want := Connector{
		Start: geom.Point{X: 200, Y: 40},
		C1:    geom.Point{X: 230, Y: 40},
		C2:    geom.Point{X: 230, Y: 200},
		End:   geom.Point{X: 260, Y: 200},
	}
	if c != want {
		t.Errorf("HorizontalConnector = %+v, want %+v", c, want)
	}
}

func TestEdges_FromLayout(t *testing.T) {
	cfg := DefaultConfig()
	nodes := fiveNodeForest()
	edges := Edges(nodes, MeasurePositions(Tree(nodes, cfg), cfg), false)
	if len(edges) != 4 {
		t.Fatalf("got %d edges, want 4", len(edges))
	}
	for _, e := range edges {
		if e.Path == "" || e.Connector.Start.Y >= e.Connector.End.Y {
			t.Errorf("edge %s->%s: %+v", e.ParentID, e.ChildID, e.Connector)
		}
	}
}

func TestEdges_SkipsUnmeasured(t *testing.T) {
	nodes := fiveNodeForest()
	measure := func(id string) (geom.Rect, bool) {
		if id == "C" {
			return geom.Rect{}, false
		}
		return geom.Rect{Width: 10, Height: 10}, true
	}
	if got := Edges(nodes, measure, true); len(got) != 3 {
		t.Errorf("got %d edges, want 3", len(got))
	}
}

func TestRemeasureScheduler_Coalesces(t *testing.T) {
	var runs int32
	s := NewRemeasureScheduler(20*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })
	for i := 0; i < 10; i++ {
		s.Schedule()
	}
	time.Sleep(150 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("runs = %d, want 1", got)
	}
}

func TestRemeasureScheduler_StopDropsPending(t *testing.T) {
	var runs int32
	s := NewRemeasureScheduler(20*time.Millisecond, func() { atomic.AddInt32(&runs, 1) })
	s.Schedule()
	s.Stop()
	s.Schedule()
	time.Sleep(100 * time.Millisecond)
	if got := atomic.LoadInt32(&runs); got != 0 {
		t.Errorf("runs = %d after stop, want 0", got)
	}
}
