package layout

import (
	"reflect"
	"testing"

	"boards/internal/domain"
	"boards/internal/geom"
)

func ptr(s string) *string { return &s }

func node(id string, parent string, order int) domain.HierarchicalNode {
	n := domain.HierarchicalNode{ID: id, Order: order, Title: id}
	if parent != "" {
		n.ParentID = ptr(parent)
	}
	return n
}

// A -> [B, C], B -> [D, E]
func fiveNodeForest() []domain.HierarchicalNode {
	return []domain.HierarchicalNode{
		node("E", "B", 1),
		node("C", "A", 1),
		node("A", "", 0),
		node("D", "B", 0),
		node("B", "A", 0),
	}
}

func TestTree_FiveNodeScenario(t *testing.T) {
	pos := Tree(fiveNodeForest(), DefaultConfig())
	want := Positions{
		"D": {X: 50, Y: 320},
		"E": {X: 310, Y: 320},
		"B": {X: 180, Y: 160},
		"C": {X: 570, Y: 160},
		"A": {X: 375, Y: 0},
	}
	if !reflect.DeepEqual(pos, want) {
		t.Errorf("Tree = %v\nwant %v", pos, want)
	}
	if pos["A"].X != (pos["B"].X+pos["C"].X)/2 {
		t.Errorf("A.x = %v, want midpoint of B and C", pos["A"].X)
	}
}

func TestTree_Idempotent(t *testing.T) {
	nodes := fiveNodeForest()
	first := Tree(nodes, DefaultConfig())
	second := Tree(nodes, DefaultConfig())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("layout changed between runs: %v vs %v", first, second)
	}
}

func TestTree_ParentCenteredOverChildren(t *testing.T) {
	nodes := []domain.HierarchicalNode{
		node("r", "", 0),
		node("a", "r", 0), node("b", "r", 1), node("c", "r", 2),
		node("a1", "a", 0), node("a2", "a", 1), node("a3", "a", 2),
		node("c1", "c", 0),
		node("r2", "", 1),
		node("x", "r2", 0), node("y", "r2", 1),
	}
	pos := Tree(nodes, DefaultConfig())
	for _, n := range nodes {
		kids := Children(nodes, n.ID)
		if len(kids) == 0 {
			continue
		}
		first, last := pos[kids[0].ID].X, pos[kids[len(kids)-1].ID].X
		if pos[n.ID].X != (first+last)/2 {
			t.Errorf("%s.x = %v, want %v", n.ID, pos[n.ID].X, (first+last)/2)
		}
		if pos[n.ID].X < first || pos[n.ID].X > last {
			t.Errorf("%s.x outside its children's range", n.ID)
		}
	}
}

func TestTree_RootsLeftToRight(t *testing.T) {
	nodes := []domain.HierarchicalNode{
		node("second", "", 1),
		node("first", "", 0),
		node("child", "first", 0),
		node("child2", "first", 1),
	}
	pos := Tree(nodes, DefaultConfig())
	if pos["first"].X != 180 {
		t.Errorf("first.x = %v, want 180", pos["first"].X)
	}
	// first's subtree used two slots: 50 and 310, so the next root starts at 570
	if pos["second"] != (geom.Point{X: 570, Y: 0}) {
		t.Errorf("second = %v, want (570, 0)", pos["second"])
	}
}

func TestTree_LoneRootSitsAtLeftBound(t *testing.T) {
	pos := Tree([]domain.HierarchicalNode{node("solo", "", 0)}, DefaultConfig())
	if pos["solo"] != (geom.Point{X: 50, Y: 0}) {
		t.Errorf("solo = %v", pos["solo"])
	}
}

func TestTree_OrphanTreatedAsRoot(t *testing.T) {
	pos := Tree([]domain.HierarchicalNode{node("a", "", 0), node("lost", "missing", 1)}, DefaultConfig())
	if _, ok := pos["lost"]; !ok {
		t.Error("orphan node was not placed")
	}
}

func TestTreeHorizontal_SwapsAxes(t *testing.T) {
	cfg := DefaultConfig()
	pos := TreeHorizontal(fiveNodeForest(), cfg)
	// depth steps by NodeWidth+HGap = 260, siblings by NodeHeight+VGap = 160
	want := Positions{
		"D": {X: 570, Y: 0},
		"E": {X: 570, Y: 160},
		"B": {X: 310, Y: 80},
		"C": {X: 310, Y: 320},
		"A": {X: 50, Y: 200},
	}
	if !reflect.DeepEqual(pos, want) {
		t.Errorf("TreeHorizontal = %v\nwant %v", pos, want)
	}
}

func TestPositions_Bounds(t *testing.T) {
	cfg := DefaultConfig()
	b, ok := Tree(fiveNodeForest(), cfg).Bounds(cfg)
	if !ok {
		t.Fatal("no bounds")
	}
	if b != (geom.Rect{X: 50, Y: 0, Width: 720, Height: 400}) {
		t.Errorf("Bounds = %v", b)
	}
}
