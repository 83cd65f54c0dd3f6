package canvas

import (
	"reflect"
	"testing"

	"boards/internal/domain"
	"boards/internal/geom"
)

func note(id string, x, y float64) domain.Element {
	return domain.Element{ID: id, Type: domain.ElementNote, X: x, Y: y, Width: domain.NoteWidth, Height: domain.NoteHeight}
}

func group(id string, x, y, w, h float64) domain.Element {
	return domain.Element{ID: id, Type: domain.ElementGroup, X: x, Y: y, Width: w, Height: h}
}

func TestSelection_SingleAndMultiAreExclusive(t *testing.T) {
	var s Selection
	s.SetMulti([]string{"a", "b", "b", ""})
	if s.Single() != "" || !reflect.DeepEqual(s.Multi(), []string{"a", "b"}) {
		t.Fatalf("after SetMulti: single=%q multi=%v", s.Single(), s.Multi())
	}
	s.SetSingle("c")
	if s.Multi() != nil || s.Single() != "c" {
		t.Fatalf("after SetSingle: single=%q multi=%v", s.Single(), s.Multi())
	}
	s.SetMulti([]string{"d"})
	if s.Single() != "d" || s.IsMulti() {
		t.Errorf("one id should collapse to a single selection")
	}
	s.SetMulti(nil)
	if !s.Empty() {
		t.Errorf("empty SetMulti should clear")
	}
}

func TestSelection_Prune(t *testing.T) {
	var s Selection
	s.SetMulti([]string{"a", "b", "gone"})
	s.Prune([]domain.Element{note("a", 0, 0), note("b", 0, 0)})
	if !reflect.DeepEqual(s.Multi(), []string{"a", "b"}) {
		t.Errorf("Multi after prune = %v", s.Multi())
	}
	s.SetSingle("gone")
	s.Prune(nil)
	if !s.Empty() {
		t.Errorf("stale single selection survived prune")
	}
}

func TestBoxSelect_AllDirections(t *testing.T) {
	elems := []domain.Element{note("a", 0, 0), note("b", 200, 0), note("c", 0, 400)}
	want := []string{"a", "b"}
	tl, br := geom.Point{X: -10, Y: -10}, geom.Point{X: 360, Y: 110}
	tr, bl := geom.Point{X: br.X, Y: tl.Y}, geom.Point{X: tl.X, Y: br.Y}

	for name, corners := range map[string][2]geom.Point{
		"down-right": {tl, br},
		"up-left":    {br, tl},
		"down-left":  {tr, bl},
		"up-right":   {bl, tr},
	} {
		got := BoxSelect(geom.RectFromCorners(corners[0], corners[1]), elems)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("%s: BoxSelect = %v, want %v", name, got, want)
		}
	}
}

func TestBoxSelect_ZeroAreaSelectsNothing(t *testing.T) {
	elems := []domain.Element{note("a", 0, 0)}
	if got := BoxSelect(geom.Rect{X: 10, Y: 10}, elems); got != nil {
		t.Errorf("zero-area box selected %v", got)
	}
	if got := BoxSelect(geom.Rect{X: 10, Y: 10, Width: 50}, elems); got != nil {
		t.Errorf("zero-height box selected %v", got)
	}
}

func TestBoxSelect_TouchingEdgeCounts(t *testing.T) {
	elems := []domain.Element{note("touch", 100, 0), note("apart", 101, 200)}
	got := BoxSelect(geom.Rect{X: 0, Y: 0, Width: 100, Height: 100}, elems)
	if !reflect.DeepEqual(got, []string{"touch"}) {
		t.Errorf("BoxSelect = %v, want [touch]", got)
	}
}

func TestContainedNotes_OnePixelOut(t *testing.T) {
	g := group("g", 0, 0, 400, 300)
	inside := note("in", 0, 0)
	flush := note("flush", 250, 200)
	if got := ContainedNotes(g, []domain.Element{g, inside, flush}); len(got) != 2 {
		t.Fatalf("ContainedNotes = %v, want both notes", got)
	}

	out := []domain.Element{
		note("left", -1, 50),
		note("top", 50, -1),
		note("right", 251, 50),
		note("bottom", 50, 201),
	}
	for _, n := range out {
		if got := ContainedNotes(g, []domain.Element{n}); len(got) != 0 {
			t.Errorf("%s: reported contained one pixel out", n.ID)
		}
	}
}

func TestContainedNotes_IgnoresGroupsAndNonGroups(t *testing.T) {
	g := group("g", 0, 0, 400, 300)
	inner := group("inner", 10, 10, 100, 100)
	if got := ContainedNotes(g, []domain.Element{inner}); len(got) != 0 {
		t.Errorf("groups must not be contained: %v", got)
	}
	if got := ContainedNotes(note("n", 0, 0), []domain.Element{note("m", 0, 0)}); got != nil {
		t.Errorf("a note contains nothing: %v", got)
	}
}

func TestGroupOf(t *testing.T) {
	outer := group("outer", 0, 0, 800, 800)
	outer.ZIndex = 1
	inner := group("inner", 0, 0, 400, 400)
	inner.ZIndex = 2
	n := note("n", 10, 10)
	g, ok := GroupOf(n, []domain.Element{outer, inner, n})
	if !ok || g.ID != "inner" {
		t.Errorf("GroupOf = %v, %v; want inner", g.ID, ok)
	}
	if _, ok := GroupOf(note("far", 900, 900), []domain.Element{outer}); ok {
		t.Error("note outside every group reported a group")
	}
}
