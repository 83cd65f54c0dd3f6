package render

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"boards/internal/domain"
	"boards/internal/layout"
)

func ptr(s string) *string { return &s }

func sampleBoard() *domain.Board {
	return &domain.Board{
		Name: "Retro",
		Elements: []domain.Element{
			{ID: "g", Type: domain.ElementGroup, X: 0, Y: 0, Width: 400, Height: 300, Label: "Went well", Color: "#e2e8f0"},
			{ID: "n2", Type: domain.ElementNote, X: 200, Y: 10, Width: 150, Height: 100, Content: "pairing", Color: "#fef08a"},
			{ID: "n1", Type: domain.ElementNote, X: 10, Y: 10, Width: 150, Height: 100, Content: "fast  CI", Color: "#fef08a", Votes: 3},
			{ID: "n3", Type: domain.ElementNote, X: 500, Y: 0, Width: 150, Height: 100, Content: "", Color: "#fef08a"},
		},
	}
}

func TestBoardMarkdown(t *testing.T) {
	var buf bytes.Buffer
	if err := BoardMarkdown(&buf, sampleBoard()); err != nil {
		t.Fatalf("BoardMarkdown: %v", err)
	}
	want := "# Retro\n\n## Went well\n\n- fast CI (+3)\n- pairing\n\n## Ungrouped\n\n- _(empty)_\n"
	if buf.String() != want {
		t.Errorf("markdown =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestBoardMarkdown_NestedGroupsListNoteOnce(t *testing.T) {
	b := &domain.Board{Name: "b", Elements: []domain.Element{
		{ID: "outer", Type: domain.ElementGroup, Width: 400, Height: 300, Label: "Outer", ZIndex: 1},
		{ID: "inner", Type: domain.ElementGroup, X: 10, Y: 10, Width: 200, Height: 200, Label: "Inner", ZIndex: 2},
		{ID: "n", Type: domain.ElementNote, X: 20, Y: 20, Width: 150, Height: 100, Content: "x"},
	}}
	var buf bytes.Buffer
	BoardMarkdown(&buf, b)
	if c := strings.Count(buf.String(), "- x"); c != 1 {
		t.Errorf("note listed %d times:\n%s", c, buf.String())
	}
	if !strings.Contains(buf.String(), "## Outer\n\n_No notes_") {
		t.Errorf("outer group should be empty:\n%s", buf.String())
	}
}

func TestHierarchyMarkdown(t *testing.T) {
	h := &domain.Hierarchy{
		Name: "Growth",
		Kind: domain.KindImpactMap,
		Goal: "More signups",
		Nodes: []domain.HierarchicalNode{
			{ID: "a", Type: domain.NodeActor, Title: "Visitors"},
			{ID: "i2", ParentID: ptr("a"), Order: 1, Type: domain.NodeImpact, Title: "Share"},
			{ID: "i1", ParentID: ptr("a"), Order: 0, Type: domain.NodeImpact, Title: "Sign up"},
		},
	}
	var buf bytes.Buffer
	if err := HierarchyMarkdown(&buf, h); err != nil {
		t.Fatalf("HierarchyMarkdown: %v", err)
	}
	want := "# Growth\n\n**Goal:** More signups\n\n- Visitors _(actor)_\n  - Sign up _(impact)_\n  - Share _(impact)_\n"
	if buf.String() != want {
		t.Errorf("markdown =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestBoardPNG_SizeFollowsBounds(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Scale: 1, Padding: 40, Background: "#ffffff"}
	if err := BoardPNG(&buf, sampleBoard(), opts); err != nil {
		t.Fatalf("BoardPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// bounds are (0,0)-(650,300) plus 40 on every side
	if got := img.Bounds().Size(); got.X != 730 || got.Y != 380 {
		t.Errorf("size = %v, want 730x380", got)
	}
}

func TestBoardPNG_EmptyBoard(t *testing.T) {
	var buf bytes.Buffer
	if err := BoardPNG(&buf, &domain.Board{}, Options{Scale: 1}); err != nil {
		t.Fatalf("BoardPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.Bounds().Size(); got.X != 200 || got.Y != 120 {
		t.Errorf("size = %v, want 200x120", got)
	}
}

func TestHierarchyPNG(t *testing.T) {
	h := &domain.Hierarchy{
		Kind: domain.KindSiteMap,
		Nodes: []domain.HierarchicalNode{
			{ID: "home", Title: "Home"},
			{ID: "about", ParentID: ptr("home"), Title: "About"},
		},
	}
	var buf bytes.Buffer
	cfg := layout.DefaultConfig()
	if err := HierarchyPNG(&buf, h, cfg, Options{Scale: 1, Padding: 0}); err != nil {
		t.Fatalf("HierarchyPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	// one column, two levels
	if got := img.Bounds().Size(); got.X != 200 || got.Y != 240 {
		t.Errorf("size = %v, want 200x240", got)
	}
}

func TestWrap(t *testing.T) {
	width := func(s string) float64 { return float64(len(s)) }
	got := wrap("aa bb cc\ndd", 5, width)
	want := []string{"aa bb", "cc", "dd"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("wrap = %q, want %q", got, want)
	}
}
