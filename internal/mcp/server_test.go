package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"boards/internal/domain"
	"boards/internal/layout"
	"boards/internal/render"
	"boards/internal/service"
	"boards/internal/storage"
)

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestServer(t *testing.T) (*Server, *service.MockEmitter, *storage.Stores) {
	t.Helper()
	docs, err := storage.NewSQLite(filepath.Join(t.TempDir(), "boards.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { docs.Close() })
	stores := storage.NewStores(docs)
	emitter := &service.MockEmitter{}
	s := New(context.Background(), Deps{
		Emitter: emitter,
		Stores:  stores,
		Layout:  layout.DefaultConfig(),
		Render:  render.Options{Scale: 1, Padding: 10},
	})
	s.export.FrameDelay = 0
	return s, emitter, stores
}

func callText(h toolHandler, args map[string]any) (string, error) {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	if err != nil {
		return "", err
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		return "", fmt.Errorf("expected text content, got %T", res.Content[0])
	}
	return text.Text, nil
}

func call(t *testing.T, h toolHandler, args map[string]any) string {
	t.Helper()
	text, err := callText(h, args)
	if err != nil {
		t.Fatalf("tool call failed: %v", err)
	}
	return text
}

// callAsync runs a tool that blocks on approval.
func callAsync(h toolHandler, args map[string]any) <-chan string {
	done := make(chan string, 1)
	go func() {
		text, err := callText(h, args)
		if err != nil {
			text = "error: " + err.Error()
		}
		done <- text
	}()
	return done
}

func decode[T any](t *testing.T, text string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	return v
}

func TestTools_BoardRoundtrip(t *testing.T) {
	s, _, _ := newTestServer(t)

	b := decode[domain.Board](t, call(t, s.handleCreateBoard, map[string]any{"name": "Retro"}))
	g := decode[domain.Element](t, call(t, s.handleAddGroup, map[string]any{"boardId": b.ID, "label": "Wins", "x": 0.0, "y": 0.0}))
	n := decode[domain.Element](t, call(t, s.handleAddNote, map[string]any{"boardId": b.ID, "content": "shipped", "groupId": g.ID}))

	inside := decode[[]domain.Element](t, call(t, s.handleGroupContents, map[string]any{"boardId": b.ID, "groupId": g.ID}))
	if len(inside) != 1 || inside[0].ID != n.ID {
		t.Errorf("group contents = %+v", inside)
	}

	list := decode[[]boardSummary](t, call(t, s.handleListBoards, nil))
	if len(list) != 1 || list[0].Notes != 1 || list[0].Groups != 1 {
		t.Errorf("list_boards = %+v", list)
	}

	// drag the note out of the group
	call(t, s.handleMoveElements, map[string]any{"boardId": b.ID, "moves": `[{"id":"` + n.ID + `","x":900,"y":900}]`})
	inside = decode[[]domain.Element](t, call(t, s.handleGroupContents, map[string]any{"boardId": b.ID, "groupId": g.ID}))
	if len(inside) != 0 {
		t.Errorf("note still inside group after move: %+v", inside)
	}
}

func TestTools_AddNoteAutoPlaces(t *testing.T) {
	s, _, _ := newTestServer(t)
	b := decode[domain.Board](t, call(t, s.handleCreateBoard, map[string]any{"name": "b"}))

	first := decode[domain.Element](t, call(t, s.handleAddNote, map[string]any{"boardId": b.ID}))
	second := decode[domain.Element](t, call(t, s.handleAddNote, map[string]any{"boardId": b.ID}))
	if first.X != 0 || first.Y != 0 {
		t.Errorf("first note at (%v, %v)", first.X, first.Y)
	}
	if second.X < first.X+first.Width {
		t.Errorf("second note at (%v, %v) overlaps the first", second.X, second.Y)
	}
}

func TestTools_BoxSelect(t *testing.T) {
	s, _, _ := newTestServer(t)
	b := decode[domain.Board](t, call(t, s.handleCreateBoard, map[string]any{"name": "b"}))
	n := decode[domain.Element](t, call(t, s.handleAddNote, map[string]any{"boardId": b.ID, "x": 100.0, "y": 100.0}))
	call(t, s.handleAddNote, map[string]any{"boardId": b.ID, "x": 1000.0, "y": 1000.0})

	// dragged from bottom-right to top-left; touches n's corner
	ids := decode[[]string](t, call(t, s.handleBoxSelect, map[string]any{"boardId": b.ID, "x": 300.0, "y": 300.0, "width": -50.0, "height": -100.0}))
	if len(ids) != 1 || ids[0] != n.ID {
		t.Errorf("box_select = %v", ids)
	}
	ids = decode[[]string](t, call(t, s.handleBoxSelect, map[string]any{"boardId": b.ID, "x": 0.0, "y": 0.0, "width": 0.0, "height": 10.0}))
	if len(ids) != 0 {
		t.Errorf("zero-width box selected %v", ids)
	}
}

func TestTools_DeleteElementWaitsForApproval(t *testing.T) {
	s, emitter, stores := newTestServer(t)
	b := decode[domain.Board](t, call(t, s.handleCreateBoard, map[string]any{"name": "b"}))
	n := decode[domain.Element](t, call(t, s.handleAddNote, map[string]any{"boardId": b.ID}))

	done := callAsync(s.handleDeleteElement, map[string]any{"boardId": b.ID, "elementId": n.ID})

	action := waitForApproval(t, emitter)
	if action.Tool != "delete_element" || !strings.Contains(action.Metadata, n.ID) {
		t.Errorf("approval request = %+v", action)
	}
	s.Approve(action.ID)

	if got := <-done; !strings.Contains(got, "Deleted 1") {
		t.Errorf("result = %q", got)
	}
	stored, _ := stores.Boards.GetBoard(b.ID)
	if len(stored.Elements) != 0 {
		t.Errorf("elements after approved delete = %+v", stored.Elements)
	}
}

func TestTools_DeleteElementRejected(t *testing.T) {
	s, emitter, stores := newTestServer(t)
	b := decode[domain.Board](t, call(t, s.handleCreateBoard, map[string]any{"name": "b"}))
	n := decode[domain.Element](t, call(t, s.handleAddNote, map[string]any{"boardId": b.ID}))

	done := callAsync(s.handleDeleteElement, map[string]any{"boardId": b.ID, "elementId": n.ID})
	s.Reject(waitForApproval(t, emitter).ID)

	if got := <-done; got != "Action rejected by user" {
		t.Errorf("result = %q", got)
	}
	stored, _ := stores.Boards.GetBoard(b.ID)
	if len(stored.Elements) != 1 {
		t.Error("rejected delete removed the note")
	}
}

func TestTools_DeleteNodeAsksOnlyForCascade(t *testing.T) {
	s, emitter, stores := newTestServer(t)
	h := &domain.Hierarchy{ID: "s1", Name: "Site", Kind: domain.KindSiteMap}
	stores.Hierarchies.SaveHierarchy(h)

	root := decode[domain.HierarchicalNode](t, call(t, s.handleAddNode, map[string]any{"kind": "sitemap", "id": "s1", "title": "Home"}))
	leaf := decode[domain.HierarchicalNode](t, call(t, s.handleAddNode, map[string]any{"kind": "sitemap", "id": "s1", "parentId": root.ID}))

	// a leaf goes without a prompt
	if got := call(t, s.handleDeleteNode, map[string]any{"kind": "sitemap", "id": "s1", "nodeId": leaf.ID}); got != "Deleted 1 node(s)" {
		t.Errorf("leaf delete = %q", got)
	}
	if len(approvalRequests(emitter)) != 0 {
		t.Error("leaf delete asked for approval")
	}

	call(t, s.handleAddNode, map[string]any{"kind": "sitemap", "id": "s1", "parentId": root.ID})
	done := callAsync(s.handleDeleteNode, map[string]any{"kind": "sitemap", "id": "s1", "nodeId": root.ID})
	s.Approve(waitForApproval(t, emitter).ID)
	if got := <-done; got != "Deleted 2 node(s)" {
		t.Errorf("cascade delete = %q", got)
	}
}

func TestTools_LayoutAndReorder(t *testing.T) {
	s, _, stores := newTestServer(t)
	stores.Hierarchies.SaveHierarchy(&domain.Hierarchy{ID: "i1", Name: "Growth", Kind: domain.KindImpactMap})
	a := decode[domain.HierarchicalNode](t, call(t, s.handleAddNode, map[string]any{"kind": "impactmap", "id": "i1", "title": "Users"}))
	b := decode[domain.HierarchicalNode](t, call(t, s.handleAddNode, map[string]any{"kind": "impactmap", "id": "i1", "title": "Partners"}))
	if a.Type != domain.NodeActor {
		t.Errorf("root type = %s", a.Type)
	}

	if got := call(t, s.handleReorderNode, map[string]any{"kind": "impactmap", "id": "i1", "nodeId": b.ID, "direction": "up"}); !strings.Contains(got, "moved up") {
		t.Errorf("reorder = %q", got)
	}
	res := decode[service.LayoutResult](t, call(t, s.handleLayoutHierarchy, map[string]any{"kind": "impactmap", "id": "i1"}))
	if !res.Horizontal || len(res.Positions) != 2 {
		t.Fatalf("layout = %+v", res)
	}
	if res.Positions[b.ID].Y >= res.Positions[a.ID].Y {
		t.Errorf("reordered node should come first: %+v", res.Positions)
	}
}

func TestTools_ExportMarkdown(t *testing.T) {
	s, _, _ := newTestServer(t)
	b := decode[domain.Board](t, call(t, s.handleCreateBoard, map[string]any{"name": "Retro"}))
	call(t, s.handleAddNote, map[string]any{"boardId": b.ID, "content": "ship it"})

	md := call(t, s.handleExportMarkdown, map[string]any{"boardId": b.ID})
	if !strings.Contains(md, "# Retro") || !strings.Contains(md, "- ship it") {
		t.Errorf("markdown = %q", md)
	}
}

func TestBoardIDFromURI(t *testing.T) {
	if got := boardIDFromURI("boards://board/abc-123"); got != "abc-123" {
		t.Errorf("got %q", got)
	}
	if got := boardIDFromURI("notes://page/x"); got != "" {
		t.Errorf("foreign uri gave %q", got)
	}
}

func approvalRequests(m *service.MockEmitter) []PendingAction {
	var out []PendingAction
	for _, e := range m.Snapshot() {
		if a, ok := e.Data.(PendingAction); ok && e.Event == EventApprovalRequired {
			out = append(out, a)
		}
	}
	return out
}

// waitForApproval returns the most recent approval request.
func waitForApproval(t *testing.T, m *service.MockEmitter) PendingAction {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if reqs := approvalRequests(m); len(reqs) > 0 {
			return reqs[len(reqs)-1]
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no approval request emitted")
	return PendingAction{}
}
