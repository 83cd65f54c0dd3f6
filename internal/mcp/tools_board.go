package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"boards/internal/canvas"
	"boards/internal/domain"
	"boards/internal/geom"
)

func (s *Server) registerBoardTools() {
	// ── list_boards ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_boards",
		mcp.WithDescription("List all boards in the workspace"),
	), s.handleListBoards)

	// ── get_board ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_board",
		mcp.WithDescription("Get a board with all of its notes and groups"),
		mcp.WithString("boardId", mcp.Description("Board ID"), mcp.Required()),
	), s.handleGetBoard)

	// ── create_board ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_board",
		mcp.WithDescription("Create a new empty board"),
		mcp.WithString("name", mcp.Description("Name of the new board"), mcp.Required()),
	), s.handleCreateBoard)

	// ── add_note ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Add a sticky note. With groupId the note is placed inside that group; otherwise position is auto-calculated when x/y are omitted."),
		mcp.WithString("boardId", mcp.Description("Board ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("Note text")),
		mcp.WithString("color", mcp.Description("Hex colour (optional)")),
		mcp.WithString("groupId", mcp.Description("Group to place the note in (optional)")),
		mcp.WithNumber("x", mcp.Description("X position (optional)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional)")),
	), s.handleAddNote)

	// ── add_group ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_group",
		mcp.WithDescription("Add a labelled group frame. Notes lying fully inside it belong to it."),
		mcp.WithString("boardId", mcp.Description("Board ID"), mcp.Required()),
		mcp.WithString("label", mcp.Description("Group label")),
		mcp.WithNumber("x", mcp.Description("X position (optional)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional)")),
		mcp.WithNumber("width", mcp.Description("Width (optional, default 400)")),
		mcp.WithNumber("height", mcp.Description("Height (optional, default 300)")),
	), s.handleAddGroup)

	// ── move_elements ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_elements",
		mcp.WithDescription("Move elements to absolute positions. Pass a JSON array of {id, x, y}. Unknown ids are ignored."),
		mcp.WithString("boardId", mcp.Description("Board ID"), mcp.Required()),
		mcp.WithString("moves", mcp.Description("JSON array [{id, x, y}, ...]"), mcp.Required()),
	), s.handleMoveElements)

	// ── box_select ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("box_select",
		mcp.WithDescription("Return the ids of elements overlapping a canvas rectangle, edges included"),
		mcp.WithString("boardId", mcp.Description("Board ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Left"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Top"), mcp.Required()),
		mcp.WithNumber("width", mcp.Description("Width"), mcp.Required()),
		mcp.WithNumber("height", mcp.Description("Height"), mcp.Required()),
	), s.handleBoxSelect)

	// ── group_contents ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("group_contents",
		mcp.WithDescription("List the notes lying fully inside a group"),
		mcp.WithString("boardId", mcp.Description("Board ID"), mcp.Required()),
		mcp.WithString("groupId", mcp.Description("Group ID"), mcp.Required()),
	), s.handleGroupContents)

	// ── delete_element (destructive) ───────────────────
	s.mcp.AddTool(mcp.NewTool("delete_element",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a note or group. Deleting a group keeps its notes. Requires user approval."),
		mcp.WithString("boardId", mcp.Description("Board ID"), mcp.Required()),
		mcp.WithString("elementId", mcp.Description("Element ID to delete; comma-separate several to delete them under one approval"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteElement)
}

type boardSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Notes     int       `json:"notes"`
	Groups    int       `json:"groups"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func summarizeBoard(b domain.Board) boardSummary {
	sum := boardSummary{ID: b.ID, Name: b.Name, UpdatedAt: b.UpdatedAt}
	for _, e := range b.Elements {
		if e.IsGroup() {
			sum.Groups++
		} else {
			sum.Notes++
		}
	}
	return sum
}

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleListBoards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boards, err := s.boards.ListBoards()
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	out := make([]boardSummary, len(boards))
	for i, b := range boards {
		out[i] = summarizeBoard(b)
	}
	return jsonResult(out)
}

func (s *Server) handleGetBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := s.boardForTool(req.GetArguments())
	if err != nil {
		return nil, err
	}
	return jsonResult(b)
}

func (s *Server) handleCreateBoard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := s.boards.CreateBoard(ctx, req.GetString("name", ""))
	if err != nil {
		return nil, err
	}
	return jsonResult(b)
}

func (s *Server) handleAddNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	b, err := s.boardForTool(args)
	if err != nil {
		return nil, err
	}
	w, h := domain.DefaultSize(domain.ElementNote)

	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if groupID, _ := args["groupId"].(string); groupID != "" {
		i := b.Find(groupID)
		if i < 0 || !b.Elements[i].IsGroup() {
			return nil, fmt.Errorf("group %s not found on board %s", groupID, b.ID)
		}
		group := b.Elements[i]
		var ok bool
		x, y, ok = s.placer.NextPositionIn(group, canvas.ContainedNotes(group, b.Elements), w, h)
		if !ok {
			return nil, fmt.Errorf("group %s has no room for another note", groupID)
		}
	} else if !hasX || !hasY {
		x, y = s.placer.NextPosition(b.Elements, w, h)
	}

	note, err := s.boards.AddElement(ctx, b.ID, domain.ElementNote, x, y, domain.AddOptions{
		Content: req.GetString("content", ""),
		Color:   req.GetString("color", ""),
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(note)
}

func (s *Server) handleAddGroup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	b, err := s.boardForTool(args)
	if err != nil {
		return nil, err
	}
	dw, dh := domain.DefaultSize(domain.ElementGroup)
	w := getFloat(args, "width", dw)
	h := getFloat(args, "height", dh)

	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if !hasX || !hasY {
		x, y = s.placer.NextPosition(b.Elements, w, h)
	}

	group, err := s.boards.AddElement(ctx, b.ID, domain.ElementGroup, x, y, domain.AddOptions{
		Label:  req.GetString("label", ""),
		Width:  w,
		Height: h,
	})
	if err != nil {
		return nil, err
	}
	return jsonResult(group)
}

func (s *Server) handleMoveElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	boardID, err := requireString(args, "boardId")
	if err != nil {
		return nil, err
	}
	raw, err := requireString(args, "moves")
	if err != nil {
		return nil, err
	}
	var moves []domain.Move
	if err := parseJSON(raw, &moves); err != nil {
		return nil, fmt.Errorf("invalid moves JSON: %w", err)
	}
	for _, m := range moves {
		if !(geom.Point{X: m.X, Y: m.Y}).Valid() {
			return nil, fmt.Errorf("move %s: position must be finite", m.ID)
		}
	}
	if err := s.boards.MoveElements(ctx, boardID, moves); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Moved %d element(s)", len(moves))), nil
}

func (s *Server) handleBoxSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	b, err := s.boardForTool(args)
	if err != nil {
		return nil, err
	}
	x, y := getFloat(args, "x", 0), getFloat(args, "y", 0)
	box := geom.RectFromCorners(geom.Point{X: x, Y: y}, geom.Point{X: x + getFloat(args, "width", 0), Y: y + getFloat(args, "height", 0)})
	ids := canvas.BoxSelect(box, b.Elements)
	if ids == nil {
		ids = []string{}
	}
	return jsonResult(ids)
}

func (s *Server) handleGroupContents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	b, err := s.boardForTool(args)
	if err != nil {
		return nil, err
	}
	groupID, err := requireString(args, "groupId")
	if err != nil {
		return nil, err
	}
	i := b.Find(groupID)
	if i < 0 || !b.Elements[i].IsGroup() {
		return nil, fmt.Errorf("group %s not found on board %s", groupID, b.ID)
	}
	notes := canvas.ContainedNotes(b.Elements[i], b.Elements)
	if notes == nil {
		notes = []domain.Element{}
	}
	return jsonResult(notes)
}

func (s *Server) handleDeleteElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	b, err := s.boardForTool(args)
	if err != nil {
		return nil, err
	}
	raw, err := requireString(args, "elementId")
	if err != nil {
		return nil, err
	}
	var targets []domain.Element
	for _, id := range splitIDs(raw) {
		if i := b.Find(id); i >= 0 {
			targets = append(targets, b.Elements[i])
		}
	}
	if len(targets) == 0 {
		return textResult(fmt.Sprintf("No element %s on board %s", raw, b.ID)), nil
	}

	ids := make([]string, len(targets))
	for i, e := range targets {
		ids[i] = e.ID
	}
	meta, _ := json.Marshal(map[string]any{"boardId": b.ID, "elementIds": ids})
	desc := fmt.Sprintf("Delete %s %s from %q", targets[0].Type, targets[0].ID, b.Name)
	if len(targets) > 1 {
		desc = fmt.Sprintf("Delete %d elements from %q", len(targets), b.Name)
	}
	approved, err := s.approval.Request("delete_element", desc, string(meta))
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	for _, id := range ids {
		if err := s.boards.DeleteElement(ctx, b.ID, id); err != nil {
			return nil, fmt.Errorf("delete element %s: %w", id, err)
		}
	}
	return textResult(fmt.Sprintf("Deleted %d element(s)", len(ids))), nil
}

// boardForTool loads the board named by the boardId argument.
func (s *Server) boardForTool(args map[string]any) (*domain.Board, error) {
	boardID, err := requireString(args, "boardId")
	if err != nil {
		return nil, err
	}
	return s.boards.GetBoard(boardID)
}
