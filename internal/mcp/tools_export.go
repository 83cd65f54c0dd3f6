package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"

	"boards/internal/service"
)

func (s *Server) registerExportTools() {
	// ── export_png ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export_png",
		mcp.WithDescription("Render a board (boardId) or a map (kind + id) to PNG. Writes to path when given, otherwise returns the image."),
		mcp.WithString("boardId", mcp.Description("Board ID")),
		mcp.WithString("kind", mcp.Description("Map kind: sitemap or impactmap")),
		mcp.WithString("id", mcp.Description("Map ID")),
		mcp.WithString("path", mcp.Description("File to write (optional)")),
	), s.handleExportPNG)

	// ── export_markdown ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export_markdown",
		mcp.WithDescription("Render a board (boardId) or a map (kind + id) as a Markdown outline"),
		mcp.WithString("boardId", mcp.Description("Board ID")),
		mcp.WithString("kind", mcp.Description("Map kind: sitemap or impactmap")),
		mcp.WithString("id", mcp.Description("Map ID")),
	), s.handleExportMarkdown)
}

// exportTarget picks the board or map export for the tool arguments.
func (s *Server) exportTarget(ctx context.Context, args map[string]any, png bool) (func(io.Writer) error, error) {
	if boardID, _ := args["boardId"].(string); boardID != "" {
		if png {
			return func(w io.Writer) error { return s.export.BoardPNG(ctx, boardID, w, nil) }, nil
		}
		return func(w io.Writer) error { return s.export.BoardMarkdown(boardID, w) }, nil
	}
	kind, id, err := mapArgs(args)
	if err != nil {
		return nil, fmt.Errorf("boardId or kind + id is required")
	}
	if png {
		return func(w io.Writer) error { return s.export.HierarchyPNG(ctx, kind, id, w, nil) }, nil
	}
	return func(w io.Writer) error { return s.export.HierarchyMarkdown(kind, id, w) }, nil
}

func (s *Server) handleExportPNG(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	export, err := s.exportTarget(ctx, args, true)
	if err != nil {
		return nil, err
	}
	if path, _ := args["path"].(string); path != "" {
		if err := service.ToFile(path, export); err != nil {
			return nil, fmt.Errorf("export png: %w", err)
		}
		return textResult(fmt.Sprintf("Wrote %s", path)), nil
	}

	var buf bytes.Buffer
	if err := export(&buf); err != nil {
		return nil, fmt.Errorf("export png: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewImageContent(base64.StdEncoding.EncodeToString(buf.Bytes()), "image/png"),
		},
	}, nil
}

func (s *Server) handleExportMarkdown(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	export, err := s.exportTarget(ctx, req.GetArguments(), false)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export(&buf); err != nil {
		return nil, fmt.Errorf("export markdown: %w", err)
	}
	return textResult(buf.String()), nil
}
