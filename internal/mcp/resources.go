package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

const (
	boardsURI      = "boards://boards"
	boardURIPrefix = "boards://board/"
)

func (s *Server) registerResources() {
	// ── boards://boards ────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		boardsURI,
		"All Boards",
		mcp.WithMIMEType("application/json"),
	), s.handleBoardsResource)

	// ── boards://board/{boardId} ───────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			boardURIPrefix+"{boardId}",
			"Notes and groups on a board",
		),
		s.handleBoardResource,
	)
}

func (s *Server) handleBoardsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	boards, err := s.boards.ListBoards()
	if err != nil {
		return nil, err
	}
	summaries := make([]boardSummary, len(boards))
	for i, b := range boards {
		summaries[i] = summarizeBoard(b)
	}
	return jsonResource(boardsURI, summaries)
}

func (s *Server) handleBoardResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	boardID := boardIDFromURI(uri)
	if boardID == "" {
		return nil, fmt.Errorf("could not extract boardId from URI: %s", uri)
	}
	b, err := s.boards.GetBoard(boardID)
	if err != nil {
		return nil, err
	}
	return jsonResource(uri, b)
}

// boardIDFromURI extracts the id from "boards://board/{id}".
func boardIDFromURI(uri string) string {
	id, ok := strings.CutPrefix(uri, boardURIPrefix)
	if !ok {
		return ""
	}
	id, _, _ = strings.Cut(id, "/")
	return id
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
