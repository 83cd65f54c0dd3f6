package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"boards/internal/domain"
	"boards/internal/service"
)

func (s *Server) registerHierarchyTools() {
	kindArg := mcp.WithString("kind",
		mcp.Description("Map kind: sitemap or impactmap"),
		mcp.Required(),
		mcp.Enum(string(domain.KindSiteMap), string(domain.KindImpactMap)),
	)

	// ── layout_hierarchy ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("layout_hierarchy",
		mcp.WithDescription("Compute node positions and connector paths for a site map or impact map"),
		kindArg,
		mcp.WithString("id", mcp.Description("Map ID"), mcp.Required()),
	), s.handleLayoutHierarchy)

	// ── add_node ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_node",
		mcp.WithDescription("Add a node. Without parentId it becomes a root; the node type follows the parent (actor → impact → deliverable)."),
		kindArg,
		mcp.WithString("id", mcp.Description("Map ID"), mcp.Required()),
		mcp.WithString("parentId", mcp.Description("Parent node ID (optional)")),
		mcp.WithString("title", mcp.Description("Node title (optional)")),
	), s.handleAddNode)

	// ── delete_node (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_node",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a node and all of its descendants. Requires user approval when it has children."),
		kindArg,
		mcp.WithString("id", mcp.Description("Map ID"), mcp.Required()),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteNode)

	// ── reorder_node ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("reorder_node",
		mcp.WithDescription("Swap a node with its previous or next sibling"),
		kindArg,
		mcp.WithString("id", mcp.Description("Map ID"), mcp.Required()),
		mcp.WithString("nodeId", mcp.Description("Node ID"), mcp.Required()),
		mcp.WithString("direction",
			mcp.Description("up or down"),
			mcp.Required(),
			mcp.Enum(string(domain.Up), string(domain.Down)),
		),
	), s.handleReorderNode)
}

// mapArgs reads the kind and id shared by every hierarchy tool.
func mapArgs(args map[string]any) (domain.HierarchyKind, string, error) {
	kind, err := requireString(args, "kind")
	if err != nil {
		return "", "", err
	}
	k := domain.HierarchyKind(kind)
	if k != domain.KindSiteMap && k != domain.KindImpactMap {
		return "", "", fmt.Errorf("unknown map kind %q", kind)
	}
	id, err := requireString(args, "id")
	if err != nil {
		return "", "", err
	}
	return k, id, nil
}

func (s *Server) handleLayoutHierarchy(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, id, err := mapArgs(req.GetArguments())
	if err != nil {
		return nil, err
	}
	res, err := s.hierarchies.Layout(kind, id)
	if err != nil {
		return nil, err
	}
	return jsonResult(res)
}

func (s *Server) handleAddNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind, id, err := mapArgs(args)
	if err != nil {
		return nil, err
	}
	n, err := s.hierarchies.AddNode(ctx, kind, id, req.GetString("parentId", ""), req.GetString("title", ""))
	if err != nil {
		return nil, err
	}
	return jsonResult(n)
}

func (s *Server) handleDeleteNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind, id, err := mapArgs(args)
	if err != nil {
		return nil, err
	}
	nodeID, err := requireString(args, "nodeId")
	if err != nil {
		return nil, err
	}
	removed, err := s.hierarchies.DeleteNode(ctx, kind, id, nodeID)
	if errors.Is(err, service.ErrDeleteCancelled) {
		return textResult("Action rejected by user"), nil
	}
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Deleted %d node(s)", len(removed))), nil
}

func (s *Server) handleReorderNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind, id, err := mapArgs(args)
	if err != nil {
		return nil, err
	}
	nodeID, err := requireString(args, "nodeId")
	if err != nil {
		return nil, err
	}
	dir := domain.Direction(req.GetString("direction", ""))
	if dir != domain.Up && dir != domain.Down {
		return nil, fmt.Errorf("direction must be up or down")
	}
	moved, err := s.hierarchies.ReorderNode(ctx, kind, id, nodeID, dir)
	if err != nil {
		return nil, err
	}
	if !moved {
		edge := "first"
		if dir == domain.Down {
			edge = "last"
		}
		return textResult(fmt.Sprintf("Node %s is already %s among its siblings", nodeID, edge)), nil
	}
	return textResult(fmt.Sprintf("Node %s moved %s", nodeID, dir)), nil
}
