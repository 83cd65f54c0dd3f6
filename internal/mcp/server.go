package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"boards/internal/layout"
	"boards/internal/render"
	"boards/internal/service"
	"boards/internal/storage"
)

// Server is the MCP server for boards.
// It exposes tools, resources, and prompts so AI agents can edit boards and maps.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	placer   *Placer

	boards      *service.BoardService
	hierarchies *service.HierarchyService
	export      *service.ExportService
}

// Deps holds all dependencies passed from the App layer to the MCP server.
type Deps struct {
	Emitter service.EventEmitter
	Stores  *storage.Stores
	Layout  layout.Config
	Render  render.Options
	// When set, approvals go through the approvals collection (standalone mode)
	StoreApprovals bool
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	approval := NewApprovalQueue(ctx, deps.Emitter)
	if deps.StoreApprovals {
		approval.SetStore(deps.Stores.Docs)
	}
	s := &Server{
		emitter:  deps.Emitter,
		approval: approval,
		placer:   NewPlacer(),
		boards:   service.NewBoardService(deps.Stores.Boards, deps.Emitter),
		export:   service.NewExportService(deps.Stores.Boards, deps.Stores.Hierarchies, deps.Layout, deps.Render, deps.Emitter),
	}
	// Cascading node deletes ask the user through the approval queue.
	s.hierarchies = service.NewHierarchyService(deps.Stores.Hierarchies, deps.Layout, approvalConfirmer{q: approval, tool: "delete_node"}, deps.Emitter)

	s.mcp = server.NewMCPServer(
		"boards-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerBoardTools()
	s.registerHierarchyTools()
	s.registerExportTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) {
	s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) {
	s.approval.Reject(actionID)
}

// approvalConfirmer lets services ask for confirmation through the queue.
type approvalConfirmer struct {
	q    *ApprovalQueue
	tool string
}

func (c approvalConfirmer) Confirm(title, message string) bool {
	ok, err := c.q.Request(c.tool, title+": "+message)
	return err == nil && ok
}

// ── Helpers ────────────────────────────────────────────────

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}
