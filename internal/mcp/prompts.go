package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("affinity_board",
		mcp.WithPromptDescription("Sort a pile of ideas into labelled groups on a new board"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What the ideas are about"),
			mcp.RequiredArgument(),
		),
	), s.handleAffinityPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("impact_map",
		mcp.WithPromptDescription("Build an impact map from a business goal"),
		mcp.WithArgument("goal",
			mcp.ArgumentDescription("The goal the map works toward"),
			mcp.RequiredArgument(),
		),
	), s.handleImpactMapPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("site_map",
		mcp.WithPromptDescription("Sketch the screen hierarchy of a product"),
		mcp.WithArgument("product",
			mcp.ArgumentDescription("Product or site name"),
			mcp.RequiredArgument(),
		),
	), s.handleSiteMapPrompt)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.TextContent{Type: "text", Text: text},
			},
		},
	}
}

func (s *Server) handleAffinityPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return userPrompt(fmt.Sprintf("Affinity board for: %s", topic), fmt.Sprintf(`Run an affinity exercise about "%s". Follow these steps:

1. Use create_board to make a board named "%s"
2. Brainstorm 8-15 short ideas and add each one with add_note (leave x/y empty for auto-placement)
3. Pick 3-5 themes and create a group for each with add_group
4. Move every idea into its theme with move_elements, or re-add it with add_note and groupId
5. Check each theme with group_contents and finish with export_markdown

Keep notes under 80 characters.`, topic, topic)), nil
}

func (s *Server) handleImpactMapPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	goal := req.Params.Arguments["goal"]
	return userPrompt(fmt.Sprintf("Impact map for: %s", goal), fmt.Sprintf(`Build an impact map for the goal "%s". Follow these steps:

1. Add the actors who can help or hinder the goal with add_node (kind "impactmap", no parentId)
2. Under each actor add the behaviour changes you want from them (add_node with the actor as parent)
3. Under each impact add the deliverables that could cause it
4. Use reorder_node so the most important branches come first
5. Review the result with layout_hierarchy

Titles should be short noun phrases.`, goal)), nil
}

func (s *Server) handleSiteMapPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	product := req.Params.Arguments["product"]
	return userPrompt(fmt.Sprintf("Site map for: %s", product), fmt.Sprintf(`Sketch the site map of "%s". Follow these steps:

1. Add the entry screens as roots with add_node (kind "sitemap")
2. Add the screens reachable from each one as children, at most three levels deep
3. Remove duplicates with delete_node
4. Render it with export_png so the user can review the tree`, product)), nil
}
