package domain

import (
	"time"

	"boards/internal/geom"
)

// HierarchyKind selects site maps or impact maps.
type HierarchyKind string

const (
	KindSiteMap   HierarchyKind = "sitemap"
	KindImpactMap HierarchyKind = "impactmap"
)

type NodeType string

const (
	NodeScreen      NodeType = "screen"
	NodeActor       NodeType = "actor"
	NodeImpact      NodeType = "impact"
	NodeDeliverable NodeType = "deliverable"
)

// ChildType returns the node type created beneath a parent of type t.
// Impact maps step actor -> impact -> deliverable; deliverables and
// screens repeat their own type.
func ChildType(t NodeType) NodeType {
	switch t {
	case NodeActor:
		return NodeImpact
	case NodeImpact:
		return NodeDeliverable
	}
	return t
}

// RootType returns the node type for a top-level node of the given kind.
func RootType(k HierarchyKind) NodeType {
	if k == KindImpactMap {
		return NodeActor
	}
	return NodeScreen
}

// HierarchicalNode is one entry of a parent-pointer forest.
type HierarchicalNode struct {
	ID          string   `json:"id"`
	ParentID    *string  `json:"parentId"`
	Order       int      `json:"order"`
	Type        NodeType `json:"type"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Color       string   `json:"color,omitempty"`
	URL         string   `json:"url,omitempty"`
}

// Parent returns the parent id, or "" for a root.
func (n HierarchicalNode) Parent() string {
	if n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

func (n HierarchicalNode) IsRoot() bool { return n.ParentID == nil }

type NodePatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
	URL         *string   `json:"url,omitempty"`
	Type        *NodeType `json:"type,omitempty"`
}

func (p NodePatch) Apply(n *HierarchicalNode) {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Color != nil {
		n.Color = *p.Color
	}
	if p.URL != nil {
		n.URL = *p.URL
	}
	if p.Type != nil {
		n.Type = *p.Type
	}
}

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Hierarchy is a site map or an impact map. Goal is only used by impact maps.
type Hierarchy struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Kind      HierarchyKind      `json:"kind"`
	Goal      string             `json:"goal,omitempty"`
	Nodes     []HierarchicalNode `json:"nodes"`
	Viewport  geom.Viewport      `json:"viewport"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func (h *Hierarchy) Find(id string) int {
	for i := range h.Nodes {
		if h.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

type HierarchyStore interface {
	GetHierarchy(kind HierarchyKind, id string) (*Hierarchy, error)
	SaveHierarchy(h *Hierarchy) error
	DeleteHierarchy(kind HierarchyKind, id string) error
	ListHierarchies(kind HierarchyKind) ([]Hierarchy, error)
}
