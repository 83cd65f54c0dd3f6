package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"boards/internal/domain"
	"boards/internal/geom"
	"boards/internal/layout"
)

// ─────────────────────────────────────────────────────────────
// Hierarchy Service: site maps and impact maps
// ─────────────────────────────────────────────────────────────

// EventHierarchyChanged is emitted with {"kind": k, "id": id} after every write.
const EventHierarchyChanged = "hierarchy:changed"

// ErrDeleteCancelled is returned when the user declines a cascading delete.
var ErrDeleteCancelled = errors.New("delete cancelled")

// HierarchyService manages parent-pointer trees of nodes.
type HierarchyService struct {
	store   domain.HierarchyStore
	layout  layout.Config
	confirm Confirmer
	emitter EventEmitter
}

// NewHierarchyService creates a HierarchyService. A nil confirm declines
// every cascading delete.
func NewHierarchyService(store domain.HierarchyStore, cfg layout.Config, confirm Confirmer, emitter EventEmitter) *HierarchyService {
	if confirm == nil {
		confirm = ConfirmFunc(func(string, string) bool { return false })
	}
	return &HierarchyService{store: store, layout: cfg, confirm: confirm, emitter: emitter}
}

// LayoutConfig returns the node size and spacing used by Layout.
func (s *HierarchyService) LayoutConfig() layout.Config { return s.layout }

func (s *HierarchyService) CreateHierarchy(ctx context.Context, kind domain.HierarchyKind, name string) (*domain.Hierarchy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Untitled map"
	}
	h := &domain.Hierarchy{
		ID:       uuid.New().String(),
		Name:     name,
		Kind:     kind,
		Nodes:    []domain.HierarchicalNode{},
		Viewport: geom.Identity,
	}
	if err := s.persist(ctx, h); err != nil {
		return nil, fmt.Errorf("create hierarchy: %w", err)
	}
	return h, nil
}

func (s *HierarchyService) GetHierarchy(kind domain.HierarchyKind, id string) (*domain.Hierarchy, error) {
	return s.store.GetHierarchy(kind, id)
}

func (s *HierarchyService) ListHierarchies(kind domain.HierarchyKind) ([]domain.Hierarchy, error) {
	return s.store.ListHierarchies(kind)
}

func (s *HierarchyService) RenameHierarchy(ctx context.Context, kind domain.HierarchyKind, id, name string) error {
	return s.mutate(ctx, kind, id, func(h *domain.Hierarchy) bool {
		h.Name = strings.TrimSpace(name)
		return true
	})
}

// SetGoal sets the goal statement an impact map is built around.
func (s *HierarchyService) SetGoal(ctx context.Context, id, goal string) error {
	return s.mutate(ctx, domain.KindImpactMap, id, func(h *domain.Hierarchy) bool {
		h.Goal = goal
		return true
	})
}

func (s *HierarchyService) SaveViewport(ctx context.Context, kind domain.HierarchyKind, id string, v geom.Viewport) error {
	if !v.Valid() {
		return nil
	}
	return s.mutate(ctx, kind, id, func(h *domain.Hierarchy) bool {
		h.Viewport = v
		return true
	})
}

func (s *HierarchyService) DeleteHierarchy(ctx context.Context, kind domain.HierarchyKind, id string) error {
	if err := s.store.DeleteHierarchy(kind, id); err != nil {
		return fmt.Errorf("delete hierarchy: %w", err)
	}
	s.emitter.Emit(ctx, EventHierarchyChanged, map[string]string{"kind": string(kind), "id": id})
	return nil
}

// DuplicateHierarchy copies a map with fresh node ids, rewiring parent
// pointers to the new ids.
func (s *HierarchyService) DuplicateHierarchy(ctx context.Context, kind domain.HierarchyKind, id string) (*domain.Hierarchy, error) {
	src, err := s.store.GetHierarchy(kind, id)
	if err != nil {
		return nil, fmt.Errorf("duplicate hierarchy: %w", err)
	}
	ids := make(map[string]string, len(src.Nodes))
	for _, n := range src.Nodes {
		ids[n.ID] = uuid.New().String()
	}
	dup := &domain.Hierarchy{
		ID:       uuid.New().String(),
		Name:     src.Name + " (copy)",
		Kind:     src.Kind,
		Goal:     src.Goal,
		Nodes:    make([]domain.HierarchicalNode, len(src.Nodes)),
		Viewport: src.Viewport,
	}
	for i, n := range src.Nodes {
		n.ID = ids[n.ID]
		if n.ParentID != nil {
			if pid, ok := ids[*n.ParentID]; ok {
				n.ParentID = &pid
			} else {
				n.ParentID = nil
			}
		}
		dup.Nodes[i] = n
	}
	if err := s.persist(ctx, dup); err != nil {
		return nil, fmt.Errorf("duplicate hierarchy: %w", err)
	}
	return dup, nil
}

// ── Node operations ──────────────────────────────────────

// AddNode appends a node under parentID, or a root when parentID is empty.
// The node type follows the parent: actor -> impact -> deliverable on
// impact maps, screen -> screen on site maps.
func (s *HierarchyService) AddNode(ctx context.Context, kind domain.HierarchyKind, id, parentID, title string) (*domain.HierarchicalNode, error) {
	var added domain.HierarchicalNode
	err := s.mutate(ctx, kind, id, func(h *domain.Hierarchy) bool {
		node := domain.HierarchicalNode{
			ID:    uuid.New().String(),
			Type:  domain.RootType(kind),
			Title: title,
			Order: layout.NextOrder(h.Nodes, parentID),
		}
		if parentID != "" {
			pi := h.Find(parentID)
			if pi < 0 {
				return false
			}
			pid := parentID
			node.ParentID = &pid
			node.Type = domain.ChildType(h.Nodes[pi].Type)
		}
		if node.Title == "" {
			node.Title = defaultTitle(node.Type)
		}
		h.Nodes = append(h.Nodes, node)
		added = node
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("add node: %w", err)
	}
	if added.ID == "" {
		return nil, fmt.Errorf("add node: parent %s not found", parentID)
	}
	return &added, nil
}

func defaultTitle(t domain.NodeType) string {
	switch t {
	case domain.NodeActor:
		return "New actor"
	case domain.NodeImpact:
		return "New impact"
	case domain.NodeDeliverable:
		return "New deliverable"
	}
	return "New page"
}

// UpdateNode applies patch to one node. An unknown id is not an error.
func (s *HierarchyService) UpdateNode(ctx context.Context, kind domain.HierarchyKind, id, nodeID string, patch domain.NodePatch) error {
	return s.mutate(ctx, kind, id, func(h *domain.Hierarchy) bool {
		i := h.Find(nodeID)
		if i < 0 {
			return false
		}
		patch.Apply(&h.Nodes[i])
		return true
	})
}

// DeleteNode removes a node and every node below it. When the node has
// descendants the Confirmer is asked first; declining returns
// ErrDeleteCancelled and leaves the map untouched. It returns the ids that
// were removed.
func (s *HierarchyService) DeleteNode(ctx context.Context, kind domain.HierarchyKind, id, nodeID string) ([]string, error) {
	h, err := s.store.GetHierarchy(kind, id)
	if err != nil {
		return nil, fmt.Errorf("delete node: %w", err)
	}
	i := h.Find(nodeID)
	if i < 0 {
		return nil, nil
	}

	descendants := layout.Descendants(h.Nodes, nodeID)
	if len(descendants) > 0 {
		msg := fmt.Sprintf("Delete %q and %d node(s) below it? This cannot be undone.", h.Nodes[i].Title, len(descendants))
		if !s.confirm.Confirm("Delete node", msg) {
			return nil, ErrDeleteCancelled
		}
	}

	removed := append([]string{nodeID}, descendants...)
	h.Nodes = lo.Reject(h.Nodes, func(n domain.HierarchicalNode, _ int) bool {
		return lo.Contains(removed, n.ID)
	})
	h.Nodes = layout.Renumber(h.Nodes)
	if err := s.persist(ctx, h); err != nil {
		return nil, fmt.Errorf("delete node: %w", err)
	}
	return removed, nil
}

// ReorderNode swaps a node with its neighbour among its siblings. It
// reports false when the node is already first (up) or last (down).
func (s *HierarchyService) ReorderNode(ctx context.Context, kind domain.HierarchyKind, id, nodeID string, dir domain.Direction) (bool, error) {
	moved := false
	err := s.mutate(ctx, kind, id, func(h *domain.Hierarchy) bool {
		h.Nodes, moved = layout.Reorder(h.Nodes, nodeID, dir)
		return moved
	})
	if err != nil {
		return false, fmt.Errorf("reorder node: %w", err)
	}
	return moved, nil
}

// ── Layout ───────────────────────────────────────────────

// LayoutResult is a laid-out map ready to draw.
type LayoutResult struct {
	Positions  layout.Positions `json:"positions"`
	Edges      []layout.Edge    `json:"edges"`
	Bounds     geom.Rect        `json:"bounds"`
	Horizontal bool             `json:"horizontal"`
	Config     layout.Config    `json:"config"`
}

// Layout positions every node of a map. Site maps grow downward, impact
// maps grow to the right.
func (s *HierarchyService) Layout(kind domain.HierarchyKind, id string) (*LayoutResult, error) {
	h, err := s.store.GetHierarchy(kind, id)
	if err != nil {
		return nil, fmt.Errorf("layout hierarchy: %w", err)
	}
	return LayoutNodes(h.Nodes, s.layout, kind == domain.KindImpactMap), nil
}

// LayoutNodes lays out nodes without touching the store.
func LayoutNodes(nodes []domain.HierarchicalNode, cfg layout.Config, horizontal bool) *LayoutResult {
	place := layout.Tree
	if horizontal {
		place = layout.TreeHorizontal
	}
	pos := place(nodes, cfg)
	res := &LayoutResult{
		Positions:  pos,
		Edges:      layout.Edges(nodes, layout.MeasurePositions(pos, cfg), horizontal),
		Horizontal: horizontal,
		Config:     cfg,
	}
	res.Bounds, _ = pos.Bounds(cfg)
	return res
}

func (s *HierarchyService) mutate(ctx context.Context, kind domain.HierarchyKind, id string, fn func(*domain.Hierarchy) bool) error {
	h, err := s.store.GetHierarchy(kind, id)
	if err != nil {
		return err
	}
	if !fn(h) {
		return nil
	}
	return s.persist(ctx, h)
}

func (s *HierarchyService) persist(ctx context.Context, h *domain.Hierarchy) error {
	if err := s.store.SaveHierarchy(h); err != nil {
		return err
	}
	s.emitter.Emit(ctx, EventHierarchyChanged, map[string]string{"kind": string(h.Kind), "id": h.ID})
	return nil
}
