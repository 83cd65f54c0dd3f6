package app

import (
	"errors"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"boards/internal/domain"
	"boards/internal/geom"
	"boards/internal/service"
)

// EventHierarchyLayout is emitted with a service.LayoutResult once queued
// connector re-measurement runs.
const EventHierarchyLayout = "hierarchy:layout"

// ============================================================
// Site maps and impact maps
// ============================================================

func (a *App) ListHierarchies(kind string) ([]domain.Hierarchy, error) {
	return a.hierarchies.ListHierarchies(domain.HierarchyKind(kind))
}

func (a *App) GetHierarchy(kind, id string) (*domain.Hierarchy, error) {
	return a.hierarchies.GetHierarchy(domain.HierarchyKind(kind), id)
}

func (a *App) CreateHierarchy(kind, name string) (*domain.Hierarchy, error) {
	return a.hierarchies.CreateHierarchy(a.ctx, domain.HierarchyKind(kind), name)
}

func (a *App) RenameHierarchy(kind, id, name string) error {
	return a.hierarchies.RenameHierarchy(a.ctx, domain.HierarchyKind(kind), id, name)
}

func (a *App) DuplicateHierarchy(kind, id string) (*domain.Hierarchy, error) {
	return a.hierarchies.DuplicateHierarchy(a.ctx, domain.HierarchyKind(kind), id)
}

func (a *App) DeleteHierarchy(kind, id string) (bool, error) {
	h, err := a.hierarchies.GetHierarchy(domain.HierarchyKind(kind), id)
	if err != nil {
		return false, err
	}
	if !a.confirm("Delete map", "Delete \""+h.Name+"\" and all of its nodes?") {
		return false, nil
	}
	if err := a.hierarchies.DeleteHierarchy(a.ctx, domain.HierarchyKind(kind), id); err != nil {
		return false, err
	}
	return true, nil
}

// SetGoal sets the business goal shown above an impact map.
func (a *App) SetGoal(id, goal string) error {
	return a.hierarchies.SetGoal(a.ctx, id, goal)
}

func (a *App) SaveHierarchyViewport(kind, id string, v geom.Viewport) error {
	return a.hierarchies.SaveViewport(a.ctx, domain.HierarchyKind(kind), id, v)
}

// ── Nodes ──────────────────────────────────────────────────

func (a *App) AddNode(kind, id, parentID, title string) (*domain.HierarchicalNode, error) {
	n, err := a.hierarchies.AddNode(a.ctx, domain.HierarchyKind(kind), id, parentID, title)
	if err == nil {
		a.RemeasureConnectors(kind, id)
	}
	return n, err
}

func (a *App) UpdateNode(kind, id, nodeID string, patch domain.NodePatch) error {
	err := a.hierarchies.UpdateNode(a.ctx, domain.HierarchyKind(kind), id, nodeID, patch)
	if err == nil {
		a.RemeasureConnectors(kind, id)
	}
	return err
}

// DeleteNode removes a node and, after confirmation, its descendants. A
// cancelled confirmation returns no ids and no error.
func (a *App) DeleteNode(kind, id, nodeID string) ([]string, error) {
	removed, err := a.hierarchies.DeleteNode(a.ctx, domain.HierarchyKind(kind), id, nodeID)
	if errors.Is(err, service.ErrDeleteCancelled) {
		return nil, nil
	}
	if err == nil {
		a.RemeasureConnectors(kind, id)
	}
	return removed, err
}

// ReorderNode swaps a node with its previous or next sibling.
func (a *App) ReorderNode(kind, id, nodeID, direction string) (bool, error) {
	moved, err := a.hierarchies.ReorderNode(a.ctx, domain.HierarchyKind(kind), id, nodeID, domain.Direction(direction))
	if moved {
		a.RemeasureConnectors(kind, id)
	}
	return moved, err
}

// HierarchyLayout returns node positions and connector paths for drawing.
func (a *App) HierarchyLayout(kind, id string) (*service.LayoutResult, error) {
	return a.hierarchies.Layout(domain.HierarchyKind(kind), id)
}

// RemeasureConnectors queues a layout pass for the map. Bursts of calls,
// for example while node text reflows, collapse into one pass.
func (a *App) RemeasureConnectors(kind, id string) {
	a.remeasureMu.Lock()
	a.remeasureKind, a.remeasureTarget = kind, id
	a.remeasureMu.Unlock()
	a.remeasure.Schedule()
}

func (a *App) runRemeasure() {
	a.remeasureMu.Lock()
	kind, id := a.remeasureKind, a.remeasureTarget
	a.remeasureMu.Unlock()
	if id == "" {
		return
	}
	res, err := a.hierarchies.Layout(domain.HierarchyKind(kind), id)
	if err != nil {
		wailsRuntime.LogErrorf(a.ctx, "[Layout] Remeasure %s %s: %v", kind, id, err)
		return
	}
	wailsRuntime.EventsEmit(a.ctx, EventHierarchyLayout, map[string]any{
		"kind":   kind,
		"id":     id,
		"layout": res,
	})
}

// ============================================================
// Personas and journey maps
// ============================================================

func (a *App) ListPersonas() ([]domain.Persona, error) {
	return a.personas.ListPersonas()
}

func (a *App) GetPersona(id string) (*domain.Persona, error) {
	return a.personas.GetPersona(id)
}

func (a *App) SavePersona(p domain.Persona) (*domain.Persona, error) {
	if err := a.personas.SavePersona(a.ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (a *App) DeletePersona(id string) error {
	return a.personas.DeletePersona(a.ctx, id)
}

func (a *App) ListJourneyMaps() ([]domain.JourneyMap, error) {
	return a.personas.ListJourneyMaps()
}

func (a *App) GetJourneyMap(id string) (*domain.JourneyMap, error) {
	return a.personas.GetJourneyMap(id)
}

func (a *App) SaveJourneyMap(j domain.JourneyMap) (*domain.JourneyMap, error) {
	if err := a.personas.SaveJourneyMap(a.ctx, &j); err != nil {
		return nil, err
	}
	return &j, nil
}

func (a *App) DeleteJourneyMap(id string) error {
	return a.personas.DeleteJourneyMap(a.ctx, id)
}

func (a *App) DuplicateJourneyMap(id string) (*domain.JourneyMap, error) {
	return a.personas.DuplicateJourneyMap(a.ctx, id)
}
