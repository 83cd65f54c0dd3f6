package layout

import (
	"sort"

	"boards/internal/domain"
)

// Children returns the nodes whose parent is parentID, ordered by Order.
// An empty parentID selects the roots. Ties keep input order.
func Children(nodes []domain.HierarchicalNode, parentID string) []domain.HierarchicalNode {
	var out []domain.HierarchicalNode
	for _, n := range nodes {
		if n.Parent() == parentID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Roots returns the top-level nodes in order. A node whose parent is not
// in the list is treated as a root so that it is still laid out.
func Roots(nodes []domain.HierarchicalNode) []domain.HierarchicalNode {
	ids := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	var out []domain.HierarchicalNode
	for _, n := range nodes {
		if n.IsRoot() || !ids[n.Parent()] {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Descendants returns every id below id, depth first. id itself is not
// included.
func Descendants(nodes []domain.HierarchicalNode, id string) []string {
	byParent := childIndex(nodes)
	var out []string
	seen := map[string]bool{id: true}
	var walk func(string)
	walk = func(pid string) {
		for _, c := range byParent[pid] {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			out = append(out, c.ID)
			walk(c.ID)
		}
	}
	walk(id)
	return out
}

// Renumber rewrites Order so every sibling group counts 0, 1, 2, ...
// keeping the current relative order. It returns a new slice.
func Renumber(nodes []domain.HierarchicalNode) []domain.HierarchicalNode {
	out := make([]domain.HierarchicalNode, len(nodes))
	copy(out, nodes)
	groups := make(map[string][]int)
	for i, n := range out {
		groups[n.Parent()] = append(groups[n.Parent()], i)
	}
	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool { return out[idx[a]].Order < out[idx[b]].Order })
		for order, i := range idx {
			out[i].Order = order
		}
	}
	return out
}

// Reorder swaps id's Order with its adjacent sibling in direction dir.
// It reports false when id is unknown or already at that end.
func Reorder(nodes []domain.HierarchicalNode, id string, dir domain.Direction) ([]domain.HierarchicalNode, bool) {
	out := Renumber(nodes)
	idx := -1
	for i := range out {
		if out[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nodes, false
	}

	siblings := Children(out, out[idx].Parent())
	pos := -1
	for i, s := range siblings {
		if s.ID == id {
			pos = i
		}
	}
	target := pos - 1
	if dir == domain.Down {
		target = pos + 1
	}
	if target < 0 || target >= len(siblings) {
		return nodes, false
	}

	other := siblings[target].ID
	for i := range out {
		if out[i].ID == other {
			out[i].Order, out[idx].Order = out[idx].Order, out[i].Order
			break
		}
	}
	return out, true
}

// NextOrder returns the Order a new child of parentID should get.
func NextOrder(nodes []domain.HierarchicalNode, parentID string) int {
	next := 0
	for _, n := range nodes {
		if n.Parent() == parentID && n.Order >= next {
			next = n.Order + 1
		}
	}
	return next
}

func childIndex(nodes []domain.HierarchicalNode) map[string][]domain.HierarchicalNode {
	m := make(map[string][]domain.HierarchicalNode)
	for _, n := range nodes {
		if n.ParentID != nil {
			m[*n.ParentID] = append(m[*n.ParentID], n)
		}
	}
	for k := range m {
		kids := m[k]
		sort.SliceStable(kids, func(i, j int) bool { return kids[i].Order < kids[j].Order })
	}
	return m
}
