package dag

// TopoSort returns a total topological order over all node IDs with
// parents before children. The order is deterministic for the same
// build sequence: roots are seeded in insertion order and nodes become
// ready in the order their last parent is placed.
//
// Renderers walk the result back to front so that children appear above
// the parents they point to. Returns ErrGraphHasCycle if the graph is
// not acyclic.
func (g *Graph) TopoSort() ([]string, error) {
	// Kahn's algorithm over parent->child edges. Pending counts how many
	// parents of a node are still unplaced.
	pending := make(map[string]int, len(g.nodes))
	for _, id := range g.order {
		pending[id] = len(g.nodes[id].Parents)
	}

	var ready []string
	for _, id := range g.order {
		if pending[id] == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)

		for _, child := range g.children[id] {
			pending[child]--
			if pending[child] == 0 {
				ready = append(ready, child)
			}
		}
	}

	if len(sorted) != len(g.nodes) {
		return nil, ErrGraphHasCycle
	}
	return sorted, nil
}
