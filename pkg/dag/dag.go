// Package dag defines the lineage graph consumed by the renderers.
//
// A Graph is a directed acyclic graph of provenance nodes (history
// entries, workflow steps) where each node points at zero or more
// parent nodes. The graph is built once by a source (see pkg/source),
// validated, and then treated as read-only by every render pass.
package dag

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with
	// the same ID already exists. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrSelfParent is returned by [Graph.AddNode] and [Graph.Validate]
	// when a node lists itself as a parent.
	ErrSelfParent = errors.New("node must not be its own parent")

	// ErrDuplicateParent is returned by [Graph.AddNode] when the same
	// parent appears twice in a node's parent list.
	ErrDuplicateParent = errors.New("duplicate parent reference")

	// ErrUnknownParent is returned by [Graph.Validate] when a node
	// references a parent that does not exist in the graph.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrGraphHasCycle is returned by [Graph.Validate] and
	// [Graph.TopoSort] when a cycle is detected. Cycles are found using
	// depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes.
// Sources use it for provenance details (author, timestamps, paths)
// that the renderer never interprets. Metadata maps are never nil
// after AddNode.
type Metadata map[string]any

// Node represents one lineage entry: a commit, a workflow execution, or
// any other provenance record with an ordered set of parents.
//
// The zero value is not usable - ID must be set before adding to a Graph.
type Node struct {
	ID       string   // Unique identifier (e.g., a commit SHA)
	Parents  []string // Ordered parent IDs, no duplicates, no self-reference
	Labels   []string // Display text lines; renderers fall back to ID when empty
	Workflow string   // Optional grouping tag ("part of" annotation)
	Meta     Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// IsRoot reports whether the node has no parents.
func (n Node) IsRoot() bool { return len(n.Parents) == 0 }

// LabelLines returns the node's display lines, falling back to the ID
// when no labels were supplied. Every node renders at least one line.
func (n Node) LabelLines() []string {
	if len(n.Labels) == 0 {
		return []string{n.ID}
	}
	return n.Labels
}

// Graph is a directed acyclic lineage graph. Nodes keep their insertion
// order, which makes validation, topological sorting and rendering
// deterministic for the same build sequence.
//
// The zero value is not usable - use New to create a Graph. Graph is not
// safe for concurrent mutation; once built it is read-only and may be
// shared by any number of concurrent render passes.
type Graph struct {
	nodes    map[string]*Node
	order    []string            // insertion order of node IDs
	children map[string][]string // nodeID -> IDs of nodes listing it as parent
}

// New creates an empty lineage graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]*Node),
		children: make(map[string][]string),
	}
}

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID for an empty ID, ErrDuplicateNodeID if the ID
// is already present, ErrSelfParent if the node lists itself as a parent,
// or ErrDuplicateParent if a parent appears twice. The node's Meta field
// is initialized to an empty map if nil.
//
// Parents do not need to exist yet - forward references are resolved by
// Validate once the graph is complete.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	seen := make(map[string]struct{}, len(n.Parents))
	for _, p := range n.Parents {
		if p == n.ID {
			return ErrSelfParent
		}
		if _, dup := seen[p]; dup {
			return ErrDuplicateParent
		}
		seen[p] = struct{}{}
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	for _, p := range n.Parents {
		g.children[p] = append(g.children[p], n.ID)
	}
	return nil
}

// Node returns the node with the given ID and true, or nil and false if
// not found.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// IDs returns all node IDs in insertion order.
func (g *Graph) IDs() []string { return slices.Clone(g.order) }

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Parents returns the ordered parent IDs of the node.
// Returns nil if the node doesn't exist. The returned slice should not
// be modified - use it as a read-only view.
func (g *Graph) Parents(id string) []string {
	if n, ok := g.nodes[id]; ok {
		return n.Parents
	}
	return nil
}

// Children returns the IDs of nodes that list this node as a parent, in
// insertion order. Returns nil if the node has no children or doesn't
// exist. The returned slice should not be modified.
func (g *Graph) Children(id string) []string { return g.children[id] }

// Roots returns nodes with no parents, in insertion order.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, id := range g.order {
		if n := g.nodes[id]; n.IsRoot() {
			roots = append(roots, n)
		}
	}
	return roots
}

// Leaves returns nodes no other node lists as a parent (the newest tips
// of each lineage), in insertion order.
func (g *Graph) Leaves() []*Node {
	var leaves []*Node
	for _, id := range g.order {
		if len(g.children[id]) == 0 {
			leaves = append(leaves, g.nodes[id])
		}
	}
	return leaves
}

// Validate checks graph integrity and returns nil if valid.
// It verifies three constraints:
//
//  1. No node lists itself as a parent
//  2. Every referenced parent exists in the graph
//  3. The graph is acyclic
//
// Returns ErrSelfParent, ErrUnknownParent, or ErrGraphHasCycle
// accordingly. Sources must call this before handing a graph to a
// renderer - the renderers assume a valid, fully resolved graph.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (g *Graph) Validate() error {
	for _, id := range g.order {
		for _, p := range g.nodes[id].Parents {
			if p == id {
				return ErrSelfParent
			}
			if _, ok := g.nodes[p]; !ok {
				return ErrUnknownParent
			}
		}
	}
	return g.detectCycles()
}

func (g *Graph) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range g.children[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
				return
			}
		}
		color[id] = black
	}

	for _, id := range g.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}
