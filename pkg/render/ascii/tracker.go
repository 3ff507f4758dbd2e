package ascii

import (
	"fmt"

	"github.com/ebiiii/lineal/pkg/dag"
)

// Symbols for nodes.
const (
	symbolNode  = '*'
	symbolRoot  = '@'
	symbolMerge = '+'
)

// Symbols for edges.
const (
	edgeLeft       = '/'
	edgeRight      = '\\'
	edgeVertical   = '|'
	edgeHorizontal = '-'
)

// tracker is the single piece of state coupling consecutive nodes of a
// render pass: the ordered list of open columns and the pending edge
// symbol of every column still waiting for its defining node row.
type tracker struct {
	columns []string
	pending map[string]byte
}

func newTracker() *tracker {
	return &tracker{pending: make(map[string]byte)}
}

// register returns the node's column index, appending a new column at
// the end if the node does not occupy one yet.
func (t *tracker) register(id string) int {
	if i := t.index(id); i >= 0 {
		return i
	}
	t.columns = append(t.columns, id)
	return len(t.columns) - 1
}

// index returns the node's column index, or -1 if it has no column.
func (t *tracker) index(id string) int {
	for i, c := range t.columns {
		if c == id {
			return i
		}
	}
	return -1
}

// classifyParents splits the node's parents into those already occupying
// a column (edges back to known lanes) and new ones. New parents are
// immediately given a pending vertical edge so the rows between this
// node and theirs keep the lane open.
func (t *tracker) classifyParents(n *dag.Node) (existing, fresh []string, err error) {
	for _, p := range n.Parents {
		if p == n.ID {
			return nil, nil, fmt.Errorf("node %s: %w", n.ID, dag.ErrSelfParent)
		}
		if t.index(p) >= 0 {
			existing = append(existing, p)
		} else {
			fresh = append(fresh, p)
			t.pending[p] = edgeVertical
		}
	}
	return existing, fresh, nil
}

// splice replaces the single slot at the given column with the ordered
// list of new parents, widening (or shrinking) the column list in place.
// This is how newly opened branches claim stable lanes.
func (t *tracker) splice(at int, fresh []string) {
	next := make([]string, 0, len(t.columns)-1+len(fresh))
	next = append(next, t.columns[:at]...)
	next = append(next, fresh...)
	next = append(next, t.columns[at+1:]...)
	t.columns = next
}

// clearPending removes the node's own pending entry once it has been
// rendered as a node row.
func (t *tracker) clearPending(id string) {
	delete(t.pending, id)
}

// symbol returns the pending edge symbol for a column, defaulting to a
// vertical bar.
func (t *tracker) symbol(id string) byte {
	if s, ok := t.pending[id]; ok {
		return s
	}
	return edgeVertical
}
