package ascii

import (
	"slices"

	"github.com/ebiiii/lineal/pkg/dag"
)

// edge is a connector from the column of the current row to a parent
// column on the next row.
type edge struct {
	start, end int
}

// frame holds the layout data needed to render the rows of one node (or
// of one continuation row, when a wide branch-opening is split).
type frame struct {
	symbol   byte
	column   int
	edges    []edge
	columns  int // column count before this row's splice took effect
	sizeDiff int // column count change produced by this row
	width    int // character width of the row: 1 + columns*2 (+2 when growing)
}

// layoutNode computes the ordered frames for a node and commits the
// column changes to the tracker.
//
// At most two new columns may be opened by a single row. While more than
// two new parent columns remain unclaimed, the node row opens one branch
// and continuation frames with a right-diagonal symbol open the rest,
// one per row. Only the first frame carries the node symbol, so the
// label stays on the node row.
func layoutNode(t *tracker, n *dag.Node) ([]frame, error) {
	column := t.register(n.ID)

	symbol := byte(symbolNode)
	if n.IsRoot() {
		symbol = symbolRoot
	}

	existing, fresh, err := t.classifyParents(n)
	if err != nil {
		return nil, err
	}

	columns := len(t.columns)
	width := 1 + columns*2

	// The splice happens up front: rendering of every frame sees the
	// columns of the next row, while pending symbols still describe the
	// current one.
	t.splice(column, fresh)

	edges := make([]edge, 0, len(existing)+2)
	for _, p := range existing {
		edges = append(edges, edge{column, t.index(p)})
	}

	var frames []frame
	for len(fresh) > 2 {
		edges = append(edges, edge{column, column}, edge{column, column + 1})
		width += 2
		frames = append(frames, frame{
			symbol:   symbol,
			column:   column,
			edges:    slices.Clone(edges),
			columns:  columns,
			sizeDiff: 1,
			width:    width,
		})

		// The next row only expands edges.
		symbol = edgeRight
		column++
		columns++
		edges = edges[:0]
		fresh = fresh[1:]
	}

	if len(fresh) > 0 {
		edges = append(edges, edge{column, column})
	}
	if len(fresh) > 1 {
		edges = append(edges, edge{column, column + 1})
	}

	sizeDiff := len(t.columns) - columns
	if sizeDiff > 0 {
		width += 2
	}

	t.clearPending(n.ID)
	frames = append(frames, frame{
		symbol:   symbol,
		column:   column,
		edges:    slices.Clone(edges),
		columns:  columns,
		sizeDiff: sizeDiff,
		width:    width,
	})
	return frames, nil
}
