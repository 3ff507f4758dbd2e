package ascii

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// lineRenderer turns frames into final character rows. It remembers the
// column index and size diff of the previously rendered frame, which is
// what allows a diagonal started on one row to keep its slope on the
// next.
type lineRenderer struct {
	compact    bool
	separators bool

	lastColumn   int
	lastSizeDiff int
}

// render converts one frame plus the node's label lines into text rows:
// the node row, an optional padding row, the shift row, and as many
// plain extension rows as the label still needs. A blank separator row
// is appended when no branch remains pending.
func (r *lineRenderer) render(t *tracker, f frame, label []string) ([]string, error) {
	// Only one column may open or close per row; the chunking rule in
	// layoutNode guarantees this for valid graphs.
	if f.sizeDiff < -1 || f.sizeDiff > 1 {
		return nil, fmt.Errorf("columns changed by %d on one row at column %d", f.sizeDiff, f.column)
	}

	// Two characters per open column: its pending edge symbol plus a
	// space, extended with plain verticals for columns not tracked yet.
	edgeChars := make([]byte, 0, (f.columns+2)*2)
	for _, c := range t.columns {
		edgeChars = append(edgeChars, t.symbol(c), ' ')
	}
	for i := len(t.columns); i < f.columns+f.sizeDiff; i++ {
		edgeChars = append(edgeChars, edgeVertical, ' ')
	}

	if f.sizeDiff == -1 {
		fixRightCrossed(f.edges)
	}

	// A shrinking row whose label spans more than two lines needs one
	// blank connector row ahead of the shift row, or the extra label
	// lines would collide with the horizontal merge bar.
	addPadding := len(label) > 2 && f.sizeDiff == -1 && hasHorizontalSpan(f.edges)

	fixTail := len(label) <= 2 && !addPadding

	current := slices.Clone(edgeChars[:f.column*2])
	current = append(current, f.symbol, ' ')
	current = append(current, r.lineTail(edgeChars, f, fixTail)...)

	// The shift row carries the non-vertical edges between this node and
	// the next.
	shift := slices.Clone(edgeChars[:f.column*2])
	for i := 0; i < 2+f.sizeDiff; i++ {
		shift = append(shift, ' ')
	}
	count := f.columns - f.column - 1
	switch f.sizeDiff {
	case -1:
		for i := 0; i < count; i++ {
			shift = append(shift, edgeLeft, ' ')
		}
	case 0:
		shift = append(shift, edgeChars[(f.column+1)*2:f.columns*2]...)
	default:
		for i := 0; i < count; i++ {
			shift = append(shift, edgeRight, ' ')
		}
	}

	renderEdges(edgeChars, f.edges, current, shift)

	rows := [][]byte{current}
	if addPadding {
		rows = append(rows, paddingLine(edgeChars, f))
	}
	if !r.compact || bytes.ContainsAny(shift, "/\\") {
		rows = append(rows, shift)
	}

	// Plain extension rows keep long labels aligned.
	extension := edgeChars[:(f.columns+f.sizeDiff)*2]
	for len(rows) < len(label) {
		rows = append(rows, slices.Clone(extension))
	}

	// Keep the text left aligned while more columns follow.
	indent := 2 * (f.columns + max(f.sizeDiff, 0))
	nodeRow := f.symbol == symbolNode || f.symbol == symbolRoot

	out := make([]string, 0, len(rows)+1)
	for i := 0; i < max(len(rows), len(label)); i++ {
		var row string
		if i < len(rows) {
			row = string(rows[i])
		}
		if nodeRow {
			var msg string
			if i < len(label) {
				msg = label[i]
			}
			row = fmt.Sprintf("%-*s %s", indent, strings.TrimRight(row, " "), msg)
		} else {
			row = fmt.Sprintf("%-*s", indent, row)
		}
		out = append(out, strings.TrimRight(row, " "))
	}

	if r.separators && len(t.pending) == 0 {
		out = append(out, "") // lineage boundary
	}

	r.lastColumn = f.column
	r.lastSizeDiff = f.sizeDiff
	return out, nil
}

// fixRightCrossed rewrites right-crossing edges into horizontal bars.
// When the column count shrinks, an edge pointing right would cross the
// surviving vertical lane; shifting its end by one turns it into a
// horizontal merge bar instead. The edges slice is mutated in place.
func fixRightCrossed(edges []edge) {
	for i, e := range edges {
		if e.end > e.start {
			edges[i] = edge{e.start, e.end + 1}
		}
	}
}

// hasHorizontalSpan reports whether any edge spans at least two columns.
func hasHorizontalSpan(edges []edge) bool {
	for _, e := range edges {
		if e.start+1 < e.end {
			return true
		}
	}
	return false
}

// lineTail returns the characters following the node symbol. When two
// consecutive frames lean the same non-vertical way, the tail continues
// the existing slope instead of copying verticals that would break it.
func (r *lineRenderer) lineTail(edgeChars []byte, f frame, fix bool) []byte {
	if fix && f.sizeDiff == r.lastSizeDiff && f.sizeDiff != 0 {
		if f.sizeDiff == -1 {
			start := max(f.column+1, r.lastColumn)
			tail := slices.Clone(edgeChars[f.column*2 : (start-1)*2])
			for i := 0; i < f.columns-start; i++ {
				tail = append(tail, edgeLeft, ' ')
			}
			return tail
		}
		var tail []byte
		for i := 0; i < f.columns-f.column-1; i++ {
			tail = append(tail, edgeRight, ' ')
		}
		return tail
	}

	remainder := f.columns - f.column - 1
	if remainder <= 0 {
		return nil
	}
	return slices.Clone(edgeChars[len(edgeChars)-remainder*2:])
}

// renderEdges draws the connectors from the current node to its parents
// into the node row and the shift row. Edges are processed left to
// right; on overlapping horizontal spans the later edge wins cell by
// cell, except that merge markers are never overwritten.
func renderEdges(edgeChars []byte, edges []edge, current, shift []byte) {
	for _, e := range edges {
		start, end := e.start, e.end
		switch {
		case start == end+1:
			// Shift to the left.
			shift[2*end+1] = edgeLeft
		case start == end-1:
			// Extend to the right.
			shift[2*start+1] = edgeRight
		case start == end:
			// Copy the previous character.
			shift[2*start] = edgeChars[2*start]
		default:
			if 2*end >= len(current) {
				continue
			}
			// A genuine merge across two or more columns.
			current[2*end] = symbolMerge
			if start > end {
				start, end = end, start
			}
			for i := 2*start + 1; i < 2*end; i++ {
				if current[i] != symbolMerge {
					current[i] = edgeHorizontal
				}
			}
		}
	}
}

// paddingLine builds the blank connector row inserted between the node
// row and the shift row for long labels.
func paddingLine(edgeChars []byte, f frame) []byte {
	line := slices.Clone(edgeChars[:f.column*2])
	if hasEdge(f.edges, f.column, f.column-1) || hasEdge(f.edges, f.column, f.column) {
		// Keep the vertical branch leaving the current node.
		line = append(line, edgeChars[f.column*2:(f.column+1)*2]...)
	} else {
		line = append(line, ' ', ' ')
	}
	remainder := f.columns - f.column - 1
	if remainder > 0 {
		line = append(line, edgeChars[len(edgeChars)-remainder*2:]...)
	}
	return line
}

func hasEdge(edges []edge, start, end int) bool {
	for _, e := range edges {
		if e.start == start && e.end == end {
			return true
		}
	}
	return false
}
