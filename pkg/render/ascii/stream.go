package ascii

import (
	"fmt"
	"io"
	"strings"

	"github.com/ebiiii/lineal/pkg/dag"
)

// Stream is a lazy, single-pass text rendering of a lineage graph.
// Rows are pulled one at a time in the bufio.Scanner style:
//
//	stream, err := ascii.NewStream(g)
//	if err != nil {
//	    return err
//	}
//	for stream.Next() {
//	    fmt.Println(stream.Row())
//	}
//	if err := stream.Err(); err != nil {
//	    return err
//	}
//
// A Stream owns all mutable layout state of its pass and is not
// restartable: replaying requires a fresh Stream over the same graph.
// The graph is never mutated, so independent streams may run
// concurrently over it. A Stream must not be shared between goroutines.
type Stream struct {
	graph *dag.Graph
	order []string // reverse topological: children before parents
	opts  options

	tracker *tracker
	lines   lineRenderer

	pos  int
	buf  []string
	row  string
	err  error
	done bool
}

// NewStream creates a render pass over the graph. The topological order
// is computed up front; a cyclic graph is rejected here.
func NewStream(g *dag.Graph, opts ...Option) (*Stream, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	sorted, err := g.TopoSort()
	if err != nil {
		return nil, fmt.Errorf("order lineage graph: %w", err)
	}
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}

	return &Stream{
		graph:   g,
		order:   sorted,
		opts:    o,
		tracker: newTracker(),
		lines: lineRenderer{
			compact:    o.compact,
			separators: o.separators,
		},
	}, nil
}

// Next advances the stream to the next row. It returns false when the
// traversal is exhausted or a fatal layout error occurred; distinguish
// the two with Err.
func (s *Stream) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	for len(s.buf) == 0 {
		if s.pos >= len(s.order) {
			s.done = true
			return false
		}
		if !s.advance() {
			return false
		}
	}
	s.row = s.buf[0]
	s.buf = s.buf[1:]
	return true
}

// advance lays out and renders the next node, buffering its rows. All
// rows of a node are buffered before any is exposed, so a fatal error
// never leaves a node half emitted.
func (s *Stream) advance() bool {
	id := s.order[s.pos]
	s.pos++

	node, ok := s.graph.Node(id)
	if !ok {
		s.err = fmt.Errorf("render node %s: node disappeared from graph", id)
		return false
	}

	frames, err := layoutNode(s.tracker, node)
	if err != nil {
		s.err = fmt.Errorf("layout node %s: %w", id, err)
		return false
	}

	label := s.opts.labels(node)
	if len(label) == 0 {
		label = node.LabelLines()
	}

	var rows []string
	for _, f := range frames {
		frameRows, err := s.lines.render(s.tracker, f, label)
		if err != nil {
			s.err = fmt.Errorf("render node %s: %w", id, err)
			return false
		}
		rows = append(rows, frameRows...)
	}
	s.buf = append(s.buf, rows...)
	return true
}

// Row returns the current row. Valid only after a call to Next that
// returned true.
func (s *Stream) Row() string { return s.row }

// Err returns the first fatal error encountered by the stream, if any.
func (s *Stream) Err() error { return s.err }

// WriteTo drains the remaining rows into w, one per line.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for s.Next() {
		n, err := fmt.Fprintln(w, s.Row())
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, s.Err()
}

// Render draws the whole graph and returns its rows. It is a
// convenience wrapper around a single Stream pass.
func Render(g *dag.Graph, opts ...Option) ([]string, error) {
	stream, err := NewStream(g, opts...)
	if err != nil {
		return nil, err
	}
	var rows []string
	for stream.Next() {
		rows = append(rows, stream.Row())
	}
	if err := stream.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// RenderString draws the whole graph into a single newline-joined
// string.
func RenderString(g *dag.Graph, opts ...Option) (string, error) {
	rows, err := Render(g, opts...)
	if err != nil {
		return "", err
	}
	return strings.Join(rows, "\n"), nil
}
