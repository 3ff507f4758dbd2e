package ascii

import "github.com/ebiiii/lineal/pkg/dag"

// LabelFunc produces the display lines for a node. Implementations may
// style the text freely (see pkg/render/styles); column and edge
// characters are never affected by label content.
type LabelFunc func(*dag.Node) []string

// Option configures a render pass.
type Option func(*options)

type options struct {
	compact    bool
	separators bool
	labels     LabelFunc
}

func defaultOptions() options {
	return options{
		compact:    true,
		separators: true,
		labels:     func(n *dag.Node) []string { return n.LabelLines() },
	}
}

// WithCompact controls shift-row emission. In compact mode (the
// default) a shift row carrying no diagonal characters is dropped; pass
// false to always emit it.
func WithCompact(compact bool) Option {
	return func(o *options) { o.compact = compact }
}

// WithSeparators controls the blank row emitted after a node when no
// branch remains pending, marking a lineage boundary. On by default.
func WithSeparators(separators bool) Option {
	return func(o *options) { o.separators = separators }
}

// WithLabels sets the label formatting hook. The function is called once
// per node; when it returns no lines the node's ID is used.
func WithLabels(fn LabelFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.labels = fn
		}
	}
}
