// Package ascii renders a lineage graph as a column-based text diagram,
// one terminal row at a time, in the style of textual history viewers.
//
// Nodes are drawn as '*' (or '@' for roots) on stable columns, with
// '|', '/', '\' and '-' connectors tracking every open branch between
// rows. Merges (nodes with several parents on distinct columns) draw a
// horizontal bar ending in a '+' marker. When a node opens more than
// two new branches at once, the opening is split across several rows so
// the column count never grows by more than two per row.
//
//	$ lineal show run.toml
//	*    9f2e1a07 outputs/result.csv
//	|\
//	| *  4babb105 steps/train.cwl
//	* |  81a2f340 data/raw.csv
//	|/
//	@  c613a2e9 inputs/config.yml
//
// Rendering is a lazy, single-pass traversal in reverse topological
// order. A [Stream] owns all mutable layout state for one pass; the
// graph itself is never touched, so independent streams over the same
// graph may run concurrently. Label decoration (color) is supplied by
// the caller through [WithLabels] and never hardcoded here - see
// pkg/render/styles.
package ascii
