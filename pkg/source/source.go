// Package source loads lineage graphs from their storage backends.
//
// A Source resolves a graph name into a validated [dag.Graph]. Backends
// live in subpackages: local manifest files (pkg/source/local), remote
// knowledge-graph services (pkg/source/remote), and MongoDB collections
// (pkg/source/mongostore). All of them exchange the same Document wire
// format defined here.
package source

import (
	"context"
	stderrors "errors"

	"github.com/ebiiii/lineal/pkg/dag"
	"github.com/ebiiii/lineal/pkg/errors"
)

// Source resolves a graph name into a validated lineage graph.
type Source interface {
	Load(ctx context.Context, name string) (*dag.Graph, error)
}

// Document is the serialized form of a lineage graph, shared by all
// backends (TOML/JSON manifests, the HTTP API, and Mongo documents).
type Document struct {
	Name  string    `json:"name" toml:"name" bson:"name"`
	Nodes []NodeDoc `json:"nodes" toml:"nodes" bson:"nodes"`
}

// NodeDoc is the serialized form of a single lineage entry.
type NodeDoc struct {
	ID       string         `json:"id" toml:"id" bson:"id"`
	Parents  []string       `json:"parents,omitempty" toml:"parents" bson:"parents,omitempty"`
	Labels   []string       `json:"labels,omitempty" toml:"labels" bson:"labels,omitempty"`
	Workflow string         `json:"workflow,omitempty" toml:"workflow" bson:"workflow,omitempty"`
	Meta     map[string]any `json:"meta,omitempty" toml:"meta" bson:"meta,omitempty"`
}

// ToGraph builds and validates the lineage graph described by the
// document. Malformed documents (duplicate IDs, self-references,
// dangling parents, cycles) are rejected here so renderers can assume a
// valid graph.
func (d *Document) ToGraph() (*dag.Graph, error) {
	g := dag.New()
	for _, n := range d.Nodes {
		node := dag.Node{
			ID:       n.ID,
			Parents:  n.Parents,
			Labels:   n.Labels,
			Workflow: n.Workflow,
			Meta:     n.Meta,
		}
		if err := g.AddNode(node); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "graph %s: node %q", d.Name, n.ID)
		}
	}
	if err := g.Validate(); err != nil {
		code := errors.ErrCodeInvalidGraph
		if stderrors.Is(err, dag.ErrGraphHasCycle) {
			code = errors.ErrCodeGraphCycle
		}
		return nil, errors.Wrap(code, err, "graph %s", d.Name)
	}
	return g, nil
}
