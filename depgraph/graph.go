package depgraph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	ErrInvalidNodeID     = errors.New("depgraph: invalid node id")
	ErrUnknownDependency = errors.New("depgraph: unknown dependency")
	ErrCycleDetected     = errors.New("depgraph: cycle detected")
	ErrInvalidTopology   = errors.New("depgraph: invalid topology")
)

// NodeID names a subtask within a dependency map.
type NodeID string

// Validate checks that id is non-empty and contains no whitespace.
func (id NodeID) Validate() error {
	if id == "" {
		return fmt.Errorf("%w: node id cannot be empty", ErrInvalidNodeID)
	}
	if strings.ContainsAny(string(id), " \t\n\r") {
		return fmt.Errorf("%w: node id %q cannot contain whitespace", ErrInvalidNodeID, id)
	}
	return nil
}

// Spec is a subtask specification: the value of a node in a dependency map.
type Spec struct {
	// Topic is the broker topic the subtask is invoked on.
	Topic string
	// Args is the base argument list, before any dependency results are
	// folded in.
	Args []any
	// Deps names the subtasks that must complete before this one is
	// dispatched, in the order their results are folded into Args.
	Deps []NodeID
	// ArgInFn names a combinator registered with the evaluator's registry.
	// Empty means the default "append" combinator.
	ArgInFn string
}

// DepMap is a mapping from node name to subtask spec, exactly the value a
// deps_fn produces for one message.
type DepMap map[NodeID]Spec

// Node is the graph representation of one DepMap entry plus its resolved
// edges.
type Node struct {
	ID       NodeID
	Spec     Spec
	Parents  []NodeID // dependencies
	Children []NodeID // dependents
}

// Graph is the validated structural representation of a DepMap: directed
// edges point from a dependency to its dependent.
type Graph struct {
	Nodes map[NodeID]*Node
}

func newGraph(d DepMap) (*Graph, error) {
	g := &Graph{Nodes: make(map[NodeID]*Node, len(d))}

	for id, spec := range d {
		if err := id.Validate(); err != nil {
			return nil, err
		}
		g.Nodes[id] = &Node{ID: id, Spec: spec}
	}

	for id, node := range g.Nodes {
		for _, dep := range node.Spec.Deps {
			parent, ok := g.Nodes[dep]
			if !ok {
				return nil, fmt.Errorf("%w: node %q depends on %q", ErrUnknownDependency, id, dep)
			}
			parent.Children = append(parent.Children, id)
			node.Parents = append(node.Parents, dep)
		}
	}

	return g, nil
}
