package depgraph

// DAG is a validated, evaluator-ready dependency graph for one message.
type DAG struct {
	graph  *Graph
	order  []NodeID
	layers [][]NodeID
}

// Build validates d and returns its DAG: acyclic, with every Deps reference
// resolved, and a deterministic topological order and layering precomputed.
func Build(d DepMap) (*DAG, error) {
	g, err := newGraph(d)
	if err != nil {
		return nil, err
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	order, err := g.topologicalOrder()
	if err != nil {
		return nil, err
	}
	return &DAG{
		graph:  g,
		order:  order,
		layers: g.layers(order),
	}, nil
}

// Order returns the full topological order, one entry per node.
func (d *DAG) Order() []NodeID {
	return d.order
}

// Layers returns the topological order grouped into waves of mutually
// independent nodes. Evaluators may dispatch every node within a layer
// concurrently.
func (d *DAG) Layers() [][]NodeID {
	return d.layers
}

// Spec returns the subtask spec for id.
func (d *DAG) Spec(id NodeID) Spec {
	return d.graph.Nodes[id].Spec
}

// Deps returns id's dependencies in their declared order.
func (d *DAG) Deps(id NodeID) []NodeID {
	return d.graph.Nodes[id].Spec.Deps
}

// Len returns the number of nodes in the graph.
func (d *DAG) Len() int {
	return len(d.graph.Nodes)
}
