package depgraph

// Builder assembles a DepMap incrementally, for deps_fn implementations
// that prefer fluent construction over a map literal.
//
// Builder is NOT safe for concurrent use. The DAG it produces is immutable
// and safe to use concurrently.
type Builder struct {
	nodes DepMap
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{nodes: DepMap{}}
}

// Add registers spec under id, overwriting any existing entry for id.
func (b *Builder) Add(id NodeID, spec Spec) *Builder {
	b.nodes[id] = spec
	return b
}

// DepMap returns the accumulated map.
func (b *Builder) DepMap() DepMap {
	return b.nodes
}

// Build validates the accumulated DepMap and returns its DAG.
func (b *Builder) Build() (*DAG, error) {
	return Build(b.nodes)
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *DAG {
	dag, err := b.Build()
	if err != nil {
		panic(err)
	}
	return dag
}
