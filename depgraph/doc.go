// Package depgraph builds and validates the per-message dependency graph a
// reactor evaluates: a named set of subtask specifications, each naming the
// broker topic it invokes, its base argument list, and the subtasks (by
// name) whose results must be folded into that argument list before it is
// dispatched.
//
// # Overview
//
// A DepMap is the input: a mapping from node name to Spec. Build validates
// that every name referenced in a Spec's Deps also appears as a key, that
// the induced graph is acyclic, and computes a deterministic topological
// order plus a layering of independent nodes (nodes sharing no dependency
// relationship) that may be evaluated concurrently.
//
//	d := depgraph.DepMap{
//	    "one": {Topic: "add", Args: []any{1, 2, 3}},
//	    "two": {Topic: "sub", Args: []any{2}, Deps: []depgraph.NodeID{"one"}, ArgInFn: "prepend"},
//	}
//	dag, err := depgraph.Build(d)
//	if err != nil {
//	    // err wraps ErrUnknownDependency or ErrCycleDetected
//	}
//	for _, id := range dag.Order() {
//	    spec := dag.Spec(id)
//	    // invoke spec.Topic with spec.Args folded against dag.Deps(id)'s results
//	}
//
// # Determinism
//
// Go maps do not preserve insertion order, so DepMap cannot be used to infer
// a declaration order for breaking ties between independent nodes. Build
// instead uses Kahn's algorithm over a lexicographically sorted ready queue,
// the same approach the DAG builder this package is adapted from uses for
// its topology graphs: any two DepMaps with the same edges always produce
// the same order, regardless of Go's map iteration order.
//
// Fold order for a single node's dependencies is not subject to this
// ambiguity: Spec.Deps is an explicit, ordered slice, so the combinator is
// always applied in declaration order no matter which order the
// dependencies' rendezvous calls complete in.
//
// # Validation
//
//   - Cycle detection (DFS, reports the offending path)
//   - Unknown dependency detection (a Deps entry with no matching key)
//   - Size limits (MaxNodesPerGraph, MaxDepth) to bound pathological inputs
//
// All validation errors are sentinel errors checkable with errors.Is.
package depgraph
