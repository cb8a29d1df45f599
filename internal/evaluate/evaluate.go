// Package evaluate drives a dependency graph to completion for a single
// message: it walks the graph in topological order, invoking the
// ephemeral-rendezvous protocol for each subtask and folding dependency
// results into dependent argument lists via the combinator registry.
package evaluate

import (
	"context"
	"fmt"
	"sync"

	"github.com/reactorq/reactorq/broker"
	"github.com/reactorq/reactorq/combinators"
	"github.com/reactorq/reactorq/depgraph"
	"github.com/reactorq/reactorq/internal/rendezvous"
	"golang.org/x/sync/errgroup"
)

// Result is one node's outcome: its resolved arguments and the decoded
// reply value from its rendezvous call.
type Result struct {
	Args   []any
	Result any
}

// ResultMap mirrors a DepMap, one Result per node.
type ResultMap map[depgraph.NodeID]Result

// Options configures one Evaluate call.
type Options struct {
	// Registry resolves combinator names. A nil Registry uses
	// combinators.NewRegistry().
	Registry *combinators.Registry

	// Rendezvous tunes every subtask's ephemeral-topic call.
	Rendezvous rendezvous.Config

	// Parallel, when true, dispatches every node within a topological
	// layer concurrently instead of one at a time. Fold order is
	// unaffected either way: Spec.Deps is always folded in declaration
	// order.
	Parallel bool
}

// Evaluate resolves every node in d, in topological order, and returns the
// completed ResultMap. It aborts the entire evaluation on the first
// rendezvous failure; already-dispatched subtasks are not compensated.
func Evaluate(ctx context.Context, d depgraph.DepMap, adapter broker.Adapter, opts Options) (ResultMap, error) {
	dag, err := depgraph.Build(d)
	if err != nil {
		return nil, err
	}

	registry := opts.Registry
	if registry == nil {
		registry = combinators.NewRegistry()
	}

	results := make(ResultMap, dag.Len())
	var mu sync.Mutex

	dispatch := func(ctx context.Context, id depgraph.NodeID) error {
		spec := dag.Spec(id)

		fn, err := registry.Lookup(spec.ArgInFn)
		if err != nil {
			return fmt.Errorf("node %q: %w", id, err)
		}

		mu.Lock()
		args := append([]any{}, spec.Args...)
		for _, dep := range spec.Deps {
			args = fn(args, results[dep].Result)
		}
		mu.Unlock()

		v, err := rendezvous.Call(ctx, rendezvous.Request{Topic: spec.Topic, Args: args}, adapter, opts.Rendezvous)
		if err != nil {
			return fmt.Errorf("node %q: %w", id, err)
		}

		mu.Lock()
		results[id] = Result{Args: args, Result: v}
		mu.Unlock()
		return nil
	}

	if !opts.Parallel {
		for _, id := range dag.Order() {
			if err := dispatch(ctx, id); err != nil {
				return nil, err
			}
		}
		return results, nil
	}

	for _, layer := range dag.Layers() {
		g, gctx := errgroup.WithContext(ctx)
		for _, id := range layer {
			id := id
			g.Go(func() error { return dispatch(gctx, id) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}
	return results, nil
}
