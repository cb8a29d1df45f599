// Package reactorq implements a request/response overlay atop a
// fire-and-forget pub/sub broker: a reactor consumes a primary topic,
// resolves each message's dependency graph of subtasks via the ephemeral
// rendezvous protocol, and dispatches the user-computed result to a reply
// topic and/or an output channel.
package reactorq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/reactorq/reactorq/broker"
	"github.com/reactorq/reactorq/codec"
	"github.com/reactorq/reactorq/combinators"
	"github.com/reactorq/reactorq/depgraph"
	"github.com/reactorq/reactorq/internal/evaluate"
	"github.com/reactorq/reactorq/internal/rendezvous"
	"github.com/reactorq/reactorq/message"
	"go.uber.org/multierr"
)

// State is the reactor handle's lifecycle state.
type State string

const (
	StateNew      State = "New"
	StateRunning  State = "Running"
	StateStopping State = "Stopping"
	StateStopped  State = "Stopped"
)

// Sentinel errors for common failure cases.
var (
	ErrAlreadyStarted = errors.New("reactorq: already started")
	ErrNotRunning     = errors.New("reactorq: not running")
	ErrBrokerClosed   = errors.New("reactorq: broker closed")
)

// DepsFunc computes the dependency map for one received message. A nil or
// empty return is treated as {}.
type DepsFunc func(m message.Record) depgraph.DepMap

// ProcFunc computes the final result for one message given its resolved
// dependency results.
type ProcFunc func(m message.Record, results evaluate.ResultMap) codec.Value

// ErrorSink receives per-message errors that would otherwise only be
// logged. Errors here are already isolated to the failing message; the
// reactor itself keeps running.
type ErrorSink func(m message.Record, err error)

// Elements is the reactor's resource bundle: the broker adapter, the
// primary topic to consume, and an optional output channel for results.
// The reactor owns the consumer it opens against PrimaryTopic and the
// lifecycle of Output; it does not own Adapter, which callers may share
// with a pipeline or other reactors and must close themselves. See
// DESIGN.md's Open Question decisions for why producer ownership sits with
// the caller here.
type Elements struct {
	Adapter      broker.Adapter
	PrimaryTopic string
	Output       chan codec.Value
}

// Reactor is a configured, startable reactor handle.
type Reactor struct {
	depsFn DepsFunc
	procFn ProcFunc

	log        *slog.Logger
	registry   *combinators.Registry
	rendConfig rendezvous.Config
	parallel   bool
	errorSink  ErrorSink

	mu       sync.Mutex
	state    State
	elements Elements
	stream   broker.Stream
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	teardown sync.Once
	fatalErr error
}

// New constructs a Reactor. depsFn and procFn must both be non-nil.
func New(depsFn DepsFunc, procFn ProcFunc, opts ...Option) *Reactor {
	r := &Reactor{
		depsFn:   depsFn,
		procFn:   procFn,
		log:      NullLogger(),
		registry: combinators.NewRegistry(),
		state:    StateNew,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the reactor's current lifecycle state.
func (r *Reactor) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start opens a consumer on elements.PrimaryTopic and begins dispatching
// messages. It returns immediately; processing happens on background
// goroutines until Close is called or the consumer fails.
func (r *Reactor) Start(ctx context.Context, elements Elements) error {
	r.mu.Lock()
	if r.state != StateNew {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	stream, err := elements.Adapter.Consume(runCtx, elements.PrimaryTopic)
	if err != nil {
		cancel()
		r.mu.Unlock()
		return fmt.Errorf("reactorq: open primary consumer: %w", err)
	}

	r.elements = elements
	r.stream = stream
	r.cancel = cancel
	r.state = StateRunning
	r.mu.Unlock()

	go r.loop(runCtx)
	return nil
}

func (r *Reactor) loop(ctx context.Context) {
	for {
		rec, err := r.stream.Next(ctx)
		if err != nil {
			if errors.Is(err, codec.ErrMalformedPayload) {
				// A record that does not decode is skipped; the consumer
				// itself is still healthy.
				r.reportError(rec, err)
				continue
			}
			if ctx.Err() == nil {
				// The consumer failed on its own, not because Close
				// canceled it: treat this as fatal and shut down.
				r.shutdown(fmt.Errorf("%w: %w", ErrBrokerClosed, err))
			}
			return
		}

		r.wg.Add(1)
		go func(rec message.Record) {
			defer r.wg.Done()
			r.handle(ctx, rec)
		}(rec)
	}
}

func (r *Reactor) handle(ctx context.Context, m message.Record) {
	depsMap := r.depsFn(m)
	if depsMap == nil {
		depsMap = depgraph.DepMap{}
	}

	results, err := evaluate.Evaluate(ctx, depsMap, r.elements.Adapter, evaluate.Options{
		Registry:   r.registry,
		Rendezvous: r.rendConfig,
		Parallel:   r.parallel,
	})
	if err != nil {
		r.reportError(m, err)
		return
	}

	final := r.procFn(m, results)
	r.dispatch(ctx, m, final)
}

// dispatch sends final to the reply topic named in m (if any) and then to
// the output channel (if configured), in that order, matching the ordering
// the reactor guarantees between the two delivery paths.
func (r *Reactor) dispatch(ctx context.Context, m message.Record, final codec.Value) {
	if topic, ok := message.ReturnTopic(m.Value); ok {
		payload, err := codec.Encode(final)
		if err != nil {
			r.reportError(m, err)
			return
		}
		if err := r.elements.Adapter.Produce(ctx, topic, []byte(m.Topic), payload); err != nil {
			r.reportError(m, fmt.Errorf("%w: %w", broker.ErrProduceFailed, err))
			return
		}
	}

	if r.elements.Output != nil {
		select {
		case r.elements.Output <- final:
		case <-ctx.Done():
		}
	}
}

func (r *Reactor) reportError(m message.Record, err error) {
	if r.errorSink != nil {
		r.errorSink(m, err)
		return
	}
	r.log.Error("message processing failed", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
}

// Close transitions the reactor through Stopping to Stopped: it cancels
// in-flight work, waits for every dispatched message to finish, closes the
// output channel, and closes the consumer it opened in Start.
func (r *Reactor) Close() error {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return ErrNotRunning
	}
	r.mu.Unlock()

	r.shutdown(nil)
	return r.Err()
}

// Err returns the error that caused the reactor to stop on its own, if
// any. It is nil after a clean Close.
func (r *Reactor) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fatalErr
}

// shutdown runs the teardown sequence exactly once, whether triggered by an
// explicit Close or by the consumer failing on its own.
func (r *Reactor) shutdown(fatalErr error) {
	r.teardown.Do(func() {
		r.mu.Lock()
		r.state = StateStopping
		r.fatalErr = fatalErr
		cancel := r.cancel
		stream := r.stream
		output := r.elements.Output
		r.mu.Unlock()

		cancel()
		r.wg.Wait()

		if output != nil {
			close(output)
		}

		var closeErr error
		if stream != nil {
			closeErr = stream.Close()
		}

		r.mu.Lock()
		r.state = StateStopped
		if closeErr != nil {
			r.fatalErr = multierr.Append(r.fatalErr, closeErr)
		}
		r.mu.Unlock()
	})
}
