package reactorq

import (
	"log/slog"
	"time"

	"github.com/reactorq/reactorq/combinators"
)

// Option configures a Reactor at construction time.
type Option func(*Reactor)

// WithLog sets the logger used for errors that have no ErrorSink.
var WithLog = func(log *slog.Logger) Option {
	return func(r *Reactor) {
		r.log = log
	}
}

// WithErrorSink routes per-message errors to sink instead of the logger.
var WithErrorSink = func(sink ErrorSink) Option {
	return func(r *Reactor) {
		r.errorSink = sink
	}
}

// WithCombinator registers a named combinator for deps-map arg-in-fn
// references, in addition to the registry's "append", "prepend", and
// "merge" defaults.
var WithCombinator = func(name string, fn combinators.Func) Option {
	return func(r *Reactor) {
		r.registry.Register(name, fn)
	}
}

// WithRendezvousTimeout bounds how long each subtask's ephemeral rendezvous
// waits for a reply before failing the message with ErrTimeout.
var WithRendezvousTimeout = func(d time.Duration) Option {
	return func(r *Reactor) {
		r.rendConfig.Timeout = d
	}
}

// WithEphemeralTopicSpec sets the partition count and replication factor
// used for every ephemeral rendezvous topic the reactor creates.
var WithEphemeralTopicSpec = func(partitions int32, replicationFactor int16) Option {
	return func(r *Reactor) {
		r.rendConfig.Partitions = partitions
		r.rendConfig.ReplicationFactor = replicationFactor
	}
}

// WithParallelLayers enables concurrent dispatch of independent nodes
// within a dependency graph's topological layers. Fold order is unaffected
// either way.
var WithParallelLayers = func(enabled bool) Option {
	return func(r *Reactor) {
		r.parallel = enabled
	}
}

// NullWriter discards all data written to it.
type NullWriter struct{}

func (NullWriter) Write(p []byte) (int, error) { return len(p), nil }

// NullLogger creates a logger that discards all output.
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(NullWriter{}, nil))
}
