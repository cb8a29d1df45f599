// Package pipeline offers a producer-side convenience for sending a
// message to a topic, optionally performing a full ephemeral rendezvous to
// wait for a reply instead of a plain fire-and-forget produce.
package pipeline

import (
	"context"
	"fmt"

	"github.com/reactorq/reactorq/broker"
	"github.com/reactorq/reactorq/codec"
	"github.com/reactorq/reactorq/internal/rendezvous"
)

// Pipeline sends messages to topics on a shared Adapter.
type Pipeline struct {
	adapter    broker.Adapter
	rendConfig rendezvous.Config
}

// New returns a Pipeline that sends through adapter. rendConfig tunes any
// Send call made with wait=true.
func New(adapter broker.Adapter, rendConfig rendezvous.Config) *Pipeline {
	return &Pipeline{adapter: adapter, rendConfig: rendConfig}
}

// Send publishes value to topic. When wait is false, this is a plain
// produce: Send returns once the broker acknowledges. When wait is true,
// Send performs a full ephemeral rendezvous using value's contents as the
// request's argument list and returns the decoded reply.
func (p *Pipeline) Send(ctx context.Context, topic string, value any, wait bool) (codec.Value, error) {
	if wait {
		return rendezvous.Call(ctx, rendezvous.Request{Topic: topic, Args: requestArgs(value)}, p.adapter, p.rendConfig)
	}

	payload, err := codec.Encode(value)
	if err != nil {
		return nil, err
	}
	if err := p.adapter.Produce(ctx, topic, nil, payload); err != nil {
		return nil, fmt.Errorf("%w: %w", broker.ErrProduceFailed, err)
	}
	return nil, nil
}

// requestArgs normalizes value into the argument list a rendezvous call
// sends as "data": a slice is passed through as-is; anything else becomes
// a single-element argument list.
func requestArgs(value any) []any {
	if args, ok := value.([]any); ok {
		return args
	}
	return []any{value}
}
