// Package rendezvous implements the ephemeral-topic request/response
// sequence: create a uniquely named topic, publish a request naming it as
// the return address, await exactly one reply, and tear the topic down.
package rendezvous

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/reactorq/reactorq/broker"
	"github.com/reactorq/reactorq/codec"
	"github.com/reactorq/reactorq/message"
)

// Sentinel errors for common failure cases.
var (
	ErrSetupFailed    = errors.New("rendezvous: setup failed")
	ErrDispatchFailed = errors.New("rendezvous: dispatch failed")
	ErrTimeout        = errors.New("rendezvous: timed out waiting for reply")
)

// Request is the outbound call: the topic to invoke and the argument list
// to send as its payload.
type Request struct {
	Topic string
	Args  []any
}

// Config tunes one rendezvous call.
type Config struct {
	// Timeout bounds how long Call waits for the reply after dispatch. There
	// is no built-in default: zero means Call waits until ctx is done.
	Timeout time.Duration

	// Partitions and ReplicationFactor size the ephemeral topic. Both
	// default to 1 when zero.
	Partitions        int32
	ReplicationFactor int16
}

func (c Config) withDefaults() Config {
	if c.Partitions == 0 {
		c.Partitions = 1
	}
	if c.ReplicationFactor == 0 {
		c.ReplicationFactor = 1
	}
	return c
}

// Call performs one full rendezvous: create the ephemeral reply topic,
// dispatch req to req.Topic with the ephemeral topic as the response
// address, await exactly one reply, and delete the ephemeral topic before
// returning. The ephemeral topic is deleted on every return path, success
// or failure, on a best-effort basis.
func Call(ctx context.Context, req Request, adapter broker.Adapter, cfg Config) (codec.Value, error) {
	cfg = cfg.withDefaults()

	replyTopic := uuid.NewString()

	if err := adapter.CreateTopic(ctx, replyTopic, cfg.Partitions, cfg.ReplicationFactor); err != nil {
		cleanup(adapter, replyTopic, nil)
		return nil, fmt.Errorf("%w: %w", ErrSetupFailed, err)
	}

	stream, err := adapter.Consume(ctx, replyTopic)
	if err != nil {
		cleanup(adapter, replyTopic, nil)
		return nil, fmt.Errorf("%w: %w", ErrSetupFailed, err)
	}

	value := message.NewRequestValue(replyTopic, req.Args)
	payload, err := codec.Encode(value)
	if err != nil {
		cleanup(adapter, replyTopic, stream)
		return nil, fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	if err := adapter.Produce(ctx, req.Topic, []byte(req.Topic), payload); err != nil {
		cleanup(adapter, replyTopic, stream)
		return nil, fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	waitCtx := ctx
	cancel := func() {}
	if cfg.Timeout > 0 {
		waitCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
	}
	defer cancel()

	rec, err := stream.Next(waitCtx)
	cleanup(adapter, replyTopic, stream)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && waitCtx.Err() != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, req.Topic)
		}
		return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
	}

	return rec.Value, nil
}

// cleanup closes stream (if non-nil) and deletes topic on a best-effort
// basis, discarding errors: a dangling ephemeral topic from a crash is
// acceptable and expected to be reclaimed out of band.
func cleanup(adapter broker.Adapter, topic string, stream broker.Stream) {
	if stream != nil {
		_ = stream.Close()
	}
	_ = adapter.DeleteTopic(context.Background(), topic)
}
