package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/reactorq/reactorq/broker"
	"github.com/reactorq/reactorq/codec"
	"github.com/reactorq/reactorq/internal/rendezvous"
	"github.com/reactorq/reactorq/message"
)

func TestSendFireAndForget(t *testing.T) {
	adapter := broker.NewFake()
	stream, err := adapter.Consume(context.Background(), "events")
	assert.NoError(t, err)
	defer stream.Close()

	p := New(adapter, rendezvous.Config{})
	_, err = p.Send(context.Background(), "events", map[string]any{"x": 1.0}, false)
	assert.NoError(t, err)

	rec, err := stream.Next(context.Background())
	assert.NoError(t, err)
	assert.Equal[any](t, map[string]any{"x": 1.0}, rec.Value)
}

func TestSendWaitPerformsRendezvous(t *testing.T) {
	adapter := broker.NewFake()
	stream, err := adapter.Consume(context.Background(), "add")
	assert.NoError(t, err)
	defer stream.Close()

	go func() {
		rec, err := stream.Next(context.Background())
		if err != nil {
			return
		}
		replyTopic, _ := message.ResponseTopic(rec.Value)
		b, _ := codec.Encode(3.0)
		_ = adapter.Produce(context.Background(), replyTopic, nil, b)
	}()

	p := New(adapter, rendezvous.Config{Timeout: time.Second})
	v, err := p.Send(context.Background(), "add", []any{1.0, 2.0}, true)
	assert.NoError(t, err)
	assert.Equal[any](t, 3.0, v)
}
