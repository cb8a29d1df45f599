package broker

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestFakeProduceConsume(t *testing.T) {
	f := NewFake()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stream, err := f.Consume(ctx, "topic-a")
	assert.NoError(t, err)
	defer stream.Close()

	assert.NoError(t, f.Produce(ctx, "topic-a", nil, []byte(`{"x":1}`)))

	rec, err := stream.Next(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "topic-a", rec.Topic)
	assert.Equal[any](t, map[string]any{"x": 1.0}, rec.Value)
}

func TestFakeTopicLifecycle(t *testing.T) {
	f := NewFake()
	ctx := context.Background()

	assert.NoError(t, f.CreateTopic(ctx, "ephemeral-1", 1, 1))
	assert.True(t, f.HasTopic("ephemeral-1"))

	assert.NoError(t, f.DeleteTopic(ctx, "ephemeral-1"))
	assert.False(t, f.HasTopic("ephemeral-1"))
}

func TestFakeClosedRejectsOps(t *testing.T) {
	f := NewFake()
	assert.NoError(t, f.Close())

	ctx := context.Background()
	assert.Error(t, f.Produce(ctx, "t", nil, []byte("null")))
	_, err := f.Consume(ctx, "t")
	assert.Error(t, err)
}
