// Package broker adapts the fire-and-forget publish/subscribe primitives a
// reactor needs onto a real Kafka-compatible cluster via franz-go.
package broker

import (
	"context"
	"errors"

	"github.com/reactorq/reactorq/message"
)

// Sentinel errors for common failure cases.
var (
	ErrProduceFailed = errors.New("broker: produce failed")
	ErrConsumeFailed = errors.New("broker: consume failed")
	ErrTopicOpFailed = errors.New("broker: topic operation failed")
	ErrAdapterClosed = errors.New("broker: adapter closed")
)

// Adapter is everything a reactor, a rendezvous call, or the pipeline
// convenience needs from the underlying broker. Production code uses
// KafkaAdapter; tests may substitute an in-memory fake.
type Adapter interface {
	// Produce sends value, synchronously waiting for the broker's ack.
	Produce(ctx context.Context, topic string, key []byte, value []byte) error

	// Consume opens a stream of records for topics. The returned Stream
	// must be closed by the caller.
	Consume(ctx context.Context, topics ...string) (Stream, error)

	// CreateTopic creates topic with the given partition and replication
	// factor. It is idempotent: an already-exists response is treated as
	// success.
	CreateTopic(ctx context.Context, topic string, partitions int32, replicationFactor int16) error

	// DeleteTopic deletes topic. It is idempotent: an unknown-topic
	// response is treated as success.
	DeleteTopic(ctx context.Context, topic string) error

	// Close releases the adapter's underlying client connections.
	Close() error
}

// Stream yields decoded records from one or more topics until its context
// is canceled or Close is called.
type Stream interface {
	// Next blocks until a record is available, ctx is done, or the stream
	// is closed.
	Next(ctx context.Context) (message.Record, error)

	// Close stops the stream. Safe to call more than once.
	Close() error
}
