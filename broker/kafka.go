package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/reactorq/reactorq/codec"
	"github.com/reactorq/reactorq/message"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Bounds for polling a newly created topic's visibility before CreateTopic
// returns. A subsequent Consume call must be guaranteed to find the topic,
// so CreateTopic cannot return on the create RPC's ack alone.
const (
	topicVisibilityAttempts     = 20
	topicVisibilityPollInterval = 100 * time.Millisecond
)

// KafkaAdapter is the production Adapter, backed by one franz-go client
// shared by produces and topic administration; each Consume call opens a
// dedicated consumer client of its own.
type KafkaAdapter struct {
	brokers []string
	extra   []kgo.Opt

	client *kgo.Client
	admin  *kadm.Client

	mu     sync.Mutex
	closed bool
}

// NewKafkaAdapter dials brokers and returns a ready KafkaAdapter. Extra
// kgo.Opt values are appended after the adapter's own defaults, so callers
// may override them (e.g. kgo.ClientID, TLS, SASL). The same options are
// reused by Consume when it opens a dedicated consumer client.
func NewKafkaAdapter(brokers []string, opts ...kgo.Opt) (*KafkaAdapter, error) {
	base := []kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	}
	client, err := kgo.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("broker: dial: %w", err)
	}
	return &KafkaAdapter{
		brokers: brokers,
		extra:   opts,
		client:  client,
		admin:   kadm.NewClient(client),
	}, nil
}

func (a *KafkaAdapter) Produce(ctx context.Context, topic string, key, value []byte) error {
	rec := &kgo.Record{Topic: topic, Key: key, Value: value}
	results := a.client.ProduceSync(ctx, rec)
	if err := results.FirstErr(); err != nil {
		return fmt.Errorf("%w: topic %q: %w", ErrProduceFailed, topic, err)
	}
	return nil
}

func (a *KafkaAdapter) Consume(ctx context.Context, topics ...string) (Stream, error) {
	base := []kgo.Opt{
		kgo.SeedBrokers(a.brokers...),
		kgo.ConsumeTopics(topics...),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
	}
	client, err := kgo.NewClient(append(base, a.extra...)...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConsumeFailed, err)
	}
	return &kafkaStream{client: client}, nil
}

// CreateTopic creates topic and does not return until it is visible to a
// subsequent Consume call: the create RPC's ack only means the controller
// accepted the request, not that every broker has the metadata yet, and a
// rendezvous reply consumer subscribing before that propagation finishes
// would miss its reply.
func (a *KafkaAdapter) CreateTopic(ctx context.Context, topic string, partitions int32, replicationFactor int16) error {
	resp, err := a.admin.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("%w: create %q: %w", ErrTopicOpFailed, topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("%w: create %q: %w", ErrTopicOpFailed, topic, r.Err)
		}
	}
	return a.awaitTopicVisible(ctx, topic)
}

// awaitTopicVisible polls topic metadata until the topic resolves with at
// least one partition, bounded by topicVisibilityAttempts so a broker that
// never converges fails the call instead of hanging it forever.
func (a *KafkaAdapter) awaitTopicVisible(ctx context.Context, topic string) error {
	for attempt := 0; attempt < topicVisibilityAttempts; attempt++ {
		details, err := a.admin.ListTopics(ctx, topic)
		if err == nil {
			if d, ok := details[topic]; ok && d.Err == nil && len(d.Partitions) > 0 {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: create %q: %w", ErrTopicOpFailed, topic, ctx.Err())
		case <-time.After(topicVisibilityPollInterval):
		}
	}
	return fmt.Errorf("%w: create %q: not visible after %d attempts", ErrTopicOpFailed, topic, topicVisibilityAttempts)
}

func (a *KafkaAdapter) DeleteTopic(ctx context.Context, topic string) error {
	resp, err := a.admin.DeleteTopics(ctx, topic)
	if err != nil {
		return fmt.Errorf("%w: delete %q: %w", ErrTopicOpFailed, topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.UnknownTopicOrPartition) {
			return fmt.Errorf("%w: delete %q: %w", ErrTopicOpFailed, topic, r.Err)
		}
	}
	return nil
}

func (a *KafkaAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	a.client.Close()
	return nil
}

type kafkaStream struct {
	client *kgo.Client

	mu     sync.Mutex
	closed bool
}

func (s *kafkaStream) Next(ctx context.Context) (message.Record, error) {
	fetches := s.client.PollRecords(ctx, 1)
	if err := ctx.Err(); err != nil {
		return message.Record{}, err
	}
	if errs := fetches.Errors(); len(errs) > 0 {
		return message.Record{}, fmt.Errorf("%w: %v", ErrConsumeFailed, errs[0].Err)
	}

	iter := fetches.RecordIter()
	if iter.Done() {
		return s.Next(ctx)
	}
	rec := iter.Next()

	v, err := codec.Decode(rec.Value)
	if err != nil {
		return message.Record{}, err
	}

	return message.Record{
		Topic:     rec.Topic,
		Partition: rec.Partition,
		Offset:    rec.Offset,
		Key:       rec.Key,
		Value:     v,
	}, nil
}

func (s *kafkaStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.client.Close()
	return nil
}
