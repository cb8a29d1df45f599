package broker

import (
	"context"
	"fmt"
	"sync"

	"github.com/reactorq/reactorq/codec"
	"github.com/reactorq/reactorq/message"
)

// Fake is an in-memory Adapter for unit tests. It routes produced records
// to any open streams subscribed to the same topic, FIFO while a stream's
// 16-record buffer has room, with no cross-topic ordering guarantees. Once
// a stream's buffer is full, further records are delivered by separate
// goroutines and their order is not guaranteed.
type Fake struct {
	mu     sync.Mutex
	topics map[string]bool
	subs   map[string][]*fakeStream
	closed bool
}

// NewFake returns a ready Fake adapter.
func NewFake() *Fake {
	return &Fake{
		topics: make(map[string]bool),
		subs:   make(map[string][]*fakeStream),
	}
}

func (f *Fake) Produce(ctx context.Context, topic string, key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrAdapterClosed
	}

	v, err := codec.Decode(value)
	if err != nil {
		return err
	}
	rec := message.Record{Topic: topic, Key: key, Value: v}

	for _, s := range f.subs[topic] {
		select {
		case s.records <- rec:
		default:
			go func(s *fakeStream, rec message.Record) { s.records <- rec }(s, rec)
		}
	}
	return nil
}

func (f *Fake) Consume(ctx context.Context, topics ...string) (Stream, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, ErrAdapterClosed
	}

	s := &fakeStream{records: make(chan message.Record, 16)}
	for _, t := range topics {
		f.subs[t] = append(f.subs[t], s)
	}
	s.unsubscribe = func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, t := range topics {
			subs := f.subs[t]
			for i, sub := range subs {
				if sub == s {
					f.subs[t] = append(subs[:i], subs[i+1:]...)
					break
				}
			}
		}
	}
	return s, nil
}

func (f *Fake) CreateTopic(ctx context.Context, topic string, partitions int32, replicationFactor int16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrAdapterClosed
	}
	f.topics[topic] = true
	return nil
}

func (f *Fake) DeleteTopic(ctx context.Context, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrAdapterClosed
	}
	delete(f.topics, topic)
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// HasTopic reports whether topic currently exists, for test assertions.
func (f *Fake) HasTopic(topic string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.topics[topic]
}

type fakeStream struct {
	records     chan message.Record
	unsubscribe func()

	mu     sync.Mutex
	closed bool
}

func (s *fakeStream) Next(ctx context.Context) (message.Record, error) {
	select {
	case <-ctx.Done():
		return message.Record{}, ctx.Err()
	case rec, ok := <-s.records:
		if !ok {
			return message.Record{}, fmt.Errorf("%w: stream closed", ErrConsumeFailed)
		}
		return rec, nil
	}
}

// Close unsubscribes the stream from its topics. It does not wake a pending
// Next, which returns only when a buffered record is available or its ctx
// is done.
func (s *fakeStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	return nil
}
