package integrationtest

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/reactorq/reactorq"
	"github.com/reactorq/reactorq/broker"
	"github.com/reactorq/reactorq/codec"
	"github.com/reactorq/reactorq/depgraph"
	"github.com/reactorq/reactorq/internal/evaluate"
	"github.com/reactorq/reactorq/internal/rendezvous"
	"github.com/reactorq/reactorq/message"
	"github.com/reactorq/reactorq/pipeline"
)

func TestReactorRoundTripAgainstRedpanda(t *testing.T) {
	b := &RedpandaBroker{RedpandaVersion: "latest"}
	assert.NoError(t, b.Init())
	defer b.Close()

	kcl, err := kgo.NewClient(kgo.SeedBrokers(b.BootstrapServers()...))
	assert.NoError(t, err)
	defer kcl.Close()
	acl := kadm.NewClient(kcl)
	_, err = acl.CreateTopics(context.Background(), 1, 1, nil, "primary", "out")
	assert.NoError(t, err)

	adapter, err := broker.NewKafkaAdapter(b.BootstrapServers())
	assert.NoError(t, err)
	defer adapter.Close()

	out, err := adapter.Consume(context.Background(), "out")
	assert.NoError(t, err)
	defer out.Close()

	r := reactorq.New(
		func(m message.Record) depgraph.DepMap { return nil },
		func(m message.Record, results evaluate.ResultMap) codec.Value {
			obj, _ := codec.Object(m.Value)
			return map[string]any{"ok": obj["data"]}
		},
		reactorq.WithLog(reactorq.NullLogger()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	assert.NoError(t, r.Start(ctx, reactorq.Elements{Adapter: adapter, PrimaryTopic: "primary"}))
	defer r.Close()

	payload, err := codec.Encode(map[string]any{"return-topic": "out", "data": 42.0})
	assert.NoError(t, err)
	pr := kcl.ProduceSync(context.Background(), &kgo.Record{Topic: "primary", Value: payload})
	assert.NoError(t, pr.FirstErr())

	rec, err := out.Next(ctx)
	assert.NoError(t, err)
	assert.Equal[any](t, map[string]any{"ok": 42.0}, rec.Value)
}

func TestPipelineRendezvousAgainstRedpanda(t *testing.T) {
	b := &RedpandaBroker{RedpandaVersion: "latest"}
	assert.NoError(t, b.Init())
	defer b.Close()

	kcl, err := kgo.NewClient(kgo.SeedBrokers(b.BootstrapServers()...), kgo.ConsumeTopics("add"))
	assert.NoError(t, err)
	defer kcl.Close()
	acl := kadm.NewClient(kcl)
	_, err = acl.CreateTopics(context.Background(), 1, 1, nil, "add")
	assert.NoError(t, err)

	adapter, err := broker.NewKafkaAdapter(b.BootstrapServers())
	assert.NoError(t, err)
	defer adapter.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			fetches := kcl.PollFetches(context.Background())
			if errs := fetches.Errors(); len(errs) > 0 {
				return
			}
			it := fetches.RecordIter()
			for !it.Done() {
				rec := it.Next()
				value, err := codec.Decode(rec.Value)
				if err != nil {
					return
				}
				replyTopic, _ := message.ResponseTopic(value)
				payloadVal, _ := message.Payload(value)
				args, _ := payloadVal.([]any)
				sum := 0.0
				for _, a := range args {
					if f, ok := a.(float64); ok {
						sum += f
					}
				}
				payload, _ := codec.Encode(sum)
				_ = adapter.Produce(context.Background(), replyTopic, nil, payload)
				return
			}
		}
	}()

	p := pipeline.New(adapter, rendezvous.Config{Timeout: 10 * time.Second})
	v, err := p.Send(context.Background(), "add", []any{1.0, 2.0, 3.0}, true)
	assert.NoError(t, err)
	assert.Equal(t, 6.0, v)

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("responder goroutine never observed the request")
	}
}
