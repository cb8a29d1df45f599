package main

import (
	"context"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/zerologr"
	"github.com/reactorq/reactorq"
	"github.com/reactorq/reactorq/broker"
	"github.com/reactorq/reactorq/codec"
	"github.com/reactorq/reactorq/depgraph"
	"github.com/reactorq/reactorq/internal/evaluate"
	"github.com/reactorq/reactorq/message"
	applog "github.com/reactorq/reactorq/pkg/log"
)

func init() {
	zerologr.NameFieldName = "logger"
	zerologr.NameSeparator = "/"

	go func() {
		http.ListenAndServe("localhost:6060", nil)
	}()
}

func main() {
	zl := applog.New()
	logr := zerologr.New(zl)
	log := slog.New(applog.NewSlogHandler(logr))

	brokers := []string{"localhost:9092"}
	adapter, err := broker.NewKafkaAdapter(brokers)
	if err != nil {
		log.Error("dial broker", "error", err)
		os.Exit(1)
	}
	defer adapter.Close()

	output := make(chan codec.Value, 64)
	go func() {
		for v := range output {
			log.Info("result", "value", v)
		}
	}()

	r := reactorq.New(
		decideDeps,
		computeResult,
		reactorq.WithLog(log),
		reactorq.WithRendezvousTimeout(10*time.Second),
		reactorq.WithParallelLayers(true),
	)

	ctx, cancel := context.WithCancel(context.Background())
	if err := r.Start(ctx, reactorq.Elements{
		Adapter:      adapter,
		PrimaryTopic: "primary",
		Output:       output,
	}); err != nil {
		log.Error("start reactor", "error", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	cancel()
	if err := r.Close(); err != nil {
		log.Error("reactor shutdown", "error", err)
	}
}

// decideDeps is a sample deps_fn: when the incoming message carries
// {"op": "sum", "values": [...]}, it delegates the addition to a
// collaborating service on the "add" topic.
func decideDeps(m message.Record) depgraph.DepMap {
	obj, ok := codec.Object(m.Value)
	if !ok || obj["op"] != "sum" {
		return depgraph.DepMap{}
	}
	values, _ := obj["values"].([]any)
	return depgraph.DepMap{
		"total": {Topic: "add", Args: values},
	}
}

// computeResult is a sample proc_fn: it forwards whatever "total" resolved
// to, or echoes the original message when there were no dependencies.
func computeResult(m message.Record, results evaluate.ResultMap) codec.Value {
	if r, ok := results["total"]; ok {
		return map[string]any{"sum": r.Result}
	}
	return map[string]any{"echo": m.Value}
}
