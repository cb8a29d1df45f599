// Package message defines the decoded broker record type the reactor and
// the rest of reactorq operate on, plus accessors for the handful of
// well-known fields the protocol recognizes inside a message's value.
package message

import "github.com/reactorq/reactorq/codec"

// Record is a received or sent broker record, decoded.
type Record struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     codec.Value
}

// ReturnTopic returns the "return-topic" field of v, if v is an object and
// the field is a non-empty string.
func ReturnTopic(v codec.Value) (string, bool) {
	return stringField(v, "return-topic")
}

// ResponseTopic returns the "response-topic" field of v, the ephemeral
// reply address an orchestrator injects into an outbound subtask request.
func ResponseTopic(v codec.Value) (string, bool) {
	return stringField(v, "response-topic")
}

// Payload returns the "data" field of v, falling back to "args" when "data"
// is absent. Both are recognized spellings for a subtask's argument payload.
func Payload(v codec.Value) (codec.Value, bool) {
	obj, ok := codec.Object(v)
	if !ok {
		return nil, false
	}
	if d, ok := obj["data"]; ok {
		return d, true
	}
	if a, ok := obj["args"]; ok {
		return a, true
	}
	return nil, false
}

func stringField(v codec.Value, field string) (string, bool) {
	obj, ok := codec.Object(v)
	if !ok {
		return "", false
	}
	s, ok := obj[field].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// NewRequestValue builds the outbound request envelope a subtask invocation
// sends: { "response-topic": responseTopic, "data": args }.
func NewRequestValue(responseTopic string, args any) codec.Value {
	return map[string]any{
		"response-topic": responseTopic,
		"data":           args,
	}
}
