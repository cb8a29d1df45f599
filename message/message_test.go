package message

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestReturnTopic(t *testing.T) {
	rt, ok := ReturnTopic(map[string]any{"return-topic": "out"})
	assert.True(t, ok)
	assert.Equal(t, "out", rt)

	_, ok = ReturnTopic(map[string]any{})
	assert.False(t, ok)

	_, ok = ReturnTopic("not-an-object")
	assert.False(t, ok)
}

func TestResponseTopic(t *testing.T) {
	rt, ok := ResponseTopic(map[string]any{"response-topic": "abc-123"})
	assert.True(t, ok)
	assert.Equal(t, "abc-123", rt)
}

func TestPayloadPrefersData(t *testing.T) {
	p, ok := Payload(map[string]any{"data": []any{1.0, 2.0}, "args": []any{9.0}})
	assert.True(t, ok)
	assert.Equal[any](t, []any{1.0, 2.0}, p)
}

func TestPayloadFallsBackToArgs(t *testing.T) {
	p, ok := Payload(map[string]any{"args": []any{9.0}})
	assert.True(t, ok)
	assert.Equal[any](t, []any{9.0}, p)
}

func TestNewRequestValue(t *testing.T) {
	v := NewRequestValue("topic-abc", []any{1.0, 2.0, 3.0})
	obj, ok := v.(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "topic-abc", obj["response-topic"])
	assert.Equal[any](t, []any{1.0, 2.0, 3.0}, obj["data"])
}
