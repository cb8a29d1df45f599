package codec

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input Value
	}{
		{"nil", nil},
		{"bool true", true},
		{"bool false", false},
		{"number", 6.0},
		{"string", "sum"},
		{"array", []any{1.0, 2.0, 3.0}},
		{"object", map[string]any{"response-topic": "abc", "data": []any{1.0, 2.0}}},
		{"nested", map[string]any{
			"a": []any{map[string]any{"b": 1.0}, "c", nil, true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := Encode(tt.input)
			assert.NoError(t, err)

			decoded, err := Decode(encoded)
			assert.NoError(t, err)
			assert.Equal(t, tt.input, decoded)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := [][]byte{
		[]byte("{not json"),
		[]byte(`{"a": }`),
		[]byte(""),
	}

	for _, in := range tests {
		_, err := Decode(in)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedPayload))
	}
}

func TestObject(t *testing.T) {
	v, err := Decode([]byte(`{"data": [1,2,3]}`))
	assert.NoError(t, err)

	obj, ok := Object(v)
	assert.True(t, ok)
	assert.Equal[any](t, []any{1.0, 2.0, 3.0}, obj["data"])

	_, ok = Object([]any{1, 2})
	assert.False(t, ok)
}
