package codec

import (
	"encoding/json"
	"fmt"
)

// Encode serializes v to its compact textual representation.
func Encode(v Value) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode: %w", err)
	}
	return b, nil
}

// Decode parses b and returns the decoded value. It fails with
// ErrMalformedPayload when b does not parse.
func Decode(b []byte) (Value, error) {
	var v Value
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return v, nil
}

// Object asserts that v is a string-keyed mapping, the shape every
// recognized message envelope field lives under.
func Object(v Value) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
