// Package codec translates between broker record bytes and the dynamic
// values that flow through a reactor: primary messages, subtask request
// envelopes, and rendezvous replies.
package codec

import "errors"

// ErrMalformedPayload is returned by Decode when bytes do not parse as the
// wire format.
var ErrMalformedPayload = errors.New("codec: malformed payload")

// Value is the dynamic payload type. After Decode it is always one of: nil,
// bool, float64, string, []any, or map[string]any — the exact shapes
// encoding/json produces when unmarshaling into interface{}. This is the
// "sum type over scalars, sequences, and string-keyed mappings" the target
// representation calls for, expressed with Go's native JSON decoding shapes
// rather than a hand-rolled tagged union.
type Value = any
