package combinators

import "errors"

// ErrUnknownCombinator is returned by Registry.Lookup when no combinator is
// registered under the requested name.
var ErrUnknownCombinator = errors.New("combinators: unknown combinator")
