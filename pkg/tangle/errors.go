package tangle

import "fmt"

// InvalidInputError reports a request rejected before any transport was
// attempted: a missing query, an unreadable query file, or an
// unmarshalable data payload.
type InvalidInputError struct {
	Reason string
	Err    error
}

func (e *InvalidInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tangle: invalid input: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("tangle: invalid input: %s", e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return e.Err }
