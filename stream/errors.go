package stream

import "fmt"

// ProtocolViolation reports streaming events arriving out of the allowed
// order or with invalid indices. It is terminal for the stream that produced
// it — the protocol offers no way to resynchronise — and is never silently
// patched over.
type ProtocolViolation struct {
	// Event is the type of the offending event.
	Event string
	// State is the aggregator state when the event arrived.
	State State
	// Reason describes the violated ordering rule.
	Reason string
}

// Error implements the error interface.
func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("anthropic-go: protocol violation: event %q in state %s: %s", e.Event, e.State, e.Reason)
}

// PartialBlockError reports a tool_use block whose accumulated input never
// parsed as JSON, even after repair. It is recorded against that block only;
// under the default policy the stream continues and sibling blocks are
// unaffected.
type PartialBlockError struct {
	// Index is the content block index the failure belongs to.
	Index int
	// Raw is the full accumulated input text that failed to parse.
	Raw string
	// Err is the parse failure.
	Err error
}

// Error implements the error interface.
func (e *PartialBlockError) Error() string {
	return fmt.Sprintf("anthropic-go: tool input for block %d failed to parse: %v", e.Index, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *PartialBlockError) Unwrap() error { return e.Err }
