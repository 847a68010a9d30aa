package messages

import (
	"fmt"
	"strings"
)

// DecodeError reports malformed or schema-violating JSON at a codec
// boundary. It is always recoverable: a caller decoding a batch of stored
// responses can skip the offending record and continue.
//
// Key names the offending JSON field when known, and Discriminator carries
// the rejected "type" tag when the failure is an unknown union variant.
// Use [errors.As] to retrieve it from wrapped errors:
//
//	var decodeErr *messages.DecodeError
//	if errors.As(err, &decodeErr) {
//	    log.Printf("bad field %q", decodeErr.Key)
//	}
type DecodeError struct {
	// Key is the JSON key that was missing or malformed, when known.
	Key string
	// Discriminator is the rejected "type" tag value, when the failure is an
	// unrecognised union variant.
	Discriminator string
	// Expected describes the shape that was required.
	Expected string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	var sb strings.Builder
	sb.WriteString("messages: decode failed")
	if e.Discriminator != "" {
		fmt.Fprintf(&sb, ": unknown discriminator %q", e.Discriminator)
	}
	if e.Key != "" {
		fmt.Fprintf(&sb, ": field %q", e.Key)
	}
	if e.Expected != "" {
		fmt.Fprintf(&sb, ": expected %s", e.Expected)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

// Unwrap returns the underlying cause so callers can use [errors.Is].
func (e *DecodeError) Unwrap() error { return e.Err }

// missingField returns the DecodeError for a required field that was absent
// or held the wrong JSON shape.
func missingField(key, expected string) *DecodeError {
	return &DecodeError{Key: key, Expected: expected}
}
