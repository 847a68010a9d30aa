// Package messages defines the data model for Anthropic's Messages API and
// the codecs that map its wire JSON to strongly-typed Go values.
//
// The three layers, leaf-first:
//
//   - [Value] — a self-describing JSON value used wherever the wire format
//     does not statically constrain shape (tool-use input).
//   - [ContentBlock] — one unit of model output: a text span, a thinking
//     span, or a structured tool invocation. Decoded from a closed
//     discriminated union keyed on the "type" field.
//   - [Message] — the complete decoded response envelope: identity, role,
//     ordered content blocks, stop reason, and token [Usage] accounting.
//
// [Decode] is the entry point for non-streaming responses. All codec
// failures are reported as [*DecodeError] values usable with [errors.As];
// nothing in this package panics on malformed input.
package messages
