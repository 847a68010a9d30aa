package messages

import (
	"encoding/json"
	"fmt"

	"github.com/Ogyeet10/anthropic-go/internal/utils"
)

// ContentBlockType discriminates the variants of [ContentBlock].
type ContentBlockType string

const (
	// ContentBlockText is a plain text span.
	ContentBlockText ContentBlockType = "text"
	// ContentBlockToolUse is a structured tool invocation.
	ContentBlockToolUse ContentBlockType = "tool_use"
	// ContentBlockThinking is an extended-thinking span.
	ContentBlockThinking ContentBlockType = "thinking"
)

// ContentBlock is one unit of model output. It is a closed discriminated
// union: the Type field selects which of the remaining fields are
// meaningful. Decoding rejects unknown discriminators with [*DecodeError]
// instead of guessing, so new server-introduced block kinds surface as
// errors rather than silently dropped content.
//
//   - "text": Text is set.
//   - "thinking": Thinking is set; Signature carries the round-trip
//     signature when the server provides one.
//   - "tool_use": ID, Name, and Input are set. Input is decoded
//     field-by-field into [Value] because its top level is always a JSON
//     object while the field shapes are model-chosen.
type ContentBlock struct {
	Type ContentBlockType `json:"type"`

	// Text is the payload for "text" blocks.
	Text string `json:"text,omitempty"`

	// Thinking and Signature are the payload for "thinking" blocks.
	Thinking  string `json:"thinking,omitempty"`
	Signature string `json:"signature,omitempty"`

	// ID, Name, and Input are the payload for "tool_use" blocks.
	ID    string           `json:"id,omitempty"`
	Name  string           `json:"name,omitempty"`
	Input map[string]Value `json:"input,omitempty"`

	// RawInput holds the accumulated input fragments of a streamed tool_use
	// block whose buffer could not be parsed as JSON. InputInvalid marks the
	// block as failed. Both are populated only by the stream aggregator's
	// partial-failure path and never travel on the wire.
	RawInput     string `json:"-"`
	InputInvalid bool   `json:"-"`
}

// contentBlockWire mirrors the wire object with pointer fields so that
// missing required keys are distinguishable from present-but-empty values.
type contentBlockWire struct {
	Type      *string                    `json:"type"`
	Text      *string                    `json:"text"`
	Thinking  *string                    `json:"thinking"`
	Signature string                     `json:"signature"`
	ID        *string                    `json:"id"`
	Name      *string                    `json:"name"`
	Input     map[string]json.RawMessage `json:"input"`
}

// UnmarshalJSON decodes one content block, validating the discriminator and
// the fields it requires. Failures carry the offending key or discriminator
// for diagnostics.
func (b *ContentBlock) UnmarshalJSON(data []byte) error {
	var wire contentBlockWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return &DecodeError{Expected: "content block object", Err: err}
	}
	if wire.Type == nil {
		return missingField("type", "content block discriminator")
	}

	switch ContentBlockType(*wire.Type) {
	case ContentBlockText:
		if wire.Text == nil {
			return missingField("text", "string")
		}
		*b = ContentBlock{Type: ContentBlockText, Text: *wire.Text}
		return nil

	case ContentBlockThinking:
		if wire.Thinking == nil {
			return missingField("thinking", "string")
		}
		*b = ContentBlock{Type: ContentBlockThinking, Thinking: *wire.Thinking, Signature: wire.Signature}
		return nil

	case ContentBlockToolUse:
		if wire.ID == nil {
			return missingField("id", "string")
		}
		if wire.Name == nil {
			return missingField("name", "string")
		}
		if wire.Input == nil {
			return missingField("input", "object")
		}
		input := make(map[string]Value, len(wire.Input))
		for key, raw := range wire.Input {
			var val Value
			if err := json.Unmarshal(raw, &val); err != nil {
				return &DecodeError{Key: "input." + key, Expected: "JSON value", Err: err}
			}
			input[key] = val
		}
		*b = ContentBlock{Type: ContentBlockToolUse, ID: *wire.ID, Name: *wire.Name, Input: input}
		return nil

	default:
		return &DecodeError{Discriminator: *wire.Type, Expected: "text, thinking, or tool_use"}
	}
}

// MarshalJSON is the structural inverse of UnmarshalJSON. Each variant is
// emitted through its own wire struct so the discriminator always appears
// first and fields belonging to other variants are never serialised.
func (b ContentBlock) MarshalJSON() ([]byte, error) {
	switch b.Type {
	case ContentBlockText:
		return json.Marshal(struct {
			Type ContentBlockType `json:"type"`
			Text string           `json:"text"`
		}{b.Type, b.Text})

	case ContentBlockThinking:
		return json.Marshal(struct {
			Type      ContentBlockType `json:"type"`
			Thinking  string           `json:"thinking"`
			Signature string           `json:"signature,omitempty"`
		}{b.Type, b.Thinking, b.Signature})

	case ContentBlockToolUse:
		input := b.Input
		if input == nil {
			input = map[string]Value{}
		}
		return json.Marshal(struct {
			Type  ContentBlockType `json:"type"`
			ID    string           `json:"id"`
			Name  string           `json:"name"`
			Input map[string]Value `json:"input"`
		}{b.Type, b.ID, b.Name, input})

	default:
		return nil, fmt.Errorf("messages: cannot marshal content block of type %q", b.Type)
	}
}

// ToolInput decodes a tool_use block's input into the caller's own struct
// type. The input map is re-serialised and parsed with the repair-capable
// parser, so model output with minor JSON defects still dispatches. For a
// block flagged InputInvalid the raw accumulated text is parsed instead,
// giving the repair pass a chance to salvage it.
func ToolInput[T any](block ContentBlock) (T, error) {
	var zero T
	if block.Type != ContentBlockToolUse {
		return zero, fmt.Errorf("messages: ToolInput called on %q block", block.Type)
	}

	raw := block.RawInput
	if !block.InputInvalid {
		encoded, err := json.Marshal(Object(block.Input))
		if err != nil {
			return zero, fmt.Errorf("messages: failed to re-encode tool input: %w", err)
		}
		raw = string(encoded)
	}

	return utils.ParseStringAs[T](raw)
}
