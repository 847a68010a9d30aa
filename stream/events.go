package stream

import (
	"encoding/json"
	"fmt"

	"github.com/Ogyeet10/anthropic-go/messages"
)

/*
	SSE STREAMING - WIRE TYPES

	The Messages API streams SSE with "event:" lines naming event types and
	"data:" lines carrying JSON payloads. The payload repeats the event name
	in a "type" field, so the data line alone is enough to discriminate.

	Event lifecycle:
	  message_start → content_block_start → content_block_delta(s) →
	  content_block_stop → message_delta → message_stop
*/

// RawEvent is the top-level envelope for all streaming events. The Type
// field discriminates which optional fields are populated.
type RawEvent struct {
	Type         string                 `json:"type"`                    // Event discriminator
	Message      *messages.Message      `json:"message,omitempty"`       // For "message_start"
	Index        *int                   `json:"index,omitempty"`         // For content_block_start/delta/stop
	ContentBlock *messages.ContentBlock `json:"content_block,omitempty"` // For "content_block_start"
	Delta        *RawDelta              `json:"delta,omitempty"`         // For "content_block_delta" and "message_delta"
	Usage        *messages.Usage        `json:"usage,omitempty"`         // For "message_delta"
	Error        *APIError              `json:"error,omitempty"`         // For "error" events
}

// RawDelta carries the incremental payload of a content_block_delta or
// message_delta event. The Type field discriminates the kind:
//   - "text_delta": Text
//   - "thinking_delta": Thinking
//   - "input_json_delta": PartialJSON (a raw fragment of the tool input;
//     fragments are not independently valid JSON)
//   - "signature_delta": Signature
//   - (no type, on message_delta): StopReason and StopSequence
type RawDelta struct {
	Type         string               `json:"type,omitempty"`
	Text         string               `json:"text,omitempty"`
	Thinking     string               `json:"thinking,omitempty"`
	PartialJSON  string               `json:"partial_json,omitempty"`
	Signature    string               `json:"signature,omitempty"`
	StopReason   *messages.StopReason `json:"stop_reason,omitempty"`
	StopSequence *string              `json:"stop_sequence,omitempty"`
}

// APIError is a server-side failure reported through an "error" event.
type APIError struct {
	Type    string `json:"type"`    // e.g. "overloaded_error", "api_error"
	Message string `json:"message"` // Human-readable description
}

// Error implements the error interface so APIError can travel through the
// aggregator's error transition unchanged.
func (e *APIError) Error() string {
	return fmt.Sprintf("anthropic-go: stream error (%s): %s", e.Type, e.Message)
}

// ParseEvent parses one SSE data payload into a [RawEvent]. Invalid JSON or
// a missing type discriminator fail with [*messages.DecodeError].
//
// A quirk of the wire shape: on a content_block_start event the content_block
// seed for a text or thinking block carries an empty payload and an empty
// input object for tool_use, so it decodes cleanly through the strict
// [messages.ContentBlock] codec.
func ParseEvent(payload string) (*RawEvent, error) {
	var event RawEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, &messages.DecodeError{Expected: "stream event object", Err: err}
	}
	if event.Type == "" {
		return nil, &messages.DecodeError{Key: "type", Expected: "event discriminator"}
	}
	return &event, nil
}
