package messages

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// StopReason describes why generation ended.
type StopReason string

const (
	// StopReasonEndTurn means the model reached a natural end of turn.
	StopReasonEndTurn StopReason = "end_turn"
	// StopReasonMaxTokens means the max_tokens limit was reached.
	StopReasonMaxTokens StopReason = "max_tokens"
	// StopReasonStopSequence means a caller-provided stop sequence matched.
	StopReasonStopSequence StopReason = "stop_sequence"
	// StopReasonToolUse means the model stopped to invoke one or more tools.
	StopReasonToolUse StopReason = "tool_use"
)

// Usage reports token consumption for a response. OutputTokens is always
// present on the wire; the remaining counters are optional and absent is not
// the same as zero — a response without cache counters must not be counted
// as a 0% cache hit. Counters are monotonically non-decreasing as a stream
// re-reports usage; the final values are authoritative.
type Usage struct {
	InputTokens              *int `json:"input_tokens,omitempty"`
	OutputTokens             int  `json:"output_tokens"`
	CacheCreationInputTokens *int `json:"cache_creation_input_tokens,omitempty"`
	CacheReadInputTokens     *int `json:"cache_read_input_tokens,omitempty"`
}

// usageWire detects a missing output_tokens field, which the lenient struct
// default of 0 would otherwise hide.
type usageWire struct {
	InputTokens              *int `json:"input_tokens"`
	OutputTokens             *int `json:"output_tokens"`
	CacheCreationInputTokens *int `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     *int `json:"cache_read_input_tokens"`
}

// UnmarshalJSON decodes usage leniently: optional counters stay nil when
// absent, but a missing output_tokens fails.
func (u *Usage) UnmarshalJSON(data []byte) error {
	var wire usageWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return &DecodeError{Key: "usage", Expected: "usage object", Err: err}
	}
	if wire.OutputTokens == nil {
		return missingField("output_tokens", "integer")
	}
	*u = Usage{
		InputTokens:              wire.InputTokens,
		OutputTokens:             *wire.OutputTokens,
		CacheCreationInputTokens: wire.CacheCreationInputTokens,
		CacheReadInputTokens:     wire.CacheReadInputTokens,
	}
	return nil
}

// Merge folds a later usage report into u. OutputTokens takes the newer
// value; optional counters are only overwritten when the report carries
// them, so an earlier non-nil counter survives a delta that omits it.
func (u *Usage) Merge(report Usage) {
	u.OutputTokens = report.OutputTokens
	if report.InputTokens != nil {
		u.InputTokens = report.InputTokens
	}
	if report.CacheCreationInputTokens != nil {
		u.CacheCreationInputTokens = report.CacheCreationInputTokens
	}
	if report.CacheReadInputTokens != nil {
		u.CacheReadInputTokens = report.CacheReadInputTokens
	}
}

// Message is the complete decoded response envelope. ID is an opaque token
// whose format may evolve. Content order is preserved exactly as sent.
// StopReason is nil only while a stream is still in progress; a completed
// response always carries one.
type Message struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`  // always "message"
	Role         string         `json:"role"`  // always "assistant" on responses
	Model        string         `json:"model"` // echoes the request model
	Content      []ContentBlock `json:"content"`
	StopReason   *StopReason    `json:"stop_reason"`
	StopSequence *string        `json:"stop_sequence"`
	Usage        Usage          `json:"usage"`
}

// messageWire validates required envelope fields before committing to the
// typed form. Content and Usage use json.RawMessage so their own codecs run
// only after presence has been established, keeping error attribution exact.
type messageWire struct {
	ID           *string         `json:"id"`
	Type         *string         `json:"type"`
	Role         *string         `json:"role"`
	Model        *string         `json:"model"`
	Content      json.RawMessage `json:"content"`
	StopReason   *StopReason     `json:"stop_reason"`
	StopSequence *string         `json:"stop_sequence"`
	Usage        json.RawMessage `json:"usage"`
}

// UnmarshalJSON decodes the full non-streaming response shape. Missing
// id/type/role/model/content/usage fail with [*DecodeError]; missing
// stop_reason and stop_sequence are valid and decode to nil.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire messageWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return &DecodeError{Expected: "message object", Err: err}
	}

	switch {
	case wire.ID == nil:
		return missingField("id", "string")
	case wire.Type == nil:
		return missingField("type", "string")
	case wire.Role == nil:
		return missingField("role", "string")
	case wire.Model == nil:
		return missingField("model", "string")
	// A literal null still lands in the raw message, so it must be rejected
	// alongside absence.
	case wire.Content == nil || bytes.Equal(wire.Content, jsonNull):
		return missingField("content", "array of content blocks")
	case wire.Usage == nil:
		return missingField("usage", "usage object")
	}

	var content []ContentBlock
	if err := json.Unmarshal(wire.Content, &content); err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return decodeErr
		}
		return &DecodeError{Key: "content", Expected: "array of content blocks", Err: err}
	}

	var usage Usage
	if err := json.Unmarshal(wire.Usage, &usage); err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return decodeErr
		}
		return &DecodeError{Key: "usage", Expected: "usage object", Err: err}
	}

	*m = Message{
		ID:           *wire.ID,
		Type:         *wire.Type,
		Role:         *wire.Role,
		Model:        *wire.Model,
		Content:      content,
		StopReason:   wire.StopReason,
		StopSequence: wire.StopSequence,
		Usage:        usage,
	}
	return nil
}

// Decode parses one complete non-streaming response body. All failures are
// [*DecodeError] values; the input is never partially applied.
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return nil, decodeErr
		}
		return nil, &DecodeError{Expected: "message object", Err: err}
	}
	return &msg, nil
}

// TextContent joins the text of all text blocks with newlines, mirroring how
// multi-block responses are usually displayed.
func (m *Message) TextContent() string {
	var parts []string
	for _, block := range m.Content {
		if block.Type == ContentBlockText {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// ToolUses returns the tool_use blocks in content order, including blocks
// flagged InputInvalid by the stream aggregator so callers can report them.
func (m *Message) ToolUses() []ContentBlock {
	var uses []ContentBlock
	for _, block := range m.Content {
		if block.Type == ContentBlockToolUse {
			uses = append(uses, block)
		}
	}
	return uses
}
