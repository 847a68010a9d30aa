package messages

import (
	"errors"
	"testing"
)

// requireDecodeError asserts err wraps a *DecodeError and returns it.
func requireDecodeError(t *testing.T, err error) *DecodeError {
	t.Helper()
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %T: %v", err, err)
	}
	return decodeErr
}

const fullResponseBody = `{
	"id": "msg_0123",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-20250514",
	"content": [
		{"type": "text", "text": "Checking the weather."},
		{"type": "tool_use", "id": "toolu_01", "name": "get_weather", "input": {"city": "NYC"}}
	],
	"stop_reason": "tool_use",
	"stop_sequence": null,
	"usage": {"input_tokens": 12, "output_tokens": 34}
}`

func TestDecode_FullResponse(t *testing.T) {
	msg, err := Decode([]byte(fullResponseBody))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if msg.ID != "msg_0123" || msg.Type != "message" || msg.Role != "assistant" {
		t.Errorf("envelope identity: got %+v", msg)
	}
	if msg.Model != "claude-sonnet-4-20250514" {
		t.Errorf("model: got %q", msg.Model)
	}
	if len(msg.Content) != 2 {
		t.Fatalf("content: got %d blocks, want 2", len(msg.Content))
	}
	if msg.Content[0].Type != ContentBlockText || msg.Content[1].Type != ContentBlockToolUse {
		t.Errorf("content order not preserved: %+v", msg.Content)
	}
	if msg.StopReason == nil || *msg.StopReason != StopReasonToolUse {
		t.Errorf("stop_reason: got %v", msg.StopReason)
	}
	if msg.StopSequence != nil {
		t.Errorf("stop_sequence: got %v, want nil", *msg.StopSequence)
	}
	if msg.Usage.InputTokens == nil || *msg.Usage.InputTokens != 12 || msg.Usage.OutputTokens != 34 {
		t.Errorf("usage: got %+v", msg.Usage)
	}
}

func TestDecode_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantKey string
	}{
		{"no id", `{"type":"message","role":"assistant","model":"m","content":[],"usage":{"output_tokens":1}}`, "id"},
		{"no type", `{"id":"m1","role":"assistant","model":"m","content":[],"usage":{"output_tokens":1}}`, "type"},
		{"no role", `{"id":"m1","type":"message","model":"m","content":[],"usage":{"output_tokens":1}}`, "role"},
		{"no model", `{"id":"m1","type":"message","role":"assistant","content":[],"usage":{"output_tokens":1}}`, "model"},
		{"no content", `{"id":"m1","type":"message","role":"assistant","model":"m","usage":{"output_tokens":1}}`, "content"},
		{"null content", `{"id":"m1","type":"message","role":"assistant","model":"m","content":null,"usage":{"output_tokens":1}}`, "content"},
		{"no usage", `{"id":"m1","type":"message","role":"assistant","model":"m","content":[]}`, "usage"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.raw))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			decodeErr := requireDecodeError(t, err)
			if decodeErr.Key != tc.wantKey {
				t.Errorf("key: got %q, want %q", decodeErr.Key, tc.wantKey)
			}
		})
	}
}

// TestDecode_NilStopReasonIsValid verifies that an absent stop_reason decodes
// to nil rather than failing, matching an in-progress streamed envelope.
func TestDecode_NilStopReasonIsValid(t *testing.T) {
	raw := `{"id":"m1","type":"message","role":"assistant","model":"m","content":[],"usage":{"output_tokens":0}}`
	msg, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if msg.StopReason != nil {
		t.Errorf("stop_reason: got %v, want nil", *msg.StopReason)
	}
}

// TestDecode_NestedBlockErrorSurfaces verifies a malformed content block
// fails the whole envelope with its own DecodeError, never a partial decode.
func TestDecode_NestedBlockErrorSurfaces(t *testing.T) {
	raw := `{"id":"m1","type":"message","role":"assistant","model":"m",
		"content":[{"type":"alien"}],"usage":{"output_tokens":1}}`
	msg, err := Decode([]byte(raw))
	if msg != nil {
		t.Error("expected nil message on nested block failure")
	}
	decodeErr := requireDecodeError(t, err)
	if decodeErr.Discriminator != "alien" {
		t.Errorf("discriminator: got %q, want %q", decodeErr.Discriminator, "alien")
	}
}

// TestUsage_AbsentVersusZero verifies the optional-counter semantics: an
// omitted cache counter is nil, distinct from an explicit zero.
func TestUsage_AbsentVersusZero(t *testing.T) {
	absent := `{"id":"m1","type":"message","role":"assistant","model":"m","content":[],
		"usage":{"output_tokens":5}}`
	msg, err := Decode([]byte(absent))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if msg.Usage.CacheReadInputTokens != nil {
		t.Errorf("absent counter: got %v, want nil", *msg.Usage.CacheReadInputTokens)
	}

	explicit := `{"id":"m1","type":"message","role":"assistant","model":"m","content":[],
		"usage":{"output_tokens":5,"cache_read_input_tokens":0}}`
	msg, err = Decode([]byte(explicit))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if msg.Usage.CacheReadInputTokens == nil || *msg.Usage.CacheReadInputTokens != 0 {
		t.Errorf("explicit zero counter: got %v, want 0", msg.Usage.CacheReadInputTokens)
	}
}

func TestUsage_MissingOutputTokensFails(t *testing.T) {
	raw := `{"id":"m1","type":"message","role":"assistant","model":"m","content":[],
		"usage":{"input_tokens":3}}`
	_, err := Decode([]byte(raw))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	decodeErr := requireDecodeError(t, err)
	if decodeErr.Key != "output_tokens" {
		t.Errorf("key: got %q, want %q", decodeErr.Key, "output_tokens")
	}
}

func TestUsage_Merge(t *testing.T) {
	input := 10
	usage := Usage{InputTokens: &input, OutputTokens: 2}

	usage.Merge(Usage{OutputTokens: 9})
	if usage.OutputTokens != 9 {
		t.Errorf("output_tokens: got %d, want 9", usage.OutputTokens)
	}
	if usage.InputTokens == nil || *usage.InputTokens != 10 {
		t.Error("earlier input_tokens must survive a delta that omits it")
	}

	cacheRead := 4
	usage.Merge(Usage{OutputTokens: 12, CacheReadInputTokens: &cacheRead})
	if usage.CacheReadInputTokens == nil || *usage.CacheReadInputTokens != 4 {
		t.Errorf("cache_read_input_tokens: got %v, want 4", usage.CacheReadInputTokens)
	}
}

func TestMessage_TextContent(t *testing.T) {
	msg := Message{Content: []ContentBlock{
		{Type: ContentBlockText, Text: "first"},
		{Type: ContentBlockToolUse, ID: "t1", Name: "f"},
		{Type: ContentBlockText, Text: "second"},
	}}
	if got := msg.TextContent(); got != "first\nsecond" {
		t.Errorf("got %q", got)
	}
}

func TestMessage_ToolUses(t *testing.T) {
	msg := Message{Content: []ContentBlock{
		{Type: ContentBlockText, Text: "x"},
		{Type: ContentBlockToolUse, ID: "t1", Name: "f"},
		{Type: ContentBlockToolUse, ID: "t2", Name: "g", InputInvalid: true},
	}}
	uses := msg.ToolUses()
	if len(uses) != 2 || uses[0].ID != "t1" || uses[1].ID != "t2" {
		t.Errorf("got %+v", uses)
	}
	if !uses[1].InputInvalid {
		t.Error("invalid blocks must still be reported")
	}
}
