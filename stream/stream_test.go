package stream

import (
	"errors"
	"testing"

	"github.com/Ogyeet10/anthropic-go/messages"
)

// driveAggregator returns a MessageStream that replays payloads through a
// fresh aggregator, mirroring how the HTTP client wires the two together.
func driveAggregator(t *testing.T, payloads []string) *MessageStream {
	t.Helper()
	agg := NewAggregator()
	return NewMessageStream(func(yield func(Event, error) bool) {
		for _, payload := range payloads {
			raw, err := ParseEvent(payload)
			if err != nil {
				yield(Event{}, err)
				return
			}
			event, err := agg.Feed(raw)
			if err != nil {
				yield(Event{}, err)
				return
			}
			if !yield(event, nil) {
				return
			}
		}
	})
}

var happyPathPayloads = []string{
	messageStartPayload,
	`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
	`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Hel"}}`,
	`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"lo"}}`,
	`{"type":"content_block_stop","index":0}`,
	`{"type":"message_delta","delta":{"stop_reason":"end_turn"},"usage":{"output_tokens":12}}`,
	`{"type":"message_stop"}`,
}

func TestMessageStream_Collect(t *testing.T) {
	msg, err := driveAggregator(t, happyPathPayloads).Collect()
	if err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	if msg == nil || msg.TextContent() != "Hello" {
		t.Errorf("collected message: got %+v", msg)
	}
	if msg.StopReason == nil || *msg.StopReason != messages.StopReasonEndTurn {
		t.Errorf("stop_reason: got %v", msg.StopReason)
	}
}

func TestMessageStream_Iter(t *testing.T) {
	var text string
	var sawStop bool
	for event, err := range driveAggregator(t, happyPathPayloads).Iter() {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		switch event.Type {
		case EventTextDelta:
			text += event.Text
		case EventMessageStop:
			sawStop = true
		}
	}
	if text != "Hello" {
		t.Errorf("accumulated text: got %q", text)
	}
	if !sawStop {
		t.Error("message_stop event never yielded")
	}
}

// TestMessageStream_CollectPartialOnError verifies Collect hands back the
// latest envelope snapshot alongside a mid-stream error.
func TestMessageStream_CollectPartialOnError(t *testing.T) {
	payloads := []string{
		messageStartPayload,
		`{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`,
		`{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"partial"}}`,
		`{"type":"error","error":{"type":"overloaded_error","message":"try again"}}`,
	}

	msg, err := driveAggregator(t, payloads).Collect()
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if msg == nil || msg.ID != "msg_1" {
		t.Errorf("partial envelope: got %+v", msg)
	}
}

// TestMessageStream_CollectNilBeforeStart verifies the snapshot is nil when
// the stream fails before message_start ever arrived.
func TestMessageStream_CollectNilBeforeStart(t *testing.T) {
	payloads := []string{
		`{"type":"error","error":{"type":"api_error","message":"boom"}}`,
	}
	msg, err := driveAggregator(t, payloads).Collect()
	if err == nil {
		t.Fatal("expected error")
	}
	if msg != nil {
		t.Errorf("envelope: got %+v, want nil", msg)
	}
}

func TestMessageStream_IterBreakEarly(t *testing.T) {
	count := 0
	for event, err := range driveAggregator(t, happyPathPayloads).Iter() {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		count++
		if event.Type == EventBlockStart {
			break
		}
	}
	if count != 2 {
		t.Errorf("events consumed: got %d, want 2", count)
	}
}
