package stream

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/Ogyeet10/anthropic-go/internal/utils"
	"github.com/Ogyeet10/anthropic-go/messages"
)

// State is the aggregator's position in the streaming lifecycle.
type State int

const (
	// StateIdle means no event has been fed yet.
	StateIdle State = iota
	// StateStarted means message_start has arrived; no block has opened yet.
	StateStarted
	// StateBlockOpen means at least one content block has been opened.
	StateBlockOpen
	// StateCompleted means message_stop was accepted; the envelope is final.
	StateCompleted
	// StateErrored means the stream terminated abnormally; no further events
	// are accepted.
	StateErrored
)

// String returns the state name for diagnostics.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarted:
		return "started"
	case StateBlockOpen:
		return "block_open"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// EventType identifies the kind of delta carried by an [Event].
type EventType string

const (
	// EventMessageStart carries the envelope skeleton.
	EventMessageStart EventType = "message_start"
	// EventBlockStart announces a new content block; Block holds the seed.
	EventBlockStart EventType = "content_block_start"
	// EventTextDelta carries an incremental text fragment.
	EventTextDelta EventType = "text_delta"
	// EventThinkingDelta carries an incremental thinking fragment.
	EventThinkingDelta EventType = "thinking_delta"
	// EventSignatureDelta carries an incremental signature fragment of a
	// thinking block.
	EventSignatureDelta EventType = "signature_delta"
	// EventInputJSONDelta carries a raw fragment of a tool_use input.
	EventInputJSONDelta EventType = "input_json_delta"
	// EventBlockStop finalises a content block; Block holds the result.
	EventBlockStop EventType = "content_block_stop"
	// EventMessageDelta updates stop reason, stop sequence, or usage.
	EventMessageDelta EventType = "message_delta"
	// EventMessageStop is the terminal event of a successful stream.
	EventMessageStop EventType = "message_stop"
	// EventPing is a keepalive; it never mutates the aggregator.
	EventPing EventType = "ping"
)

// Event is the caller-facing notification emitted for every fed wire event.
// Message always carries a snapshot of the envelope as built so far (nil
// before message_start), so a UI can re-render from any single event; the
// delta fields let it patch incrementally instead.
type Event struct {
	Type  EventType
	Index int // Block index, for block-scoped events

	// Exactly one of the following delta payloads is set, matching Type.
	Text        string // EventTextDelta
	Thinking    string // EventThinkingDelta
	Signature   string // EventSignatureDelta
	PartialJSON string // EventInputJSONDelta

	// Block is the seed on EventBlockStart and the finalised block on
	// EventBlockStop.
	Block *messages.ContentBlock

	// StopReason and Usage are set on EventMessageDelta when the wire event
	// carried them.
	StopReason *messages.StopReason
	Usage      *messages.Usage

	// Message is a snapshot of the envelope after applying this event.
	// Finalised blocks are immutable; the snapshot shares them.
	Message *messages.Message
}

// Option configures an [Aggregator].
type Option func(*Aggregator)

// WithStrictBlocks makes a tool input parse failure at content_block_stop
// fail the whole stream instead of flagging only the offending block. Use it
// when a partially-usable message is worse than no message.
func WithStrictBlocks() Option {
	return func(a *Aggregator) { a.strictBlocks = true }
}

// Aggregator incrementally builds a [messages.Message] from streaming
// events. It owns the in-progress envelope exclusively until the stream
// completes; after that the envelope is immutable. Not safe for concurrent
// Feed calls — the transport read loop is the only producer.
type Aggregator struct {
	state       State
	message     messages.Message
	haveMessage bool

	// open is the block currently accumulating deltas; nil between a
	// content_block_stop and the next content_block_start.
	open *blockBuilder
	// nextIndex is the only index the next content_block_start may carry.
	nextIndex int

	blockErrs    []*PartialBlockError
	strictBlocks bool
	err          error
}

// NewAggregator returns an aggregator in [StateIdle].
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// blockBuilder accumulates one content block's deltas until its stop event.
// Tool input fragments are buffered raw: individual fragments are not valid
// JSON and must only be parsed once concatenated.
type blockBuilder struct {
	index     int
	blockType messages.ContentBlockType
	id        string
	name      string
	signature string
	text      strings.Builder
	input     strings.Builder
}

// State reports the current lifecycle state.
func (a *Aggregator) State() State { return a.state }

// BlockErrors returns the block-local failures recorded so far, in block
// order. Empty when every block finalised cleanly.
func (a *Aggregator) BlockErrors() []*PartialBlockError {
	return slices.Clone(a.blockErrs)
}

// Message returns a snapshot of the envelope as built so far, or nil before
// message_start. After [StateCompleted] it is the final message.
func (a *Aggregator) Message() *messages.Message { return a.snapshot() }

// Result resolves the stream outcome. In [StateCompleted] it returns the
// final envelope; in [StateErrored] it returns the terminal error alongside
// whatever partial envelope had been built, so callers can distinguish
// "cancelled with partial data available" from "completed normally". In any
// other state the stream is still in progress and an error says so.
func (a *Aggregator) Result() (*messages.Message, error) {
	switch a.state {
	case StateCompleted:
		return a.snapshot(), nil
	case StateErrored:
		return a.snapshot(), a.err
	default:
		return nil, fmt.Errorf("anthropic-go: stream still in progress (state %s)", a.state)
	}
}

// Cancel drives the aggregator into [StateErrored] with cause (defaulting to
// [context.Canceled]), releasing it from accepting further events. A no-op
// once the stream already reached a terminal state, so a completed envelope
// is never retroactively invalidated.
func (a *Aggregator) Cancel(cause error) {
	if a.state == StateCompleted || a.state == StateErrored {
		return
	}
	if cause == nil {
		cause = context.Canceled
	}
	a.fail(cause)
}

// Feed applies one wire event. It returns the caller-facing [Event] for live
// rendering, or the terminal error when the event violates the protocol,
// reports a server-side failure, or (under [WithStrictBlocks]) carries an
// unparseable tool input. After an error the aggregator is in [StateErrored]
// and rejects everything.
func (a *Aggregator) Feed(raw *RawEvent) (Event, error) {
	if a.state == StateCompleted || a.state == StateErrored {
		// Terminal states are final: reject the event without touching the
		// stored state or error, so a completed envelope stays valid and an
		// earlier terminal cause is never overwritten by a later violation.
		return Event{}, &ProtocolViolation{Event: raw.Type, State: a.state, Reason: "event received after terminal state"}
	}

	switch raw.Type {
	case "ping":
		// Keepalive; no state change.
		return Event{Type: EventPing, Message: a.snapshot()}, nil

	case "message_start":
		if a.state != StateIdle {
			return Event{}, a.violation(raw.Type, "duplicate message_start")
		}
		if raw.Message == nil {
			return Event{}, a.violation(raw.Type, "missing message envelope")
		}
		a.message = *raw.Message
		a.haveMessage = true
		a.state = StateStarted
		return Event{Type: EventMessageStart, Message: a.snapshot()}, nil

	case "content_block_start":
		if a.state != StateStarted && a.state != StateBlockOpen {
			return Event{}, a.violation(raw.Type, "content_block_start before message_start")
		}
		if a.open != nil {
			return Event{}, a.violation(raw.Type, fmt.Sprintf("block %d is still open", a.open.index))
		}
		if raw.Index == nil {
			return Event{}, a.violation(raw.Type, "missing block index")
		}
		if *raw.Index != a.nextIndex {
			return Event{}, a.violation(raw.Type, fmt.Sprintf("block index %d, expected %d", *raw.Index, a.nextIndex))
		}
		if raw.ContentBlock == nil {
			return Event{}, a.violation(raw.Type, "missing content_block seed")
		}

		seed := raw.ContentBlock
		a.open = &blockBuilder{
			index:     *raw.Index,
			blockType: seed.Type,
			id:        seed.ID,
			name:      seed.Name,
			signature: seed.Signature,
		}
		// Seeds may carry initial payload (usually empty, but not guaranteed).
		a.open.text.WriteString(seed.Text)
		a.open.text.WriteString(seed.Thinking)

		a.nextIndex++
		a.state = StateBlockOpen
		return Event{Type: EventBlockStart, Index: a.open.index, Block: seed, Message: a.snapshot()}, nil

	case "content_block_delta":
		builder, err := a.openBlockFor(raw)
		if err != nil {
			return Event{}, err
		}
		if raw.Delta == nil {
			return Event{}, a.violation(raw.Type, "missing delta payload")
		}

		switch raw.Delta.Type {
		case "text_delta":
			if builder.blockType != messages.ContentBlockText {
				return Event{}, a.violation(raw.Type, fmt.Sprintf("text_delta for %q block", builder.blockType))
			}
			builder.text.WriteString(raw.Delta.Text)
			return Event{Type: EventTextDelta, Index: builder.index, Text: raw.Delta.Text, Message: a.snapshot()}, nil

		case "thinking_delta":
			if builder.blockType != messages.ContentBlockThinking {
				return Event{}, a.violation(raw.Type, fmt.Sprintf("thinking_delta for %q block", builder.blockType))
			}
			builder.text.WriteString(raw.Delta.Thinking)
			return Event{Type: EventThinkingDelta, Index: builder.index, Thinking: raw.Delta.Thinking, Message: a.snapshot()}, nil

		case "input_json_delta":
			if builder.blockType != messages.ContentBlockToolUse {
				return Event{}, a.violation(raw.Type, fmt.Sprintf("input_json_delta for %q block", builder.blockType))
			}
			// Fragments are buffered verbatim and parsed only at block stop.
			builder.input.WriteString(raw.Delta.PartialJSON)
			return Event{Type: EventInputJSONDelta, Index: builder.index, PartialJSON: raw.Delta.PartialJSON, Message: a.snapshot()}, nil

		case "signature_delta":
			if builder.blockType != messages.ContentBlockThinking {
				return Event{}, a.violation(raw.Type, fmt.Sprintf("signature_delta for %q block", builder.blockType))
			}
			builder.signature += raw.Delta.Signature
			return Event{Type: EventSignatureDelta, Index: builder.index, Signature: raw.Delta.Signature, Message: a.snapshot()}, nil

		default:
			return Event{}, a.violation(raw.Type, fmt.Sprintf("unknown delta type %q", raw.Delta.Type))
		}

	case "content_block_stop":
		builder, err := a.openBlockFor(raw)
		if err != nil {
			return Event{}, err
		}

		block, blockErr := a.finalizeBlock(builder)
		if blockErr != nil && a.strictBlocks {
			a.fail(blockErr)
			return Event{}, blockErr
		}

		a.message.Content = append(a.message.Content, block)
		a.open = nil
		return Event{Type: EventBlockStop, Index: builder.index, Block: &block, Message: a.snapshot()}, nil

	case "message_delta":
		if a.state != StateStarted && a.state != StateBlockOpen {
			return Event{}, a.violation(raw.Type, "message_delta before message_start")
		}

		event := Event{Type: EventMessageDelta}
		if raw.Delta != nil {
			if raw.Delta.StopReason != nil {
				a.message.StopReason = raw.Delta.StopReason
				event.StopReason = raw.Delta.StopReason
			}
			if raw.Delta.StopSequence != nil {
				a.message.StopSequence = raw.Delta.StopSequence
			}
		}
		if raw.Usage != nil {
			a.message.Usage.Merge(*raw.Usage)
			event.Usage = raw.Usage
		}
		event.Message = a.snapshot()
		return event, nil

	case "message_stop":
		if a.state != StateStarted && a.state != StateBlockOpen {
			return Event{}, a.violation(raw.Type, "message_stop before message_start")
		}
		if a.open != nil {
			return Event{}, a.violation(raw.Type, fmt.Sprintf("block %d never received content_block_stop", a.open.index))
		}
		// An envelope without a stop reason is incomplete; failing loudly
		// beats handing the caller a silently truncated result.
		if a.message.StopReason == nil {
			return Event{}, a.violation(raw.Type, "stop_reason is still null")
		}
		a.state = StateCompleted
		return Event{Type: EventMessageStop, Message: a.snapshot()}, nil

	case "error":
		var cause error
		if raw.Error != nil {
			cause = raw.Error
		} else {
			cause = fmt.Errorf("anthropic-go: stream error event without detail")
		}
		a.fail(cause)
		return Event{}, cause

	default:
		// Unknown event kinds pass through without mutating state, keeping
		// the aggregator forward-compatible with protocol additions.
		return Event{Type: EventType(raw.Type), Message: a.snapshot()}, nil
	}
}

// openBlockFor validates that a block-scoped event targets the currently
// open block and returns its builder.
func (a *Aggregator) openBlockFor(raw *RawEvent) (*blockBuilder, error) {
	if a.state != StateBlockOpen || a.open == nil {
		return nil, a.violation(raw.Type, "no content block is open")
	}
	if raw.Index == nil {
		return nil, a.violation(raw.Type, "missing block index")
	}
	if *raw.Index != a.open.index {
		return nil, a.violation(raw.Type, fmt.Sprintf("block index %d, open block is %d", *raw.Index, a.open.index))
	}
	return a.open, nil
}

// finalizeBlock converts a builder into its finished content block. For
// tool_use the full accumulated buffer is parsed as one JSON object — first
// as-is, then through jsonrepair (inside ParseStringAs) — and a block whose
// input still fails is flagged InputInvalid and recorded, not dropped.
func (a *Aggregator) finalizeBlock(builder *blockBuilder) (messages.ContentBlock, *PartialBlockError) {
	switch builder.blockType {
	case messages.ContentBlockToolUse:
		buf := builder.input.String()
		if buf == "" {
			// No input deltas at all; the tool takes no arguments.
			buf = "{}"
		}

		block := messages.ContentBlock{
			Type: messages.ContentBlockToolUse,
			ID:   builder.id,
			Name: builder.name,
		}

		input, err := utils.ParseStringAs[map[string]messages.Value](buf)
		if err != nil {
			blockErr := &PartialBlockError{Index: builder.index, Raw: buf, Err: err}
			a.blockErrs = append(a.blockErrs, blockErr)
			block.InputInvalid = true
			block.RawInput = buf
			return block, blockErr
		}

		block.Input = input
		return block, nil

	case messages.ContentBlockThinking:
		return messages.ContentBlock{
			Type:      messages.ContentBlockThinking,
			Thinking:  builder.text.String(),
			Signature: builder.signature,
		}, nil

	default:
		return messages.ContentBlock{
			Type: messages.ContentBlockText,
			Text: builder.text.String(),
		}, nil
	}
}

// snapshot returns a copy of the envelope with its own content slice.
// Finalised blocks are never mutated afterwards, so sharing them is safe.
func (a *Aggregator) snapshot() *messages.Message {
	if !a.haveMessage {
		return nil
	}
	copied := a.message
	copied.Content = slices.Clone(a.message.Content)
	return &copied
}

// violation records a protocol violation, moves to StateErrored, and returns
// the error for the caller.
func (a *Aggregator) violation(event, reason string) error {
	v := &ProtocolViolation{Event: event, State: a.state, Reason: reason}
	a.fail(v)
	return v
}

func (a *Aggregator) fail(err error) {
	a.state = StateErrored
	a.err = err
}
