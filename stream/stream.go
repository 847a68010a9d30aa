package stream

import (
	"iter"

	"github.com/Ogyeet10/anthropic-go/messages"
)

// MessageStream wraps a streaming iterator and provides automatic
// accumulation of events into a final [messages.Message]. It supports both
// range-based iteration for live rendering and a convenience Collect method
// for callers who only want the complete response.
//
// Important: callers must consume the stream, either by iterating with
// Iter() (breaking out early is fine) or by calling Collect(). The producer
// may hold open resources — typically an HTTP response body — that are only
// released when the iterator completes or is abandoned via a loop break.
// Constructing a MessageStream and never iterating it leaks those resources.
type MessageStream struct {
	iterator iter.Seq2[Event, error]
}

// NewMessageStream creates a MessageStream from a raw streaming iterator.
// The iterator yields [Event] values (with nil error) for normal progress
// and a non-nil error to signal a mid-stream failure, which terminates the
// sequence.
func NewMessageStream(iterator iter.Seq2[Event, error]) *MessageStream {
	return &MessageStream{iterator: iterator}
}

// Iter returns the underlying iterator for use with range-over-func loops.
//
// Example:
//
//	for event, err := range stream.Iter() {
//	    if err != nil { // handle error
//	    }
//	    fmt.Print(event.Text)
//	}
func (stream *MessageStream) Iter() iter.Seq2[Event, error] {
	return stream.iterator
}

// Collect consumes the entire stream and returns the final assembled
// envelope. On a mid-stream failure it returns the error together with the
// latest envelope snapshot, which may be nil when the stream failed before
// message_start — so a caller can still render the partial result of a
// cancelled or broken stream.
func (stream *MessageStream) Collect() (*messages.Message, error) {
	var latest *messages.Message

	for event, err := range stream.iterator {
		if err != nil {
			return latest, err
		}
		if event.Message != nil {
			latest = event.Message
		}
	}

	return latest, nil
}
