package anthropic

import (
	"context"
	"fmt"
	"io"

	"github.com/Ogyeet10/anthropic-go/internal/utils"
	"github.com/Ogyeet10/anthropic-go/messages"
	"github.com/Ogyeet10/anthropic-go/observability"
	"github.com/Ogyeet10/anthropic-go/stream"
)

// StreamMessage sends a streaming request (stream=true) and returns a
// [stream.MessageStream] that yields one [stream.Event] per SSE event as it
// arrives, each carrying an envelope snapshot built by a dedicated
// [stream.Aggregator].
//
// Pre-stream errors (missing API key, non-2xx HTTP response, network
// failure) are returned immediately as a non-nil error. Mid-stream errors —
// server "error" events, SSE parse failures, protocol violations, context
// cancellation — are yielded through the iterator, after which the sequence
// ends. A tool_use block whose input fails to parse is block-local and does
// not terminate the stream unless [stream.WithStrictBlocks] is passed.
//
// SSE lifecycle:
//
//	message_start → content_block_start → content_block_delta(s) →
//	content_block_stop → message_delta → message_stop
func (c *Client) StreamMessage(ctx context.Context, request messages.MessageRequest, opts ...stream.Option) (*stream.MessageStream, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, "anthropic"),
			observability.String(observability.AttrLLMEndpoint, c.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Bool(observability.AttrLLMStreaming, true),
		)
	}

	if observer != nil {
		observer.Trace(ctx, "Anthropic client preparing streaming request",
			observability.String(observability.AttrLLMProvider, "anthropic"),
			observability.String(observability.AttrLLMEndpoint, c.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.Int(observability.AttrRequestMessagesCount, len(request.Messages)),
			observability.Int(observability.AttrRequestToolsCount, len(request.Tools)),
		)
	}

	// Guard against missing credentials before making a network call.
	if c.apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	streamURL := c.baseURL + messagesEndpoint
	request.Stream = true

	// Send the streaming request — body is left open for SSE reading.
	// Pass empty apiKey so DoPostStream does not inject a Bearer token; the
	// API authenticates via x-api-key (set inside buildHeaders).
	httpResponse, err := utils.DoPostStream(ctx, c.client, streamURL, "", request, c.buildHeaders()...)
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "Streaming HTTP request failed", observability.Error(err))
		}
		return nil, err
	}

	sseScanner := utils.NewSSEScanner(httpResponse.Body)
	aggregator := stream.NewAggregator(opts...)

	// iteratorFunc reads SSE payloads, feeds the aggregator, and forwards
	// its pass-through events. All protocol bookkeeping (event ordering,
	// block indices, input buffering) lives in the aggregator; this loop
	// only owns transport concerns.
	iteratorFunc := func(yield func(stream.Event, error) bool) {
		// Ensure the response body is closed when the iterator is exhausted
		// or the caller breaks out of the loop early.
		defer utils.CloseWithLog(httpResponse.Body)

		for {
			// Respect context cancellation between SSE reads. The aggregator
			// is driven into its errored state so a later Result() call
			// reports "cancelled", never a silently incomplete envelope.
			if ctx.Err() != nil {
				aggregator.Cancel(ctx.Err())
				yield(stream.Event{}, ctx.Err())
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				// Transport closed. Only legitimate after message_stop;
				// anything earlier is a truncated stream.
				if aggregator.State() != stream.StateCompleted {
					truncated := fmt.Errorf("anthropic-go: stream ended before message_stop (state %s)", aggregator.State())
					aggregator.Cancel(truncated)
					yield(stream.Event{}, truncated)
				}
				return
			}
			if sseErr != nil {
				aggregator.Cancel(sseErr)
				yield(stream.Event{}, fmt.Errorf("SSE read error: %w", sseErr))
				return
			}

			rawEvent, parseErr := stream.ParseEvent(payload)
			if parseErr != nil {
				aggregator.Cancel(parseErr)
				yield(stream.Event{}, fmt.Errorf("failed to parse stream event: %w", parseErr))
				return
			}

			event, feedErr := aggregator.Feed(rawEvent)
			if feedErr != nil {
				yield(stream.Event{}, feedErr)
				return
			}

			// Under the default policy a failed tool input is block-local:
			// Feed succeeds and the finalised block arrives flagged invalid.
			if observer != nil && event.Type == stream.EventBlockStop && event.Block != nil && event.Block.InputInvalid {
				observer.Warn(ctx, "tool input failed to parse; block flagged invalid",
					observability.Int("block.index", event.Index),
				)
			}

			// Keepalives carry nothing; skip them instead of waking the caller.
			if event.Type == stream.EventPing {
				continue
			}

			if !yield(event, nil) {
				return
			}

			if event.Type == stream.EventMessageStop {
				if span != nil {
					span.AddEvent(observability.EventStreamCompleted)
				}
				return
			}
		}
	}

	return stream.NewMessageStream(iteratorFunc), nil
}
