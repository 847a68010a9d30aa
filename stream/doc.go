// Package stream reconstructs a complete [messages.Message] from the ordered
// sequence of server-sent events the Messages API emits in streaming mode.
//
// The centre of the package is [Aggregator], an explicit finite-state
// machine (Idle → Started → BlockOpen… → Completed, with Errored reachable
// from any non-terminal state). Each SSE payload is parsed with [ParseEvent]
// and handed to [Aggregator.Feed], which both advances the envelope under
// construction and returns a caller-facing [Event] for live rendering — the
// aggregator is simultaneously a builder and a pass-through notifier.
//
// Illegal event orderings (duplicate message_start, index gaps, events after
// a terminal state) surface as [*ProtocolViolation] rather than undefined
// behavior. A tool_use block whose accumulated input fails to parse is a
// block-local [*PartialBlockError] by default: the block is flagged invalid
// and the stream continues, so one malformed tool call never discards its
// siblings. [WithStrictBlocks] upgrades that to a stream-fatal error.
//
// An Aggregator is single-writer: one instance per stream, fed from one
// goroutine. Concurrent streams need independent instances.
package stream
