// Package observability defines the lightweight tracing and structured
// logging hooks the SDK emits into. Nothing here depends on a specific
// backend: callers attach a [Span] and/or [Observer] to the context, and the
// client enriches them as requests and streams progress. [NewSlogObserver]
// provides a ready-made log/slog backend.
//
// When no span or observer is present in the context the SDK stays silent;
// every hook call site nil-checks the extracted value.
package observability
