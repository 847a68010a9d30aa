// Package anthropic is the HTTP client for the Messages API.
//
// It sends [messages.MessageRequest] payloads and decodes the responses:
// [Client.SendMessage] for a single JSON document, [Client.StreamMessage]
// for an SSE stream consumed through a [stream.MessageStream] backed by the
// [stream.Aggregator] state machine.
//
// The primary entry point is [New], which reads ANTHROPIC_API_KEY and
// ANTHROPIC_API_BASE_URL from the environment. Use [Client.WithAPIKey],
// [Client.WithBaseURL], or [Client.WithHTTPClient] to configure the client
// programmatically; timeouts, retries, and connection pooling belong to the
// injected http.Client, not to this package.
package anthropic
