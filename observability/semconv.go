package observability

// Semantic conventions for observability attributes. Constant names keep
// attribute keys consistent across the client, the HTTP helpers, and tests.

// --- LLM attributes ---

const (
	// AttrLLMProvider is the name of the LLM provider
	AttrLLMProvider = "llm.provider"

	// AttrLLMModel is the model identifier
	AttrLLMModel = "llm.model"

	// AttrLLMEndpoint is the API endpoint URL
	AttrLLMEndpoint = "llm.endpoint"

	// AttrLLMResponseID is the unique response identifier from the provider
	AttrLLMResponseID = "llm.response.id"

	// AttrLLMStopReason is the reason the generation finished
	AttrLLMStopReason = "llm.stop_reason"

	// AttrLLMStreaming reports whether the request used SSE streaming
	AttrLLMStreaming = "llm.streaming"
)

// --- Token usage attributes ---

const (
	// AttrLLMTokensInput is the number of input tokens
	AttrLLMTokensInput = "llm.tokens.input" // #nosec G101 -- Not a credential, token refers to LLM tokens

	// AttrLLMTokensOutput is the number of output tokens
	AttrLLMTokensOutput = "llm.tokens.output" // #nosec G101 -- Not a credential, token refers to LLM tokens
)

// --- Request/response attributes ---

const (
	// AttrRequestMessagesCount is the number of messages in the request
	AttrRequestMessagesCount = "request.messages_count"

	// AttrRequestToolsCount is the number of tools in the request
	AttrRequestToolsCount = "request.tools_count"
)

// --- HTTP attributes ---

const (
	// AttrHTTPMethod is the HTTP request method
	AttrHTTPMethod = "http.method"

	// AttrHTTPURL is the request URL
	AttrHTTPURL = "http.url"

	// AttrHTTPStatusCode is the response status code
	AttrHTTPStatusCode = "http.status_code"

	// AttrHTTPRequestBodySize is the request body size in bytes
	AttrHTTPRequestBodySize = "http.request.body_size"

	// AttrHTTPResponseBodySize is the response body size in bytes
	AttrHTTPResponseBodySize = "http.response.body_size"
)

// --- Span event names ---

const (
	// EventLLMRequestStart marks the beginning of a provider request
	EventLLMRequestStart = "llm.request.start"

	// EventLLMRequestEnd marks the end of a provider request
	EventLLMRequestEnd = "llm.request.end"

	// EventStreamCompleted marks a stream reaching its terminal event
	EventStreamCompleted = "llm.stream.completed"
)
