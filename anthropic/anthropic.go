package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/Ogyeet10/anthropic-go/internal/utils"
	"github.com/Ogyeet10/anthropic-go/messages"
	"github.com/Ogyeet10/anthropic-go/observability"
)

const (
	// defaultBaseURL is the canonical base URL for the Messages API.
	defaultBaseURL = "https://api.anthropic.com/v1"

	// messagesEndpoint is the path for the Messages API endpoint.
	messagesEndpoint = "/messages"

	// apiVersion is the required anthropic-version header value. The API
	// uses it to version-lock response formats independently of the URL.
	apiVersion = "2023-06-01"
)

// Client talks to the Messages API. Use [New] to construct a ready-to-use
// instance; the zero value is not usable.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// New returns a [Client] initialized from environment variables. It reads
// ANTHROPIC_API_KEY for authentication and ANTHROPIC_API_BASE_URL for the
// endpoint base (defaulting to https://api.anthropic.com/v1 when unset).
// Use [Client.WithAPIKey] and [Client.WithBaseURL] to override these values
// after construction.
func New() *Client {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	baseURL := os.Getenv("ANTHROPIC_API_BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

// WithAPIKey sets the API key used for authenticating requests and returns
// the client so calls can be chained. It overrides the value read from
// ANTHROPIC_API_KEY.
func (c *Client) WithAPIKey(apiKey string) *Client {
	c.apiKey = apiKey
	return c
}

// WithBaseURL overrides the API base URL and returns the client so calls can
// be chained. Use this when targeting a proxy or local testing endpoint.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// WithHTTPClient replaces the default [http.Client] used for API calls and
// returns the client so calls can be chained. Useful for injecting custom
// timeouts, transport layers, or test doubles.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.client = httpClient
	return c
}

// buildHeaders constructs the HTTP headers required for every request.
// x-api-key carries the credential (the API does not use Bearer tokens) and
// anthropic-version pins the wire format.
func (c *Client) buildHeaders() []utils.HeaderOption {
	return []utils.HeaderOption{
		{Key: "x-api-key", Value: c.apiKey},
		{Key: "anthropic-version", Value: apiVersion},
	}
}

// SendMessage sends a synchronous request to the Messages API and returns
// the fully decoded [messages.Message]. It returns an error if the API key
// is unset, the HTTP request fails, or the response body does not decode —
// codec failures surface as [*messages.DecodeError] through the wrap chain.
func (c *Client) SendMessage(ctx context.Context, request messages.MessageRequest) (*messages.Message, error) {
	span := observability.SpanFromContext(ctx)
	observer := observability.ObserverFromContext(ctx)

	if span != nil {
		span.AddEvent(observability.EventLLMRequestStart)
		span.SetAttributes(
			observability.String(observability.AttrLLMProvider, "anthropic"),
			observability.String(observability.AttrLLMEndpoint, c.baseURL),
			observability.String(observability.AttrLLMModel, request.Model),
		)
		defer span.AddEvent(observability.EventLLMRequestEnd)
	}

	if observer != nil {
		observer.Trace(ctx, "Anthropic client preparing request",
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

	url := c.baseURL + messagesEndpoint

	// A streaming flag on the synchronous path would make the server answer
	// with SSE that DoPostSync cannot decode.
	request.Stream = false

	// Pass empty apiKey so DoPostSync does not inject a Bearer token; the
	// API authenticates via x-api-key instead.
	httpResponse, msg, err := utils.DoPostSync[messages.Message](
		ctx,
		c.client,
		url,
		"",
		request,
		c.buildHeaders()...,
	)
	if err != nil {
		if observer != nil {
			observer.Trace(ctx, "HTTP request failed", observability.Error(err))
		}
		return nil, err
	}

	if msg == nil {
		return nil, fmt.Errorf("empty response from Anthropic API: %s", httpResponse.Status)
	}

	// The model name is normally echoed back; fall back to the request model
	// so callers always have a non-empty Model field.
	if msg.Model == "" {
		msg.Model = request.Model
	}

	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMResponseID, msg.ID),
			observability.Int(observability.AttrHTTPStatusCode, httpResponse.StatusCode),
			observability.Int(observability.AttrLLMTokensOutput, msg.Usage.OutputTokens),
		)
		if msg.Usage.InputTokens != nil {
			span.SetAttributes(observability.Int(observability.AttrLLMTokensInput, *msg.Usage.InputTokens))
		}
		if msg.StopReason != nil {
			span.SetAttributes(observability.String(observability.AttrLLMStopReason, string(*msg.StopReason)))
		}
	}

	return msg, nil
}
