package messages

import "encoding/json"

/*
	MESSAGES API - REQUEST TYPES

	Request construction stays deliberately thin: these are the wire shapes
	the API accepts, with small helpers for the common turns. Validation
	beyond what the marshaller enforces is the caller's concern.
*/

// MessageRequest is the request body for the Messages API.
type MessageRequest struct {
	Model         string          `json:"model"`
	Messages      []MessageParam  `json:"messages"`
	System        string          `json:"system,omitempty"`
	MaxTokens     int             `json:"max_tokens"` // Required by the API on every request
	Temperature   *float64        `json:"temperature,omitempty"`
	TopP          *float64        `json:"top_p,omitempty"`
	TopK          *int            `json:"top_k,omitempty"`
	StopSequences []string        `json:"stop_sequences,omitempty"`
	Tools         []Tool          `json:"tools,omitempty"`
	ToolChoice    *ToolChoice     `json:"tool_choice,omitempty"`
	Stream        bool            `json:"stream,omitempty"`
	Metadata      *MessageMetadata `json:"metadata,omitempty"`
}

// MessageParam is a single conversation turn in a request.
type MessageParam struct {
	Role    string              `json:"role"` // "user" or "assistant"
	Content []ContentBlockParam `json:"content"`
}

// ContentBlockParam is the request-side content block union. Unlike the
// response-side [ContentBlock] it is decoded by the server, not by us, so a
// flat struct with a discriminator is sufficient:
//   - "text": Text
//   - "tool_use": ID, Name, Input (echoing a prior assistant turn)
//   - "tool_result": ToolUseID, Content, IsError
type ContentBlockParam struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	Thinking  string          `json:"thinking,omitempty"`
	Signature string          `json:"signature,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   json.RawMessage `json:"content,omitempty"`
	IsError   bool            `json:"is_error,omitempty"`
}

// Tool describes a tool the model may invoke.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"input_schema"` // JSON Schema for the tool input
}

// ToolChoice constrains which tool the model should use.
type ToolChoice struct {
	Type string `json:"type"`           // "auto", "any", "tool"
	Name string `json:"name,omitempty"` // Only for type="tool"
}

// MessageMetadata carries optional request metadata.
type MessageMetadata struct {
	UserID string `json:"user_id,omitempty"`
}

// NewUserMessage builds a single-text user turn.
func NewUserMessage(text string) MessageParam {
	return MessageParam{
		Role:    "user",
		Content: []ContentBlockParam{{Type: "text", Text: text}},
	}
}

// NewAssistantMessage builds a single-text assistant turn, used when
// replaying conversation history.
func NewAssistantMessage(text string) MessageParam {
	return MessageParam{
		Role:    "assistant",
		Content: []ContentBlockParam{{Type: "text", Text: text}},
	}
}

// NewToolResultMessage builds the user turn that answers a tool_use block.
// The result must already be JSON-encoded; isError marks a failed execution
// so the model can recover instead of trusting the payload.
func NewToolResultMessage(toolUseID string, result json.RawMessage, isError bool) MessageParam {
	return MessageParam{
		Role: "user",
		Content: []ContentBlockParam{{
			Type:      "tool_result",
			ToolUseID: toolUseID,
			Content:   result,
			IsError:   isError,
		}},
	}
}

// AssistantTurn converts a decoded response envelope back into the request
// form so the conversation can continue. Thinking blocks are replayed before
// text and tool_use blocks, matching the order the API requires. Blocks the
// aggregator flagged InputInvalid are skipped: their input never parsed, so
// there is nothing well-formed to echo.
func (m *Message) AssistantTurn() MessageParam {
	turn := MessageParam{Role: "assistant"}

	for _, block := range m.Content {
		switch block.Type {
		case ContentBlockThinking:
			turn.Content = append(turn.Content, ContentBlockParam{
				Type:      "thinking",
				Thinking:  block.Thinking,
				Signature: block.Signature,
			})
		case ContentBlockText:
			turn.Content = append(turn.Content, ContentBlockParam{
				Type: "text",
				Text: block.Text,
			})
		case ContentBlockToolUse:
			if block.InputInvalid {
				continue
			}
			input, err := json.Marshal(Object(block.Input))
			if err != nil {
				continue
			}
			turn.Content = append(turn.Content, ContentBlockParam{
				Type:  "tool_use",
				ID:    block.ID,
				Name:  block.Name,
				Input: input,
			})
		}
	}

	return turn
}
