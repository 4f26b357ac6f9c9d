// Package llm provides the model backend abstraction.
//
// Each provider hides its API client, authentication and request/response
// conversion behind the Provider interface. Sampling parameters are passed
// per call so concurrent workflow branches never share mutable settings.
package llm

import (
	"context"
	"encoding/json"

	"github.com/adforge/adforge/model"
)

// ChatMessage is the provider-neutral wire message.
type ChatMessage struct {
	Role       string           `json:"role"`
	Content    string           `json:"content"`
	ToolCalls  []ToolCall       `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
	ToolName   string           `json:"tool_name,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ToolDefinition declares a callable tool to the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// ResponseFormatType selects how the model should format its reply.
type ResponseFormatType string

// Response formats.
const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
)

// ResponseFormat requests a reply format from backends that support one.
// Backends without native format support ignore it; the prompt carries the
// contract and the caller validates the decode.
type ResponseFormat struct {
	Type ResponseFormatType `json:"type"`
}

// Response is a completed model invocation.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Provider is a single model backend.
type Provider interface {
	// ID returns the backend identifier.
	ID() model.ModelID

	// Model returns the configured model name.
	Model() string

	// Complete requests a plain text completion.
	Complete(ctx context.Context, messages []ChatMessage, params model.GenerationParams) (Response, error)

	// CompleteWithFormat requests a completion with a response format hint.
	CompleteWithFormat(ctx context.Context, messages []ChatMessage, format *ResponseFormat, params model.GenerationParams) (Response, error)

	// CompleteWithTools requests a completion with tools bound; the model
	// may answer with tool calls in Response.ToolCalls.
	CompleteWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition, params model.GenerationParams) (Response, error)
}

// Message role constants on the provider boundary.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// SystemMessage creates a system message.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}
