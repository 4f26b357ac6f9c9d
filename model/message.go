// Package model provides the domain types shared across packages:
// conversation messages, workflow state, step events and generation
// parameters.
package model

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// ModelID identifies a model backend.
type ModelID string

// Supported model backends.
const (
	ModelOpenAI    ModelID = "openai"
	ModelAnthropic ModelID = "anthropic"
	ModelGemini    ModelID = "gemini"
)

// ParseModelID parses a backend identifier (case-insensitive).
func ParseModelID(s string) (ModelID, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "openai", "gpt":
		return ModelOpenAI, true
	case "anthropic", "claude":
		return ModelAnthropic, true
	case "gemini", "google":
		return ModelGemini, true
	default:
		return "", false
	}
}

// Role classifies a conversation message.
type Role string

// Message roles.
const (
	RoleHuman      Role = "human"
	RoleSystem     Role = "system"
	RoleAI         Role = "ai"
	RoleToolResult Role = "tool"
)

// FunctionTag names the workflow function that produced a message. The tag
// is used to locate "the most recent message produced by function F for
// model M" without a separate index.
type FunctionTag string

// Function tags.
const (
	FunctionQueryOrRespond        FunctionTag = "queryOrRespond"
	FunctionRetrieve              FunctionTag = "retrieve"
	FunctionWebSearch             FunctionTag = "webSearch"
	FunctionScrapedServices       FunctionTag = "scrapedServices"
	FunctionScrapedServiceContent FunctionTag = "scrapedServiceContent"
	FunctionCreateTaskSummary     FunctionTag = "createTaskSummary"
	FunctionGenerateAdContent     FunctionTag = "generateAdContent"
)

// Tool names used on tool result messages.
const (
	RetrieveToolName  = "retrieve"
	WebSearchToolName = "web_search"
)

// Tags carries the optional metadata attached to AI messages.
type Tags struct {
	OwnerModel ModelID     `json:"ownerModel,omitempty"`
	Function   FunctionTag `json:"function,omitempty"`
	Historical bool        `json:"historical,omitempty"`
	IsError    bool        `json:"isError,omitempty"`
}

// ToolCallRequest is a tool invocation requested by the decision model.
type ToolCallRequest struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// ConversationMessage is one immutable entry in a conversation. Messages are
// append-only: a graph step produces new messages, never edits existing
// ones.
type ConversationMessage struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Text      string            `json:"text"`
	ToolCalls []ToolCallRequest `json:"toolCalls,omitempty"`
	// ToolName and ToolCallID are set on tool result messages.
	ToolName   string `json:"toolName,omitempty"`
	ToolCallID string `json:"toolCallId,omitempty"`
	// Artifact carries the raw tool payload alongside its serialized text.
	// It never crosses the process boundary.
	Artifact any  `json:"-"`
	Tags     Tags `json:"tags,omitempty"`
}

// HasToolCalls reports whether the message requests any tool invocations.
func (m ConversationMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// NewHumanMessage creates a human message.
func NewHumanMessage(text string) ConversationMessage {
	return ConversationMessage{ID: uuid.NewString(), Role: RoleHuman, Text: text}
}

// NewSystemMessage creates a system message.
func NewSystemMessage(text string) ConversationMessage {
	return ConversationMessage{ID: uuid.NewString(), Role: RoleSystem, Text: text}
}

// NewAIMessage creates an AI message with the given tags.
func NewAIMessage(text string, tags Tags) ConversationMessage {
	return ConversationMessage{ID: uuid.NewString(), Role: RoleAI, Text: text, Tags: tags}
}

// NewErrorMessage creates an error-tagged AI message. The workflow treats
// error-tagged messages as data: the orchestrator converts them into error
// step events instead of letting failures propagate as faults.
func NewErrorMessage(text string, owner ModelID, function FunctionTag) ConversationMessage {
	return ConversationMessage{
		ID:   uuid.NewString(),
		Role: RoleAI,
		Text: text,
		Tags: Tags{OwnerModel: owner, Function: function, IsError: true},
	}
}

// NewToolResultMessage creates a tool result message.
func NewToolResultMessage(callID, name, text string, artifact any) ConversationMessage {
	return ConversationMessage{
		ID:         uuid.NewString(),
		Role:       RoleToolResult,
		Text:       text,
		ToolName:   name,
		ToolCallID: callID,
		Artifact:   artifact,
	}
}

// Messages is an append-only conversation slice with tag-based lookups.
// Lookups are linear scans; conversations stay small (a handful of turns),
// so no side index is maintained.
type Messages []ConversationMessage

// FirstToolResult returns the first tool result produced by the named tool.
func (ms Messages) FirstToolResult(name string) (ConversationMessage, bool) {
	for _, m := range ms {
		if m.Role == RoleToolResult && m.ToolName == name {
			return m, true
		}
	}
	return ConversationMessage{}, false
}

// FirstError returns the first error-tagged message, if any.
func (ms Messages) FirstError() (ConversationMessage, bool) {
	for _, m := range ms {
		if m.Tags.IsError {
			return m, true
		}
	}
	return ConversationMessage{}, false
}

// FirstErrorFor returns the first error-tagged message owned by the model.
func (ms Messages) FirstErrorFor(owner ModelID) (ConversationMessage, bool) {
	for _, m := range ms {
		if m.Tags.IsError && m.Tags.OwnerModel == owner {
			return m, true
		}
	}
	return ConversationMessage{}, false
}

// FirstByFunction returns the first AI message tagged with the function.
func (ms Messages) FirstByFunction(fn FunctionTag) (ConversationMessage, bool) {
	for _, m := range ms {
		if m.Role == RoleAI && m.Tags.Function == fn {
			return m, true
		}
	}
	return ConversationMessage{}, false
}

// FirstFor returns the first non-historical AI message tagged with
// (owner, function). For a given model at most one non-historical
// CreateTaskSummary message exists per run.
func (ms Messages) FirstFor(owner ModelID, fn FunctionTag) (ConversationMessage, bool) {
	for _, m := range ms {
		if m.Role == RoleAI && m.Tags.OwnerModel == owner && m.Tags.Function == fn && !m.Tags.Historical && !m.Tags.IsError {
			return m, true
		}
	}
	return ConversationMessage{}, false
}

// LastFor returns the last non-historical AI message tagged with
// (owner, function). Used for GenerateAdContent, where a corrective retry
// may overwrite a previous draft within one run.
func (ms Messages) LastFor(owner ModelID, fn FunctionTag) (ConversationMessage, bool) {
	for i := len(ms) - 1; i >= 0; i-- {
		m := ms[i]
		if m.Role == RoleAI && m.Tags.OwnerModel == owner && m.Tags.Function == fn && !m.Tags.Historical && !m.Tags.IsError {
			return m, true
		}
	}
	return ConversationMessage{}, false
}

// LastHuman returns the most recent human message.
func (ms Messages) LastHuman() (ConversationMessage, bool) {
	for i := len(ms) - 1; i >= 0; i-- {
		if ms[i].Role == RoleHuman {
			return ms[i], true
		}
	}
	return ConversationMessage{}, false
}

// Last returns the final message.
func (ms Messages) Last() (ConversationMessage, bool) {
	if len(ms) == 0 {
		return ConversationMessage{}, false
	}
	return ms[len(ms)-1], true
}
