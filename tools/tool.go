// Package tools provides the tool system used during the augmentation phase.
//
// Information Hiding:
// - Tool execution details hidden behind interface
// - Tool parameters and schemas hidden in implementations
// - Registry implementation details hidden from consumers
package tools

import (
	"context"
	"encoding/json"

	"github.com/adforge/adforge/llm"
)

// Result is what a tool produces. Content is the serialized payload that
// goes back to the model as a tool result. Artifact optionally carries the
// structured value behind the content for callers that need it.
type Result struct {
	Content  string
	Artifact any
}

// Tool is the interface that all tools must implement.
type Tool interface {
	// Definition returns the schema advertised to the model.
	Definition() llm.ToolDefinition

	// Execute runs the tool with the given JSON-encoded arguments.
	Execute(ctx context.Context, args json.RawMessage) (Result, error)
}
