// Anthropic backend implementation using the official anthropic-sdk-go.

package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/adforge/adforge/model"
)

// AnthropicProvider implements Provider for Anthropic Claude models.
type AnthropicProvider struct {
	client    anthropic.Client
	modelName string
}

// NewAnthropicProvider creates an Anthropic provider.
func NewAnthropicProvider(apiKey, modelName string) *AnthropicProvider {
	return &AnthropicProvider{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		modelName: modelName,
	}
}

// ID returns the backend identifier.
func (p *AnthropicProvider) ID() model.ModelID {
	return model.ModelAnthropic
}

// Model returns the configured model name.
func (p *AnthropicProvider) Model() string {
	return p.modelName
}

// Complete requests a plain text completion.
func (p *AnthropicProvider) Complete(ctx context.Context, messages []ChatMessage, params model.GenerationParams) (Response, error) {
	return p.CompleteWithFormat(ctx, messages, nil, params)
}

// CompleteWithFormat requests a completion. The Messages API has no native
// response format; the format hint is ignored and the prompt carries the
// JSON contract instead.
func (p *AnthropicProvider) CompleteWithFormat(ctx context.Context, messages []ChatMessage, _ *ResponseFormat, params model.GenerationParams) (Response, error) {
	anthropicMessages, systemPrompt := toAnthropicMessages(messages)

	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.modelName),
		MaxTokens:   int64(params.MaxTokens),
		Messages:    anthropicMessages,
		Temperature: anthropic.Float(float64(params.Temperature)),
		TopP:        anthropic.Float(float64(params.TopP)),
	}
	if systemPrompt != "" {
		req.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	message, err := p.client.Messages.New(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic completion: %w", err)
	}

	content := ""
	for _, block := range message.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			content += variant.Text
		}
	}
	return Response{Content: content}, nil
}

// CompleteWithTools requests a completion with tools bound.
func (p *AnthropicProvider) CompleteWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition, params model.GenerationParams) (Response, error) {
	anthropicMessages, systemPrompt := toAnthropicMessages(messages)

	req := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.modelName),
		MaxTokens:   int64(params.MaxTokens),
		Messages:    anthropicMessages,
		Temperature: anthropic.Float(float64(params.Temperature)),
		TopP:        anthropic.Float(float64(params.TopP)),
		Tools:       toAnthropicTools(tools),
	}
	if systemPrompt != "" {
		req.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	message, err := p.client.Messages.New(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("anthropic completion: %w", err)
	}

	content := ""
	var toolCalls []ToolCall
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			content += variant.Text
		case anthropic.ToolUseBlock:
			inputJSON, _ := json.Marshal(variant.Input)
			toolCalls = append(toolCalls, ToolCall{
				ID:        variant.ID,
				Name:      variant.Name,
				Arguments: inputJSON,
			})
		}
	}
	return Response{Content: content, ToolCalls: toolCalls}, nil
}

// toAnthropicMessages converts ChatMessage values to the Anthropic format.
// The system message is extracted and returned separately.
func toAnthropicMessages(messages []ChatMessage) ([]anthropic.MessageParam, string) {
	var out []anthropic.MessageParam
	var systemPrompt string

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			systemPrompt = msg.Content
		case RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
				continue
			}
			param := anthropic.MessageParam{Role: anthropic.MessageParamRoleAssistant}
			if msg.Content != "" {
				param.Content = append(param.Content, anthropic.NewTextBlock(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				var input map[string]any
				_ = json.Unmarshal(tc.Arguments, &input)
				param.Content = append(param.Content, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    tc.ID,
						Name:  tc.Name,
						Input: input,
					},
				})
			}
			out = append(out, param)
		case RoleTool:
			out = append(out, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false),
			))
		}
	}
	return out, systemPrompt
}

// toAnthropicTools converts tool definitions to the Anthropic format.
func toAnthropicTools(tools []ToolDefinition) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		properties, _ := t.Parameters["properties"].(map[string]any)
		required, _ := t.Parameters["required"].([]string)

		tool := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: properties,
				Required:   required,
			},
		}
		result[i] = anthropic.ToolUnionParam{OfTool: &tool}
	}
	return result
}

var _ Provider = (*AnthropicProvider)(nil)
