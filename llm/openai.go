// OpenAI backend implementation using go-openai.

package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/adforge/adforge/model"
)

// OpenAIProvider implements Provider for OpenAI chat models.
type OpenAIProvider struct {
	client    *openai.Client
	modelName string
}

// NewOpenAIProvider creates an OpenAI provider.
func NewOpenAIProvider(apiKey, modelName string) *OpenAIProvider {
	return &OpenAIProvider{
		client:    openai.NewClient(apiKey),
		modelName: modelName,
	}
}

// ID returns the backend identifier.
func (p *OpenAIProvider) ID() model.ModelID {
	return model.ModelOpenAI
}

// Model returns the configured model name.
func (p *OpenAIProvider) Model() string {
	return p.modelName
}

// Complete requests a plain text completion.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []ChatMessage, params model.GenerationParams) (Response, error) {
	return p.CompleteWithFormat(ctx, messages, nil, params)
}

// CompleteWithFormat requests a completion with an optional response format.
func (p *OpenAIProvider) CompleteWithFormat(ctx context.Context, messages []ChatMessage, format *ResponseFormat, params model.GenerationParams) (Response, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.modelName,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
	}

	if format != nil {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatType(format.Type),
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("openai completion: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}
	return Response{Content: content}, nil
}

// CompleteWithTools requests a completion with tools bound.
func (p *OpenAIProvider) CompleteWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition, params model.GenerationParams) (Response, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.modelName,
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		Tools:       toOpenAITools(tools),
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Response{}, fmt.Errorf("openai completion: %w", err)
	}

	content := ""
	var toolCalls []ToolCall
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
		for _, tc := range resp.Choices[0].Message.ToolCalls {
			toolCalls = append(toolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: []byte(tc.Function.Arguments),
			})
		}
	}
	return Response{Content: content, ToolCalls: toolCalls}, nil
}

// toOpenAIMessages converts ChatMessage values to the OpenAI wire format,
// including assistant tool calls and tool result messages.
func toOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		m := openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
		for _, tc := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(tc.Arguments),
				},
			})
		}
		if msg.ToolCallID != "" {
			m.ToolCallID = msg.ToolCallID
			m.Name = msg.ToolName
		}
		result[i] = m
	}
	return result
}

// toOpenAITools converts tool definitions to the OpenAI format.
func toOpenAITools(tools []ToolDefinition) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return result
}

var _ Provider = (*OpenAIProvider)(nil)
