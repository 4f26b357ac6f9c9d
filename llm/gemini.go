// Google Gemini backend implementation using google.golang.org/genai.

package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"

	"github.com/adforge/adforge/model"
)

// GeminiProvider implements Provider for Google Gemini models.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
	initErr   error // client initialization error, reported on first use
}

// NewGeminiProvider creates a Gemini provider. Client initialization errors
// are deferred to the first call so construction never fails.
func NewGeminiProvider(apiKey, modelName string) *GeminiProvider {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return &GeminiProvider{
			modelName: modelName,
			initErr:   fmt.Errorf("initialize gemini client: %w", err),
		}
	}
	return &GeminiProvider{client: client, modelName: modelName}
}

// ID returns the backend identifier.
func (p *GeminiProvider) ID() model.ModelID {
	return model.ModelGemini
}

// Model returns the configured model name.
func (p *GeminiProvider) Model() string {
	return p.modelName
}

// Complete requests a plain text completion.
func (p *GeminiProvider) Complete(ctx context.Context, messages []ChatMessage, params model.GenerationParams) (Response, error) {
	return p.CompleteWithFormat(ctx, messages, nil, params)
}

// CompleteWithFormat requests a completion. The format hint is ignored; the
// prompt carries the JSON contract and the caller validates the decode.
func (p *GeminiProvider) CompleteWithFormat(ctx context.Context, messages []ChatMessage, _ *ResponseFormat, params model.GenerationParams) (Response, error) {
	if p.initErr != nil {
		return Response{}, p.initErr
	}

	contents, systemInstruction := toGeminiContents(messages)
	config := p.generateConfig(params, systemInstruction)

	response, err := p.client.Models.GenerateContent(ctx, p.modelName, contents, config)
	if err != nil {
		return Response{}, fmt.Errorf("gemini completion: %w", err)
	}

	content := response.Text()
	if content == "" {
		return Response{}, fmt.Errorf("empty response from gemini")
	}
	return Response{Content: content}, nil
}

// CompleteWithTools requests a completion with tools bound.
func (p *GeminiProvider) CompleteWithTools(ctx context.Context, messages []ChatMessage, tools []ToolDefinition, params model.GenerationParams) (Response, error) {
	if p.initErr != nil {
		return Response{}, p.initErr
	}

	contents, systemInstruction := toGeminiContents(messages)
	config := p.generateConfig(params, systemInstruction)
	config.Tools = toGeminiTools(tools)

	response, err := p.client.Models.GenerateContent(ctx, p.modelName, contents, config)
	if err != nil {
		return Response{}, fmt.Errorf("gemini completion: %w", err)
	}

	content := ""
	var toolCalls []ToolCall
	if len(response.Candidates) > 0 && response.Candidates[0].Content != nil {
		for _, part := range response.Candidates[0].Content.Parts {
			if part.Text != "" {
				content += part.Text
			}
			if part.FunctionCall != nil {
				argsJSON, _ := json.Marshal(part.FunctionCall.Args)
				toolCalls = append(toolCalls, ToolCall{
					ID:        part.FunctionCall.Name, // Gemini uses the name as ID
					Name:      part.FunctionCall.Name,
					Arguments: argsJSON,
				})
			}
		}
	}
	return Response{Content: content, ToolCalls: toolCalls}, nil
}

func (p *GeminiProvider) generateConfig(params model.GenerationParams, systemInstruction string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(params.Temperature),
		TopP:            genai.Ptr(params.TopP),
		MaxOutputTokens: int32(params.MaxTokens),
	}
	if systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}
	return config
}

// toGeminiContents converts ChatMessage values to the Gemini format. The
// system message is extracted and returned separately.
func toGeminiContents(messages []ChatMessage) ([]*genai.Content, string) {
	var contents []*genai.Content
	var systemInstruction string

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			systemInstruction = msg.Content
		case RoleUser:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		case RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
				continue
			}
			content := &genai.Content{Role: genai.RoleModel}
			if msg.Content != "" {
				content.Parts = append(content.Parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				var args map[string]any
				_ = json.Unmarshal(tc.Arguments, &args)
				content.Parts = append(content.Parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{Name: tc.Name, Args: args},
				})
			}
			contents = append(contents, content)
		case RoleTool:
			var result map[string]any
			_ = json.Unmarshal([]byte(msg.Content), &result)
			if result == nil {
				result = map[string]any{"result": msg.Content}
			}
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser, // Gemini expects tool results as user
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						Name:     msg.ToolName,
						Response: result,
					},
				}},
			})
		}
	}
	return contents, systemInstruction
}

// toGeminiTools converts tool definitions to the Gemini format.
func toGeminiTools(tools []ToolDefinition) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}
	var declarations []*genai.FunctionDeclaration
	for _, t := range tools {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  toGeminiSchema(t.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// toGeminiSchema converts a JSON schema object to the Gemini schema type.
// Only the subset used by the workflow tools (flat string properties) needs
// to round-trip faithfully.
func toGeminiSchema(params map[string]any) *genai.Schema {
	schema := &genai.Schema{Type: genai.TypeObject}

	if t, ok := params["type"].(string); ok {
		schema.Type = toGeminiType(t)
	}
	switch req := params["required"].(type) {
	case []string:
		schema.Required = req
	case []any:
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	}
	if props, ok := params["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema)
		for name, prop := range props {
			propMap, ok := prop.(map[string]any)
			if !ok {
				continue
			}
			propSchema := &genai.Schema{Type: genai.TypeString}
			if t, ok := propMap["type"].(string); ok {
				propSchema.Type = toGeminiType(t)
			}
			if d, ok := propMap["description"].(string); ok {
				propSchema.Description = d
			}
			schema.Properties[name] = propSchema
		}
	}
	return schema
}

func toGeminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "integer", "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

var _ Provider = (*GeminiProvider)(nil)
