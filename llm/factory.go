package llm

import (
	"fmt"

	"github.com/adforge/adforge/model"
)

// Default model names per backend.
const (
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-3-5-sonnet-20240620"
	DefaultGeminiModel    = "gemini-2.0-flash"

	// DefaultDeciderModel is the model used by the augmentation decision
	// step; it always runs on the OpenAI backend.
	DefaultDeciderModel = "gpt-4.1"
)

// NewProvider creates the backend provider for the given identifier.
func NewProvider(id model.ModelID, apiKey, modelName string) (Provider, error) {
	switch id {
	case model.ModelOpenAI:
		if modelName == "" {
			modelName = DefaultOpenAIModel
		}
		return NewOpenAIProvider(apiKey, modelName), nil
	case model.ModelAnthropic:
		if modelName == "" {
			modelName = DefaultAnthropicModel
		}
		return NewAnthropicProvider(apiKey, modelName), nil
	case model.ModelGemini:
		if modelName == "" {
			modelName = DefaultGeminiModel
		}
		return NewGeminiProvider(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unknown model backend: %q", id)
	}
}
