package llm

import (
	"errors"

	openai "github.com/sashabaranov/go-openai"

	jsonutil "github.com/adforge/adforge/internal/json"
	"github.com/adforge/adforge/model"
)

// errorEnvelope matches the JSON error bodies returned by the backends.
// OpenAI nests the message one level deep (error.message); Anthropic and
// Gemini nest it twice (error.error.message).
type errorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Error   *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"error"`
}

// ErrorMessage extracts a human-readable message from a backend error,
// unwrapping the backend family's envelope shape. When the expected shape
// is absent it falls back to stringifying the raw error.
func ErrorMessage(id model.ModelID, err error) string {
	if err == nil {
		return ""
	}

	switch id {
	case model.ModelOpenAI:
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return apiErr.Message
		}
		if env, ok := decodeEnvelope(err); ok && env.Error.Message != "" {
			return env.Error.Message
		}
	case model.ModelAnthropic, model.ModelGemini:
		if env, ok := decodeEnvelope(err); ok {
			if env.Error.Error != nil && env.Error.Error.Message != "" {
				return env.Error.Error.Message
			}
			if env.Error.Message != "" {
				return env.Error.Message
			}
		}
	}
	return err.Error()
}

// decodeEnvelope scans the error text for an embedded JSON error body.
func decodeEnvelope(err error) (errorEnvelope, bool) {
	env, decodeErr := jsonutil.Decode[errorEnvelope](err.Error())
	if decodeErr != nil || env.Error == nil {
		return errorEnvelope{}, false
	}
	return env, true
}
