package llm

import (
	"fmt"

	jsonutil "github.com/adforge/adforge/internal/json"
	"github.com/adforge/adforge/model"
)

// JSONObjectFormat is the response format hint for structured ad output.
// Backends without native JSON modes ignore it; DecodeAdResult validates
// the reply either way.
func JSONObjectFormat() *ResponseFormat {
	return &ResponseFormat{Type: ResponseFormatJSONObject}
}

// DecodeAdResult parses a structured ad-generation reply. Malformed output
// is a recoverable error, never a panic: the caller converts it into an
// error-tagged message.
func DecodeAdResult(content string) (model.AdResult, error) {
	result, err := jsonutil.Decode[model.AdResult](content)
	if err != nil {
		return model.AdResult{}, fmt.Errorf("structured ad output: %w", err)
	}
	return result, nil
}
