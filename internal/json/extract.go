// Package json provides JSON extraction utilities for parsing LLM output.
//
// Model backends frequently wrap JSON in markdown code fences or surround
// it with commentary. These helpers locate the JSON object inside such
// responses and decode it.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Extract returns the JSON object portion of a response string. It handles
// pure JSON, JSON inside markdown code fences, and a JSON object embedded
// in prose (first '{' to last '}'). Only objects are supported; brace
// matching is textual, so unbalanced braces inside strings can defeat it.
func Extract(response string) (string, error) {
	response = stripCodeFences(response)

	var probe any
	if err := json.Unmarshal([]byte(response), &probe); err == nil {
		return response, nil
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start != -1 && end > start {
		candidate := response[start : end+1]
		if err := json.Unmarshal([]byte(candidate), &probe); err == nil {
			return candidate, nil
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("no valid JSON object in response: %q", preview)
}

// Decode extracts the JSON object from a response and unmarshals it into T.
func Decode[T any](response string) (T, error) {
	var result T
	raw, err := Extract(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return result, fmt.Errorf("unmarshal extracted JSON: %w", err)
	}
	return result, nil
}

// stripCodeFences removes surrounding ```json / ``` markers.
func stripCodeFences(response string) string {
	trimmed := strings.TrimSpace(response)
	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```json"))
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	}
	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}
	return trimmed
}
