// Package server exposes the workflow over HTTP. Step events stream to the
// client as server-sent events.
package server

import (
	"fmt"

	"github.com/adforge/adforge/model"
)

// ChatRequest is the request body of POST /api/chat.
type ChatRequest struct {
	Messages []TurnMessage `json:"messages"`
	Models   []string      `json:"models"`
}

// TurnMessage is one prior conversation turn on the wire.
type TurnMessage struct {
	Role                  string          `json:"role"`
	Content               string          `json:"content"`
	Responses             []ModelResponse `json:"responses,omitempty"`
	RetrievedContent      string          `json:"retrievedContent,omitempty"`
	ScrapedServices       string          `json:"scrapedServices,omitempty"`
	ScrapedServiceContent string          `json:"scrapedServiceContent,omitempty"`
}

// ModelResponse is one model's recorded output within an assistant turn.
type ModelResponse struct {
	Model            string `json:"model"`
	TaskSummary      string `json:"taskSummary,omitempty"`
	GeneratedContent string `json:"generatedContent,omitempty"`
}

// Turns converts the wire messages into domain turns.
func (r ChatRequest) Turns() ([]model.Turn, error) {
	turns := make([]model.Turn, 0, len(r.Messages))
	for i, m := range r.Messages {
		switch m.Role {
		case model.TurnRoleUser, model.TurnRoleAssistant:
		default:
			return nil, fmt.Errorf("message %d: unknown role %q", i, m.Role)
		}

		turn := model.Turn{
			Role:                  m.Role,
			Content:               m.Content,
			RetrievedContent:      m.RetrievedContent,
			ScrapedServices:       m.ScrapedServices,
			ScrapedServiceContent: m.ScrapedServiceContent,
		}
		for _, resp := range m.Responses {
			id, ok := model.ParseModelID(resp.Model)
			if !ok {
				return nil, fmt.Errorf("message %d: unknown model %q", i, resp.Model)
			}
			turn.Responses = append(turn.Responses, model.TurnResponse{
				Model:            id,
				TaskSummary:      resp.TaskSummary,
				GeneratedContent: resp.GeneratedContent,
			})
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// ParseModels converts the requested model identifiers, rejecting unknown
// ones and dropping duplicates while keeping request order.
func ParseModels(names []string) ([]model.ModelID, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no models requested")
	}
	seen := make(map[model.ModelID]struct{}, len(names))
	ids := make([]model.ModelID, 0, len(names))
	for _, name := range names {
		id, ok := model.ParseModelID(name)
		if !ok {
			return nil, fmt.Errorf("unknown model %q", name)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
