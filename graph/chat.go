// Package graph implements the two workflow phases as small directed
// graphs with a fixed node set: the augmentation graph gathers context for
// the request, and a creation graph per model writes the ad.
//
// Information Hiding:
// - Node transition logic hidden inside each graph's Run method
// - Model failures become error-tagged messages in the state, never
//   returned errors; Run only fails on yield cancellation
package graph

import (
	"github.com/adforge/adforge/llm"
	"github.com/adforge/adforge/model"
)

// toChatMessages converts conversation messages to the provider wire form.
func toChatMessages(msgs model.Messages) []llm.ChatMessage {
	out := make([]llm.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case model.RoleSystem:
			out = append(out, llm.SystemMessage(m.Text))
		case model.RoleHuman:
			out = append(out, llm.UserMessage(m.Text))
		case model.RoleAI:
			cm := llm.AssistantMessage(m.Text)
			for _, tc := range m.ToolCalls {
				cm.ToolCalls = append(cm.ToolCalls, llm.ToolCall{
					ID:        tc.ID,
					Name:      tc.Name,
					Arguments: tc.Arguments,
				})
			}
			out = append(out, cm)
		case model.RoleToolResult:
			out = append(out, llm.ChatMessage{
				Role:       llm.RoleTool,
				Content:    m.Text,
				ToolCallID: m.ToolCallID,
				ToolName:   m.ToolName,
			})
		}
	}
	return out
}
