package graph

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/adforge/adforge/llm"
	"github.com/adforge/adforge/model"
	"github.com/adforge/adforge/prompts"
)

// createNode is a node of the creation graph.
type createNode int

const (
	nodeTaskSummary createNode = iota
	nodeGenerateAd
	nodeCreateEnd
)

// summaryParams keeps the brief factual with a little room for phrasing.
var summaryParams = model.GenerationParams{Temperature: 0.1, TopP: 0.9, MaxTokens: 1500}

// adFailureMarker prefixes every failed generation message. Conversation
// filtering uses it to keep failed drafts away from later generations.
const adFailureMarker = "Failed to generate"

// Creation is the per-model ad writing graph: an optional task summary step
// followed by the ad generation step. One Creation instance serves one
// model backend.
type Creation struct {
	provider llm.Provider
	adParams model.GenerationParams
	logger   *log.Logger
}

// NewCreation creates a creation graph for the given backend.
func NewCreation(provider llm.Provider, adParams model.GenerationParams, logger *log.Logger) *Creation {
	return &Creation{provider: provider, adParams: adParams, logger: logger}
}

// Run executes the graph, yielding after every node. withSummary selects
// whether the task summary node runs first; it is false when the
// augmentation phase gathered no fresh context. Model failures become
// error-tagged messages in the yielded state.
func (g *Creation) Run(ctx context.Context, state model.WorkflowState, initialUserPrompt string, withSummary bool, yield YieldFunc) {
	owner := g.provider.ID()

	node := nodeGenerateAd
	if withSummary {
		node = nodeTaskSummary
	}

	for node != nodeCreateEnd {
		select {
		case <-ctx.Done():
			state.Append(model.NewErrorMessage(
				adFailureMarker+" the ad: "+ctx.Err().Error(),
				owner, model.FunctionGenerateAdContent))
			yield(state)
			return
		default:
		}

		var next createNode
		switch node {
		case nodeTaskSummary:
			state, next = g.taskSummary(ctx, state, initialUserPrompt)
		case nodeGenerateAd:
			state, next = g.generateAd(ctx, state)
		}

		if !yield(state) {
			return
		}
		node = next
	}
}

// taskSummary consolidates the gathered context into a reusable brief.
func (g *Creation) taskSummary(ctx context.Context, state model.WorkflowState, initialUserPrompt string) (model.WorkflowState, createNode) {
	owner := g.provider.ID()

	retrieved := ""
	if msg, ok := state.Messages.FirstToolResult(model.RetrieveToolName); ok {
		retrieved = msg.Text
	}

	system := prompts.TaskSummary(initialUserPrompt, state.ScrapedServiceContent, state.ScrapedServices, retrieved)
	messages := []llm.ChatMessage{
		llm.SystemMessage(system),
		llm.UserMessage(prompts.TaskSummaryUser),
	}

	resp, err := g.provider.Complete(ctx, messages, summaryParams)
	if err != nil {
		g.logger.Printf("[create:%s] task summary failed: %v", owner, err)
		state.Append(model.NewErrorMessage(
			"Failed to create the task summary: "+llm.ErrorMessage(owner, err),
			owner, model.FunctionCreateTaskSummary))
		return state, nodeCreateEnd
	}

	state.Append(model.NewAIMessage(resp.Content, model.Tags{
		OwnerModel: owner,
		Function:   model.FunctionCreateTaskSummary,
	}))
	return state, nodeGenerateAd
}

// generateAd writes the ad from the most recent brief and the filtered
// conversation.
func (g *Creation) generateAd(ctx context.Context, state model.WorkflowState) (model.WorkflowState, createNode) {
	owner := g.provider.ID()

	summary := lastSummary(state.Messages, owner)
	messages := append(
		[]llm.ChatMessage{llm.SystemMessage(prompts.GenerateAd(summary))},
		toChatMessages(generationConversation(state.Messages, owner))...,
	)

	resp, err := g.provider.CompleteWithFormat(ctx, messages, llm.JSONObjectFormat(), g.adParams)
	if err != nil {
		g.logger.Printf("[create:%s] generation failed: %v", owner, err)
		state.Append(model.NewErrorMessage(
			adFailureMarker+" the ad: "+llm.ErrorMessage(owner, err),
			owner, model.FunctionGenerateAdContent))
		return state, nodeCreateEnd
	}

	result, err := llm.DecodeAdResult(resp.Content)
	if err != nil {
		g.logger.Printf("[create:%s] malformed generation output: %v", owner, err)
		state.Append(model.NewErrorMessage(
			adFailureMarker+" the ad: "+err.Error(),
			owner, model.FunctionGenerateAdContent))
		return state, nodeCreateEnd
	}

	// Re-encode so downstream consumers always see the canonical shape.
	encoded, err := json.Marshal(result)
	if err != nil {
		state.Append(model.NewErrorMessage(
			adFailureMarker+" the ad: "+err.Error(),
			owner, model.FunctionGenerateAdContent))
		return state, nodeCreateEnd
	}

	state.Append(model.NewAIMessage(string(encoded), model.Tags{
		OwnerModel: owner,
		Function:   model.FunctionGenerateAdContent,
	}))
	return state, nodeCreateEnd
}

// lastSummary returns the text of the most recent task summary for the
// model, including summaries carried over from earlier turns.
func lastSummary(msgs model.Messages, owner model.ModelID) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		if m.Role == model.RoleAI && m.Tags.OwnerModel == owner &&
			m.Tags.Function == model.FunctionCreateTaskSummary && !m.Tags.IsError {
			return m.Text
		}
	}
	return ""
}

// generationConversation filters the state down to what the writing model
// should see: the user's requests and the model's own earlier drafts.
// Summaries travel in the system prompt, scrape and retrieval payloads were
// already folded into the brief, and failed drafts would only teach the
// model to fail again.
func generationConversation(msgs model.Messages, owner model.ModelID) model.Messages {
	var out model.Messages
	for _, m := range msgs {
		switch m.Role {
		case model.RoleHuman:
			out = append(out, m)
		case model.RoleAI:
			if m.Tags.Function != model.FunctionGenerateAdContent || m.Tags.OwnerModel != owner {
				continue
			}
			if m.Tags.IsError || strings.Contains(m.Text, adFailureMarker) {
				continue
			}
			out = append(out, m)
		}
	}
	return out
}
