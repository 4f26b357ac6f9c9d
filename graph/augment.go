package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/adforge/adforge/llm"
	"github.com/adforge/adforge/model"
	"github.com/adforge/adforge/prompts"
	"github.com/adforge/adforge/tools"
)

// augmentNode is a node of the augmentation graph. The node set is fixed at
// compile time; transitions are decided in Run, not looked up in a table.
type augmentNode int

const (
	nodeQueryOrRespond augmentNode = iota
	nodeTools
	nodeFollowUpWebSearch
	nodeAugmentEnd
)

// deciderParams pins the decision step to deterministic sampling. The
// decider routes; it does not create.
var deciderParams = model.GenerationParams{Temperature: 0.0, TopP: 1.0, MaxTokens: 200}

// Scraper enriches a workflow state with scraped service data.
type Scraper interface {
	Scrape(ctx context.Context, state model.WorkflowState) (model.WorkflowState, error)
}

// YieldFunc receives the state after every node. Returning false stops the
// graph before the next node runs.
type YieldFunc func(state model.WorkflowState) bool

// Augmentation is the context-gathering graph. A decision model chooses
// whether to invoke the retrieve and web_search tools, the tools execute,
// and a follow-up scrape turns found links into service content.
type Augmentation struct {
	decider  llm.Provider
	registry *tools.Registry
	scraper  Scraper
	logger   *log.Logger
}

// NewAugmentation creates the augmentation graph. scraper may be nil, in
// which case the follow-up scrape node is skipped.
func NewAugmentation(decider llm.Provider, registry *tools.Registry, scraper Scraper, logger *log.Logger) *Augmentation {
	return &Augmentation{decider: decider, registry: registry, scraper: scraper, logger: logger}
}

// Run executes the graph from the given seed state, yielding after every
// node. Model and tool failures are recorded as error-tagged messages in
// the yielded state; Run itself returns no error.
func (g *Augmentation) Run(ctx context.Context, state model.WorkflowState, yield YieldFunc) {
	node := nodeQueryOrRespond
	for node != nodeAugmentEnd {
		select {
		case <-ctx.Done():
			state.Append(augmentError(fmt.Sprintf("Failed to gather context: %v", ctx.Err()), model.FunctionQueryOrRespond))
			yield(state)
			return
		default:
		}

		var next augmentNode
		switch node {
		case nodeQueryOrRespond:
			state, next = g.queryOrRespond(ctx, state)
		case nodeTools:
			state, next = g.runTools(ctx, state)
		case nodeFollowUpWebSearch:
			state, next = g.followUpWebSearch(ctx, state)
		}

		if !yield(state) {
			return
		}
		node = next
	}
}

// queryOrRespond asks the decision model whether the request needs context.
func (g *Augmentation) queryOrRespond(ctx context.Context, state model.WorkflowState) (model.WorkflowState, augmentNode) {
	messages := append([]llm.ChatMessage{llm.SystemMessage(prompts.AugmentationSystem)}, toChatMessages(state.Messages)...)

	resp, err := g.decider.CompleteWithTools(ctx, messages, g.registry.Definitions(), deciderParams)
	if err != nil {
		g.logger.Printf("[augment] decision failed: %v", err)
		state.Append(augmentError(
			"Failed to decide whether retrieval is needed: "+llm.ErrorMessage(g.decider.ID(), err),
			model.FunctionQueryOrRespond))
		return state, nodeAugmentEnd
	}

	msg := model.NewAIMessage(resp.Content, model.Tags{Function: model.FunctionQueryOrRespond})
	for _, tc := range resp.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, model.ToolCallRequest{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
	}
	state.Append(msg)

	if msg.HasToolCalls() {
		return state, nodeTools
	}
	return state, nodeAugmentEnd
}

// runTools executes every tool call from the decision message in order.
func (g *Augmentation) runTools(ctx context.Context, state model.WorkflowState) (model.WorkflowState, augmentNode) {
	last, ok := state.Messages.Last()
	if !ok || !last.HasToolCalls() {
		return state, nodeAugmentEnd
	}

	for _, call := range last.ToolCalls {
		tool, found := g.registry.Get(call.Name)
		if !found {
			g.logger.Printf("[augment] unknown tool requested: %s", call.Name)
			state.Append(augmentError(
				fmt.Sprintf("Failed to retrieve context: unknown tool %q", call.Name),
				model.FunctionQueryOrRespond))
			return state, nodeAugmentEnd
		}

		result, err := tool.Execute(ctx, call.Arguments)
		if err != nil {
			g.logger.Printf("[augment] tool %s failed: %v", call.Name, err)
			state.Append(augmentError(
				fmt.Sprintf("Failed to retrieve context: %v", err),
				model.FunctionQueryOrRespond))
			return state, nodeAugmentEnd
		}
		state.Append(model.NewToolResultMessage(call.ID, call.Name, result.Content, result.Artifact))
	}

	if g.scraper != nil && scrapeCandidates(state) {
		return state, nodeFollowUpWebSearch
	}
	return state, nodeAugmentEnd
}

// followUpWebSearch hands the state to the scraping service, which fills
// ScrapedServices or ScrapedServiceContent from the found links.
func (g *Augmentation) followUpWebSearch(ctx context.Context, state model.WorkflowState) (model.WorkflowState, augmentNode) {
	updated, err := g.scraper.Scrape(ctx, state)
	if err != nil {
		g.logger.Printf("[augment] scrape failed: %v", err)
		state.Append(augmentError(
			fmt.Sprintf("Failed to scrape service content: %v", err),
			model.FunctionScrapedServiceContent))
		return state, nodeAugmentEnd
	}
	return updated, nodeAugmentEnd
}

// scrapeCandidates reports whether the web search produced links worth
// scraping. A degraded search returns a JSON error object, which is not an
// array and therefore yields no candidates.
func scrapeCandidates(state model.WorkflowState) bool {
	result, ok := state.Messages.FirstToolResult(model.WebSearchToolName)
	if !ok {
		return false
	}
	var links []string
	if err := json.Unmarshal([]byte(result.Text), &links); err != nil {
		return false
	}
	return len(links) > 0
}

// augmentError builds an augmentation-phase error message. Augmentation
// errors carry no owner model: they terminate the whole run, not a branch.
func augmentError(text string, fn model.FunctionTag) model.ConversationMessage {
	return model.NewErrorMessage(text, "", fn)
}
