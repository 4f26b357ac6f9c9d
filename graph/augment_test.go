package graph

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/adforge/adforge/llm"
	"github.com/adforge/adforge/model"
	"github.com/adforge/adforge/tools"
)

// fakeProvider scripts provider behavior per method.
type fakeProvider struct {
	id       model.ModelID
	complete func(msgs []llm.ChatMessage, params model.GenerationParams) (llm.Response, error)
	withFmt  func(msgs []llm.ChatMessage, params model.GenerationParams) (llm.Response, error)
	withTool func(msgs []llm.ChatMessage, params model.GenerationParams) (llm.Response, error)
}

func (p *fakeProvider) ID() model.ModelID { return p.id }
func (p *fakeProvider) Model() string     { return "fake" }

func (p *fakeProvider) Complete(ctx context.Context, msgs []llm.ChatMessage, params model.GenerationParams) (llm.Response, error) {
	if p.complete == nil {
		return llm.Response{}, errors.New("complete not scripted")
	}
	return p.complete(msgs, params)
}

func (p *fakeProvider) CompleteWithFormat(ctx context.Context, msgs []llm.ChatMessage, _ *llm.ResponseFormat, params model.GenerationParams) (llm.Response, error) {
	if p.withFmt == nil {
		return llm.Response{}, errors.New("format not scripted")
	}
	return p.withFmt(msgs, params)
}

func (p *fakeProvider) CompleteWithTools(ctx context.Context, msgs []llm.ChatMessage, _ []llm.ToolDefinition, params model.GenerationParams) (llm.Response, error) {
	if p.withTool == nil {
		return llm.Response{}, errors.New("tools not scripted")
	}
	return p.withTool(msgs, params)
}

// fakeTool answers with fixed content.
type fakeTool struct {
	name    string
	content string
	err     error
}

func (t *fakeTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{Name: t.name, Parameters: map[string]any{"type": "object"}}
}

func (t *fakeTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	if t.err != nil {
		return tools.Result{}, t.err
	}
	return tools.Result{Content: t.content}, nil
}

// fakeScraper fills scraped fields.
type fakeScraper struct {
	called bool
	err    error
}

func (s *fakeScraper) Scrape(ctx context.Context, state model.WorkflowState) (model.WorkflowState, error) {
	s.called = true
	if s.err != nil {
		return model.WorkflowState{}, s.err
	}
	state.ScrapedServices = "implants, whitening"
	return state, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testRegistry(t *testing.T, toolset ...tools.Tool) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry()
	for _, tool := range toolset {
		if err := registry.Register(tool); err != nil {
			t.Fatalf("register tool: %v", err)
		}
	}
	return registry
}

func toolCallResponse() llm.Response {
	retrieveArgs, _ := json.Marshal(map[string]string{"query": "era dental", "company": "era dental"})
	searchArgs, _ := json.Marshal(map[string]string{"query": "era dental services"})
	return llm.Response{ToolCalls: []llm.ToolCall{
		{ID: "c1", Name: model.RetrieveToolName, Arguments: retrieveArgs},
		{ID: "c2", Name: model.WebSearchToolName, Arguments: searchArgs},
	}}
}

func collectStates(g *Augmentation, seed model.WorkflowState) []model.WorkflowState {
	var states []model.WorkflowState
	g.Run(context.Background(), seed, func(state model.WorkflowState) bool {
		states = append(states, state)
		return true
	})
	return states
}

func TestAugmentationNoToolsNeeded(t *testing.T) {
	decider := &fakeProvider{id: model.ModelOpenAI, withTool: func(msgs []llm.ChatMessage, params model.GenerationParams) (llm.Response, error) {
		if params.Temperature != 0.0 || params.MaxTokens != 200 {
			t.Errorf("unexpected decider params: %+v", params)
		}
		return llm.Response{Content: "No context needed"}, nil
	}}

	g := NewAugmentation(decider, testRegistry(t), nil, testLogger())
	seed := model.WorkflowState{Messages: model.Messages{model.NewHumanMessage("hi")}}
	states := collectStates(g, seed)

	if len(states) != 1 {
		t.Fatalf("expected 1 yielded state, got %d", len(states))
	}
	last, _ := states[0].Messages.Last()
	if last.Tags.Function != model.FunctionQueryOrRespond || last.HasToolCalls() {
		t.Errorf("expected a plain decision message, got %+v", last)
	}
}

func TestAugmentationExecutesTools(t *testing.T) {
	decider := &fakeProvider{id: model.ModelOpenAI, withTool: func(msgs []llm.ChatMessage, params model.GenerationParams) (llm.Response, error) {
		return toolCallResponse(), nil
	}}
	registry := testRegistry(t,
		&fakeTool{name: model.RetrieveToolName, content: "Ad 1: implants"},
		&fakeTool{name: model.WebSearchToolName, content: `["https://eradental.lt"]`},
	)
	scraper := &fakeScraper{}

	g := NewAugmentation(decider, registry, scraper, testLogger())
	seed := model.WorkflowState{Messages: model.Messages{model.NewHumanMessage("ad for era dental")}}
	states := collectStates(g, seed)

	if len(states) != 3 {
		t.Fatalf("expected 3 yielded states, got %d", len(states))
	}

	final := states[len(states)-1]
	if msg, ok := final.Messages.FirstToolResult(model.RetrieveToolName); !ok || msg.Text != "Ad 1: implants" {
		t.Errorf("expected retrieve result in final state")
	}
	if !scraper.called {
		t.Error("expected scraper invoked for found links")
	}
	if final.ScrapedServices != "implants, whitening" {
		t.Errorf("expected scraped services in final state, got %q", final.ScrapedServices)
	}
}

func TestAugmentationSkipsScrapeOnSearchErrorPayload(t *testing.T) {
	decider := &fakeProvider{id: model.ModelOpenAI, withTool: func(msgs []llm.ChatMessage, params model.GenerationParams) (llm.Response, error) {
		return toolCallResponse(), nil
	}}
	registry := testRegistry(t,
		&fakeTool{name: model.RetrieveToolName, content: "Ad 1: implants"},
		&fakeTool{name: model.WebSearchToolName, content: `{"error":"serper down"}`},
	)
	scraper := &fakeScraper{}

	g := NewAugmentation(decider, registry, scraper, testLogger())
	seed := model.WorkflowState{Messages: model.Messages{model.NewHumanMessage("ad")}}
	states := collectStates(g, seed)

	if scraper.called {
		t.Error("degraded web search must not trigger scraping")
	}
	final := states[len(states)-1]
	if _, found := final.Messages.FirstError(); found {
		t.Error("degraded web search must not produce an error message")
	}
}

func TestAugmentationDeciderFailure(t *testing.T) {
	decider := &fakeProvider{id: model.ModelOpenAI, withTool: func(msgs []llm.ChatMessage, params model.GenerationParams) (llm.Response, error) {
		return llm.Response{}, errors.New("api down")
	}}

	g := NewAugmentation(decider, testRegistry(t), nil, testLogger())
	states := collectStates(g, model.WorkflowState{Messages: model.Messages{model.NewHumanMessage("hi")}})

	msg, found := states[len(states)-1].Messages.FirstError()
	if !found {
		t.Fatal("expected an error-tagged message")
	}
	if msg.Tags.OwnerModel != "" {
		t.Errorf("augmentation errors must carry no owner, got %q", msg.Tags.OwnerModel)
	}
}

func TestAugmentationToolFailureTerminates(t *testing.T) {
	decider := &fakeProvider{id: model.ModelOpenAI, withTool: func(msgs []llm.ChatMessage, params model.GenerationParams) (llm.Response, error) {
		return toolCallResponse(), nil
	}}
	registry := testRegistry(t,
		&fakeTool{name: model.RetrieveToolName, err: errors.New("db locked")},
		&fakeTool{name: model.WebSearchToolName, content: `[]`},
	)

	g := NewAugmentation(decider, registry, nil, testLogger())
	states := collectStates(g, model.WorkflowState{Messages: model.Messages{model.NewHumanMessage("hi")}})

	final := states[len(states)-1]
	if _, found := final.Messages.FirstError(); !found {
		t.Fatal("expected an error-tagged message for the failed tool")
	}
}

func TestAugmentationScrapeFailureRecorded(t *testing.T) {
	decider := &fakeProvider{id: model.ModelOpenAI, withTool: func(msgs []llm.ChatMessage, params model.GenerationParams) (llm.Response, error) {
		return toolCallResponse(), nil
	}}
	registry := testRegistry(t,
		&fakeTool{name: model.RetrieveToolName, content: "ads"},
		&fakeTool{name: model.WebSearchToolName, content: `["https://x.lt"]`},
	)
	scraper := &fakeScraper{err: errors.New("scrape backend down")}

	g := NewAugmentation(decider, registry, scraper, testLogger())
	states := collectStates(g, model.WorkflowState{Messages: model.Messages{model.NewHumanMessage("hi")}})

	msg, found := states[len(states)-1].Messages.FirstError()
	if !found {
		t.Fatal("expected an error-tagged message for the failed scrape")
	}
	if msg.Tags.Function != model.FunctionScrapedServiceContent {
		t.Errorf("unexpected function tag: %q", msg.Tags.Function)
	}
}
