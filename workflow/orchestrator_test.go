package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/adforge/adforge/llm"
	"github.com/adforge/adforge/model"
	"github.com/adforge/adforge/tools"
)

type fakeProvider struct {
	id       model.ModelID
	complete func(msgs []llm.ChatMessage) (llm.Response, error)
	withFmt  func(msgs []llm.ChatMessage) (llm.Response, error)
	withTool func(msgs []llm.ChatMessage) (llm.Response, error)
}

func (p *fakeProvider) ID() model.ModelID { return p.id }
func (p *fakeProvider) Model() string     { return "fake" }

func (p *fakeProvider) Complete(ctx context.Context, msgs []llm.ChatMessage, params model.GenerationParams) (llm.Response, error) {
	if p.complete == nil {
		return llm.Response{}, errors.New("complete not scripted")
	}
	return p.complete(msgs)
}

func (p *fakeProvider) CompleteWithFormat(ctx context.Context, msgs []llm.ChatMessage, _ *llm.ResponseFormat, params model.GenerationParams) (llm.Response, error) {
	if p.withFmt == nil {
		return llm.Response{}, errors.New("format not scripted")
	}
	return p.withFmt(msgs)
}

func (p *fakeProvider) CompleteWithTools(ctx context.Context, msgs []llm.ChatMessage, _ []llm.ToolDefinition, params model.GenerationParams) (llm.Response, error) {
	if p.withTool == nil {
		return llm.Response{}, errors.New("tools not scripted")
	}
	return p.withTool(msgs)
}

type fakeTool struct {
	name    string
	content string
}

func (t *fakeTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{Name: t.name, Parameters: map[string]any{"type": "object"}}
}

func (t *fakeTool) Execute(ctx context.Context, args json.RawMessage) (tools.Result, error) {
	return tools.Result{Content: t.content}, nil
}

type fakeLimiter struct {
	exceeded bool
}

func (l *fakeLimiter) Check(ctx context.Context) (bool, string) {
	if l.exceeded {
		return true, "Rate limit exceeded. Please try again a bit later."
	}
	return false, ""
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// toolCallingDecider always requests both tools.
func toolCallingDecider() *fakeProvider {
	return &fakeProvider{id: model.ModelOpenAI, withTool: func(msgs []llm.ChatMessage) (llm.Response, error) {
		retrieveArgs, _ := json.Marshal(map[string]string{"query": "q", "company": "era dental"})
		searchArgs, _ := json.Marshal(map[string]string{"query": "q"})
		return llm.Response{ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: model.RetrieveToolName, Arguments: retrieveArgs},
			{ID: "c2", Name: model.WebSearchToolName, Arguments: searchArgs},
		}}, nil
	}}
}

// plainDecider never requests tools.
func plainDecider() *fakeProvider {
	return &fakeProvider{id: model.ModelOpenAI, withTool: func(msgs []llm.ChatMessage) (llm.Response, error) {
		return llm.Response{Content: "No context needed"}, nil
	}}
}

func workingProvider(id model.ModelID) *fakeProvider {
	return &fakeProvider{
		id: id,
		complete: func(msgs []llm.ChatMessage) (llm.Response, error) {
			return llm.Response{Content: "brief for " + string(id)}, nil
		},
		withFmt: func(msgs []llm.ChatMessage) (llm.Response, error) {
			return llm.Response{Content: `{"adText":"ad by ` + string(id) + `","otherText":""}`}, nil
		},
	}
}

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	registry := tools.NewRegistry()
	for _, tool := range []tools.Tool{
		&fakeTool{name: model.RetrieveToolName, content: "Ad 1: implants"},
		&fakeTool{name: model.WebSearchToolName, content: `{"error":"search disabled"}`},
	} {
		if err := registry.Register(tool); err != nil {
			t.Fatalf("register tool: %v", err)
		}
	}
	return registry
}

func userTurns(prompt string) []model.Turn {
	return []model.Turn{{Role: model.TurnRoleUser, Content: prompt}}
}

func runAndCollect(t *testing.T, o *Orchestrator, turns []model.Turn, models []model.ModelID) []model.StepEvent {
	t.Helper()
	var events []model.StepEvent
	err := o.Run(context.Background(), turns, models, func(ev model.StepEvent) {
		events = append(events, ev)
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return events
}

func countKind(events []model.StepEvent, kind model.StepKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func findFor(events []model.StepEvent, kind model.StepKind, id model.ModelID) (model.StepEvent, bool) {
	for _, ev := range events {
		if ev.Kind == kind && ev.Model == id {
			return ev, true
		}
	}
	return model.StepEvent{}, false
}

func TestRunRateLimited(t *testing.T) {
	o := New(plainDecider(), map[model.ModelID]llm.Provider{
		model.ModelOpenAI: workingProvider(model.ModelOpenAI),
	}, testRegistry(t), Options{Limiter: &fakeLimiter{exceeded: true}}, testLogger())

	events := runAndCollect(t, o, userTurns("hi"), []model.ModelID{model.ModelOpenAI})

	if len(events) != 2 {
		t.Fatalf("expected error then complete, got %+v", events)
	}
	if events[0].Kind != model.StepError || !strings.Contains(events[0].Content, "Rate limit exceeded") {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if events[1].Kind != model.StepComplete {
		t.Errorf("expected trailing complete, got %+v", events[1])
	}
}

func TestRunTwoModels(t *testing.T) {
	o := New(toolCallingDecider(), map[model.ModelID]llm.Provider{
		model.ModelOpenAI: workingProvider(model.ModelOpenAI),
		model.ModelGemini: workingProvider(model.ModelGemini),
	}, testRegistry(t), Options{}, testLogger())

	events := runAndCollect(t, o, userTurns("ad for era dental"),
		[]model.ModelID{model.ModelOpenAI, model.ModelGemini})

	if n := countKind(events, model.StepRetrievalContent); n != 1 {
		t.Errorf("expected exactly one retrievalContent event, got %d", n)
	}
	for _, id := range []model.ModelID{model.ModelOpenAI, model.ModelGemini} {
		if ev, ok := findFor(events, model.StepTaskSummary, id); !ok || !strings.Contains(ev.Content, string(id)) {
			t.Errorf("missing task summary for %s", id)
		}
		if ev, ok := findFor(events, model.StepGenerateAd, id); !ok || !strings.Contains(ev.Content, "ad by "+string(id)) {
			t.Errorf("missing generated ad for %s", id)
		}
	}
	if events[len(events)-1].Kind != model.StepComplete {
		t.Errorf("expected trailing complete, got %+v", events[len(events)-1])
	}
	if n := countKind(events, model.StepError); n != 0 {
		t.Errorf("expected no errors, got %d", n)
	}
}

func TestRunBranchIsolation(t *testing.T) {
	broken := &fakeProvider{
		id: model.ModelAnthropic,
		complete: func(msgs []llm.ChatMessage) (llm.Response, error) {
			return llm.Response{}, errors.New(`{"error":{"error":{"message":"overloaded"}}}`)
		},
	}

	o := New(toolCallingDecider(), map[model.ModelID]llm.Provider{
		model.ModelOpenAI:    workingProvider(model.ModelOpenAI),
		model.ModelAnthropic: broken,
	}, testRegistry(t), Options{}, testLogger())

	events := runAndCollect(t, o, userTurns("ad for era dental"),
		[]model.ModelID{model.ModelOpenAI, model.ModelAnthropic})

	if ev, ok := findFor(events, model.StepError, model.ModelAnthropic); !ok {
		t.Error("expected an error event for the broken model")
	} else if !strings.Contains(ev.Content, "overloaded") {
		t.Errorf("expected the unwrapped message, got %q", ev.Content)
	}
	if _, ok := findFor(events, model.StepGenerateAd, model.ModelOpenAI); !ok {
		t.Error("healthy branch must still produce its ad")
	}
	if _, ok := findFor(events, model.StepGenerateAd, model.ModelAnthropic); ok {
		t.Error("failed branch must not produce an ad")
	}
}

func TestRunBranchPanicIsolated(t *testing.T) {
	panicky := &fakeProvider{
		id: model.ModelGemini,
		complete: func(msgs []llm.ChatMessage) (llm.Response, error) {
			panic("nil dereference in backend")
		},
	}

	o := New(toolCallingDecider(), map[model.ModelID]llm.Provider{
		model.ModelOpenAI: workingProvider(model.ModelOpenAI),
		model.ModelGemini: panicky,
	}, testRegistry(t), Options{}, testLogger())

	events := runAndCollect(t, o, userTurns("ad"),
		[]model.ModelID{model.ModelOpenAI, model.ModelGemini})

	if ev, ok := findFor(events, model.StepError, model.ModelGemini); !ok {
		t.Error("expected the panic surfaced as an error event")
	} else if !strings.Contains(ev.Content, "nil dereference") {
		t.Errorf("expected the panic value in the message, got %q", ev.Content)
	}
	if _, ok := findFor(events, model.StepGenerateAd, model.ModelOpenAI); !ok {
		t.Error("healthy branch must survive the other branch's panic")
	}
	if events[len(events)-1].Kind != model.StepComplete {
		t.Error("expected trailing complete even after a panic")
	}
}

func TestRunAugmentationFailureTerminates(t *testing.T) {
	decider := &fakeProvider{id: model.ModelOpenAI, withTool: func(msgs []llm.ChatMessage) (llm.Response, error) {
		return llm.Response{}, errors.New("api down")
	}}

	o := New(decider, map[model.ModelID]llm.Provider{
		model.ModelOpenAI: workingProvider(model.ModelOpenAI),
	}, testRegistry(t), Options{}, testLogger())

	events := runAndCollect(t, o, userTurns("hi"), []model.ModelID{model.ModelOpenAI})

	if n := countKind(events, model.StepError); n != 1 {
		t.Fatalf("expected exactly one error event, got %+v", events)
	}
	if ev, _ := findFor(events, model.StepError, ""); ev.Model != "" {
		t.Error("augmentation errors must carry no model")
	}
	if countKind(events, model.StepTaskSummary)+countKind(events, model.StepGenerateAd) != 0 {
		t.Error("no branch events may follow an augmentation failure")
	}
}

func TestRunNoContextSkipsSummary(t *testing.T) {
	provider := &fakeProvider{
		id: model.ModelOpenAI,
		withFmt: func(msgs []llm.ChatMessage) (llm.Response, error) {
			return llm.Response{Content: `{"adText":"","otherText":"Hello! How can I help?"}`}, nil
		},
	}

	o := New(plainDecider(), map[model.ModelID]llm.Provider{
		model.ModelOpenAI: provider,
	}, testRegistry(t), Options{}, testLogger())

	events := runAndCollect(t, o, userTurns("hi, tell me about yourself"),
		[]model.ModelID{model.ModelOpenAI})

	if n := countKind(events, model.StepTaskSummary); n != 0 {
		t.Errorf("expected no task summary without fresh context, got %d", n)
	}
	if _, ok := findFor(events, model.StepGenerateAd, model.ModelOpenAI); !ok {
		t.Error("expected a generateAd event")
	}
}

func TestRunUnknownModelRejected(t *testing.T) {
	o := New(plainDecider(), map[model.ModelID]llm.Provider{
		model.ModelOpenAI: workingProvider(model.ModelOpenAI),
	}, testRegistry(t), Options{}, testLogger())

	err := o.Run(context.Background(), userTurns("hi"), []model.ModelID{model.ModelGemini}, func(model.StepEvent) {})
	if err == nil {
		t.Fatal("expected error for unconfigured model")
	}
}
