// Package workflow runs the two-phase ad generation workflow: one
// augmentation pass that gathers context, then one creation graph per
// requested model, fanned out concurrently.
//
// Information Hiding:
// - Branch scheduling and isolation hidden inside Run
// - Event deduplication state is per-run and local to Run
// - Callers see only the emitted step events
package workflow

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/adforge/adforge/graph"
	"github.com/adforge/adforge/llm"
	"github.com/adforge/adforge/model"
	"github.com/adforge/adforge/tools"
)

// RateLimiter gates run admission.
type RateLimiter interface {
	Check(ctx context.Context) (exceeded bool, message string)
}

// DefaultBranchTimeout bounds one creation branch when no timeout is
// configured.
const DefaultBranchTimeout = 3 * time.Minute

// Orchestrator wires the graphs together and streams step events.
type Orchestrator struct {
	decider       llm.Provider
	providers     map[model.ModelID]llm.Provider
	registry      *tools.Registry
	scraper       graph.Scraper
	limiter       RateLimiter
	adParams      model.GenerationParams
	branchTimeout time.Duration
	logger        *log.Logger
}

// Options configures optional orchestrator behavior.
type Options struct {
	// Scraper enriches augmentation results; nil disables scraping.
	Scraper graph.Scraper
	// Limiter gates run admission; nil disables rate limiting.
	Limiter RateLimiter
	// AdParams are the generation-step sampling parameters. Zero value
	// selects the defaults.
	AdParams model.GenerationParams
	// BranchTimeout bounds each creation branch. Zero selects
	// DefaultBranchTimeout.
	BranchTimeout time.Duration
}

// New creates an orchestrator. decider routes the augmentation phase;
// providers hold one backend per supported model.
func New(decider llm.Provider, providers map[model.ModelID]llm.Provider, registry *tools.Registry, opts Options, logger *log.Logger) *Orchestrator {
	adParams := opts.AdParams
	if adParams == (model.GenerationParams{}) {
		adParams = model.DefaultGenerationParams()
	}
	timeout := opts.BranchTimeout
	if timeout <= 0 {
		timeout = DefaultBranchTimeout
	}
	return &Orchestrator{
		decider:       decider,
		providers:     providers,
		registry:      registry,
		scraper:       opts.Scraper,
		limiter:       opts.Limiter,
		adParams:      adParams,
		branchTimeout: timeout,
		logger:        logger,
	}
}

// Run executes one workflow run over the conversation so far and streams
// step events through emit. The final event is always Complete. Run returns
// an error only for unusable input; everything that goes wrong mid-run is
// reported as an error event instead.
func (o *Orchestrator) Run(ctx context.Context, turns []model.Turn, models []model.ModelID, emit model.EmitFunc) error {
	if len(models) == 0 {
		return fmt.Errorf("no models requested")
	}
	selected := make([]llm.Provider, 0, len(models))
	for _, id := range models {
		provider, ok := o.providers[id]
		if !ok {
			return fmt.Errorf("no provider configured for model %q", id)
		}
		selected = append(selected, provider)
	}

	// Serialize emissions: branches run concurrently but the consumer
	// sees one event at a time.
	var emitMu sync.Mutex
	send := func(ev model.StepEvent) {
		emitMu.Lock()
		defer emitMu.Unlock()
		emit(ev)
	}
	defer send(model.StepEvent{Kind: model.StepComplete})

	if o.limiter != nil {
		if exceeded, msg := o.limiter.Check(ctx); exceeded {
			send(model.StepEvent{Kind: model.StepError, Content: msg})
			return nil
		}
	}

	augState, ok := o.runAugmentation(ctx, turns, send)
	if !ok {
		return nil
	}

	prompt := ""
	if human, found := augState.Messages.LastHuman(); found {
		prompt = human.Text
	}

	_, retrieved := augState.Messages.FirstToolResult(model.RetrieveToolName)
	withSummary := retrieved || augState.ScrapedServices != "" || augState.ScrapedServiceContent != ""

	var wg sync.WaitGroup
	for _, provider := range selected {
		wg.Add(1)
		go func(p llm.Provider) {
			defer wg.Done()
			o.runBranch(ctx, p, turns, augState, prompt, withSummary, send)
		}(provider)
	}
	wg.Wait()
	return nil
}

// runAugmentation executes the augmentation graph and emits its events.
// Returns ok=false when the run must stop: any augmentation failure is
// terminal because every creation branch would inherit the same broken
// context.
func (o *Orchestrator) runAugmentation(ctx context.Context, turns []model.Turn, send model.EmitFunc) (model.WorkflowState, bool) {
	seed := model.WorkflowState{Messages: model.ToAugmentationMessages(turns)}

	var final model.WorkflowState
	failed := false
	sentRetrieval, sentServices, sentServiceContent := false, false, false

	o.newAugmentation().Run(ctx, seed, func(state model.WorkflowState) bool {
		final = state

		if msg, found := state.Messages.FirstError(); found {
			send(model.StepEvent{Kind: model.StepError, Content: msg.Text})
			failed = true
			return false
		}

		if !sentRetrieval {
			if msg, found := state.Messages.FirstToolResult(model.RetrieveToolName); found {
				send(model.StepEvent{Kind: model.StepRetrievalContent, Content: msg.Text})
				sentRetrieval = true
			}
		}
		if !sentServices && state.ScrapedServices != "" {
			send(model.StepEvent{Kind: model.StepScrapedServices, Content: state.ScrapedServices})
			sentServices = true
		}
		if !sentServiceContent && state.ScrapedServiceContent != "" {
			send(model.StepEvent{Kind: model.StepScrapedServiceContent, Content: state.ScrapedServiceContent})
			sentServiceContent = true
		}
		return true
	})

	return final, !failed
}

func (o *Orchestrator) newAugmentation() *graph.Augmentation {
	return graph.NewAugmentation(o.decider, o.registry, o.scraper, o.logger)
}

// runBranch executes one model's creation graph. The branch is isolated: a
// panic or failure here produces an error event for this model and leaves
// the other branches running.
func (o *Orchestrator) runBranch(ctx context.Context, provider llm.Provider, turns []model.Turn, augState model.WorkflowState, prompt string, withSummary bool, send model.EmitFunc) {
	owner := provider.ID()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Printf("[workflow:%s] branch panicked: %v", owner, r)
			send(model.StepEvent{
				Kind:    model.StepError,
				Model:   owner,
				Content: fmt.Sprintf("Failed to generate the ad: %v", r),
			})
		}
	}()

	branchCtx, cancel := context.WithTimeout(ctx, o.branchTimeout)
	defer cancel()

	state := augState.Clone()
	state.Messages = append(model.ToCreationMessages(turns, owner), model.AugmentationCarryover(augState)...)

	creation := graph.NewCreation(provider, o.adParams, o.logger)

	sentSummary, sentAd := false, false
	creation.Run(branchCtx, state, prompt, withSummary, func(st model.WorkflowState) bool {
		if msg, found := st.Messages.FirstErrorFor(owner); found {
			send(model.StepEvent{Kind: model.StepError, Model: owner, Content: msg.Text})
			return false
		}

		if !sentSummary {
			if msg, found := st.Messages.FirstFor(owner, model.FunctionCreateTaskSummary); found {
				send(model.StepEvent{Kind: model.StepTaskSummary, Model: owner, Content: msg.Text})
				sentSummary = true
			}
		}
		if !sentAd {
			if msg, found := st.Messages.LastFor(owner, model.FunctionGenerateAdContent); found {
				send(model.StepEvent{Kind: model.StepGenerateAd, Model: owner, Content: msg.Text})
				sentAd = true
			}
		}
		return true
	})
}
