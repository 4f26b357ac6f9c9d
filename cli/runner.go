// Command execution for CLI commands.
//
// Information Hiding:
// - Component wiring hidden from the command layer
// - Output formatting hidden

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adforge/adforge/config"
	"github.com/adforge/adforge/graph"
	"github.com/adforge/adforge/knowledge"
	"github.com/adforge/adforge/llm"
	"github.com/adforge/adforge/model"
	"github.com/adforge/adforge/ratelimit"
	"github.com/adforge/adforge/scrape"
	"github.com/adforge/adforge/server"
	"github.com/adforge/adforge/tools"
	"github.com/adforge/adforge/workflow"
)

// buildOrchestrator wires the full workflow from settings.
func buildOrchestrator(settings config.Settings, logger *log.Logger) (*workflow.Orchestrator, func(), error) {
	if len(settings.Backends) == 0 {
		return nil, nil, fmt.Errorf("no model backends configured; set at least one API key")
	}
	if settings.Decider.APIKey == "" {
		return nil, nil, fmt.Errorf("OPENAI_API_KEY is required for the decision model")
	}

	providers := make(map[model.ModelID]llm.Provider, len(settings.Backends))
	for id, backend := range settings.Backends {
		provider, err := llm.NewProvider(id, backend.APIKey, backend.Model)
		if err != nil {
			return nil, nil, fmt.Errorf("create %s provider: %w", id, err)
		}
		providers[id] = provider
	}

	decider := llm.NewOpenAIProvider(settings.Decider.APIKey, settings.Decider.Model)

	embedder := knowledge.NewOpenAIEmbedder(settings.Decider.APIKey)
	store, err := knowledge.OpenSqlite(settings.Knowledge.DBPath, embedder)
	if err != nil {
		return nil, nil, fmt.Errorf("open knowledge base: %w", err)
	}
	closers := []func() error{store.Close}
	cleanup := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	registry := tools.NewRegistry()
	if err := registry.Register(tools.NewRetrieveTool(store)); err != nil {
		cleanup()
		return nil, nil, err
	}
	if settings.Search.SerperAPIKey != "" {
		search := tools.NewSerperClient(settings.Search.SerperAPIKey)
		if err := registry.Register(tools.NewWebSearchTool(search)); err != nil {
			cleanup()
			return nil, nil, err
		}
	} else {
		logger.Printf("[cli] SERPER_API_KEY not set, web search disabled")
	}

	var scraper graph.Scraper
	if settings.Scrape.ServiceURL != "" {
		scraper = scrape.NewClient(settings.Scrape.ServiceURL)
	} else {
		logger.Printf("[cli] SCRAPE_SERVICE_URL not set, scraping disabled")
	}

	var limiter workflow.RateLimiter
	if settings.RateLimit.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: settings.RateLimit.RedisAddr})
		closers = append(closers, client.Close)
		limiter = ratelimit.NewLimiter(client, settings.RateLimit.Limit, settings.RateLimit.Window, logger)
	}

	orch := workflow.New(decider, providers, registry, workflow.Options{
		Scraper:       scraper,
		Limiter:       limiter,
		AdParams:      settings.Generate.Params(),
		BranchTimeout: settings.Generate.BranchTimeout,
	}, logger)
	return orch, cleanup, nil
}

// Serve starts the HTTP server and blocks.
func Serve(settings config.Settings, logger *log.Logger) error {
	orch, cleanup, err := buildOrchestrator(settings, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return server.New(orch, logger).Start(settings.Server.Addr)
}

// RunOnce executes a single-prompt workflow and prints each step event as a
// JSON line on stdout.
func RunOnce(ctx context.Context, settings config.Settings, prompt string, modelNames []string, logger *log.Logger) error {
	models, err := server.ParseModels(modelNames)
	if err != nil {
		return err
	}

	orch, cleanup, err := buildOrchestrator(settings, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	enc := json.NewEncoder(os.Stdout)
	turns := []model.Turn{{Role: model.TurnRoleUser, Content: prompt}}
	return orch.Run(ctx, turns, models, func(ev model.StepEvent) {
		if err := enc.Encode(ev); err != nil {
			logger.Printf("[cli] encode event failed: %v", err)
		}
	})
}

// Ingest loads the knowledge base from a directory of .txt files.
func Ingest(ctx context.Context, settings config.Settings, dir string, logger *log.Logger) error {
	if settings.Decider.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required for embeddings")
	}

	embedder := knowledge.NewOpenAIEmbedder(settings.Decider.APIKey)
	store, err := knowledge.OpenSqlite(settings.Knowledge.DBPath, embedder)
	if err != nil {
		return fmt.Errorf("open knowledge base: %w", err)
	}
	defer store.Close()

	start := time.Now()
	count, err := knowledge.LoadDirectory(ctx, store, dir)
	if err != nil {
		return err
	}
	logger.Printf("[cli] ingested %d documents in %s", count, time.Since(start).Round(time.Millisecond))
	fmt.Printf("Ingested %d documents from %s\n", count, dir)
	return nil
}
