package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adforge/adforge/llm"
	"github.com/adforge/adforge/model"
)

// SearchResult is one organic hit from a web search.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
}

// SearchClient performs a web search.
type SearchClient interface {
	Search(ctx context.Context, query string) ([]SearchResult, error)
}

const serperEndpoint = "https://google.serper.dev/search"

// SerperClient talks to the serper.dev Google search API.
type SerperClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewSerperClient creates a search client using the given API key.
func NewSerperClient(apiKey string) *SerperClient {
	return &SerperClient{
		apiKey:   apiKey,
		endpoint: serperEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// NewSerperClientWithEndpoint is like NewSerperClient but targets a custom
// endpoint. Used by tests.
func NewSerperClientWithEndpoint(apiKey, endpoint string) *SerperClient {
	c := NewSerperClient(apiKey)
	c.endpoint = endpoint
	return c
}

type serperResponse struct {
	Organic []SearchResult `json:"organic"`
}

// Search implements SearchClient.
func (c *SerperClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	body, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("search returned status %d: %s", resp.StatusCode, payload)
	}

	var decoded serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return decoded.Organic, nil
}

// WebSearchTool looks up current information on the web. Search failures
// degrade to an error payload in the tool result rather than failing the
// run: a missing web result should not abort ad generation.
type WebSearchTool struct {
	client SearchClient
}

// NewWebSearchTool creates a web search tool backed by the given client.
func NewWebSearchTool(client SearchClient) *WebSearchTool {
	return &WebSearchTool{client: client}
}

type webSearchArgs struct {
	Query string `json:"query"`
}

// Definition implements Tool.
func (t *WebSearchTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        model.WebSearchToolName,
		Description: "Look up current information on the web.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The user request rephrased for a web search.",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Execute implements Tool.
func (t *WebSearchTool) Execute(ctx context.Context, args json.RawMessage) (Result, error) {
	var parsed webSearchArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return searchErrorResult(fmt.Sprintf("invalid web search arguments: %v", err)), nil
	}
	if parsed.Query == "" {
		return searchErrorResult("empty search query"), nil
	}

	results, err := t.client.Search(ctx, parsed.Query)
	if err != nil {
		return searchErrorResult(err.Error()), nil
	}

	links := make([]string, 0, len(results))
	for _, r := range results {
		links = append(links, r.Link)
	}
	content, err := json.Marshal(links)
	if err != nil {
		return searchErrorResult(fmt.Sprintf("encode search results: %v", err)), nil
	}
	return Result{Content: string(content), Artifact: results}, nil
}

func searchErrorResult(msg string) Result {
	content, _ := json.Marshal(map[string]string{"error": msg})
	return Result{Content: string(content)}
}
