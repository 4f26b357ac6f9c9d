package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adforge/adforge/knowledge"
	"github.com/adforge/adforge/llm"
	"github.com/adforge/adforge/model"
)

// knownCompanies is the set of companies the knowledge base is indexed by.
// A company filter is applied only when the requested name matches one of
// these; otherwise the search runs unfiltered.
var knownCompanies = []string{
	"Denticija",
	"Era Dental",
	"Evadenta",
	"Geros buhalterės",
	"ID Clinic",
	"Orto Vita",
	"Pabridentas",
	"Savi",
	"Vingio klinika",
}

const (
	// retrieveFetchK is how many candidates the similarity search returns
	// before deduplication.
	retrieveFetchK = 6
	// retrieveMaxDocs caps how many documents end up in the tool result.
	retrieveMaxDocs = 4
)

// RetrieveTool performs a similarity search against the knowledge base and
// serializes the matching example ads for the model.
type RetrieveTool struct {
	store knowledge.Store
}

// NewRetrieveTool creates a retrieve tool backed by the given store.
func NewRetrieveTool(store knowledge.Store) *RetrieveTool {
	return &RetrieveTool{store: store}
}

type retrieveArgs struct {
	Query   string `json:"query"`
	Company string `json:"company"`
}

// Definition implements Tool.
func (t *RetrieveTool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        model.RetrieveToolName,
		Description: "Fetch contextual information from the database about a company or its services.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The user request rephrased for a similarity search.",
				},
				"company": map[string]any{
					"type":        "string",
					"description": "Lowercased name of the company the information is needed for.",
				},
			},
			"required": []string{"query", "company"},
		},
	}
}

// Execute implements Tool. A store failure is returned as an error: without
// the knowledge base the run cannot proceed meaningfully.
func (t *RetrieveTool) Execute(ctx context.Context, args json.RawMessage) (Result, error) {
	var parsed retrieveArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return Result{}, fmt.Errorf("invalid retrieve arguments: %w", err)
	}

	filter := matchCompany(parsed.Company)
	docs, err := t.store.SimilaritySearch(ctx, parsed.Query, retrieveFetchK, filter)
	if err != nil {
		return Result{}, fmt.Errorf("similarity search: %w", err)
	}

	docs = dedupeByContent(docs)
	if len(docs) > retrieveMaxDocs {
		docs = docs[:retrieveMaxDocs]
	}

	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Ad %d:\nContent: %s\nCompany: %s", i+1, doc.Content, doc.Metadata.Company)
	}
	return Result{Content: b.String(), Artifact: docs}, nil
}

// matchCompany returns a store filter when the requested company matches a
// known one, comparing case-insensitively in both directions so partial
// names like "era" still hit "Era Dental".
func matchCompany(requested string) *knowledge.Filter {
	req := strings.ToLower(strings.TrimSpace(requested))
	if req == "" {
		return nil
	}
	for _, known := range knownCompanies {
		k := strings.ToLower(known)
		if strings.Contains(k, req) || strings.Contains(req, k) {
			return &knowledge.Filter{Company: known}
		}
	}
	return nil
}

func dedupeByContent(docs []knowledge.Document) []knowledge.Document {
	seen := make(map[string]struct{}, len(docs))
	out := docs[:0]
	for _, doc := range docs {
		if _, dup := seen[doc.Content]; dup {
			continue
		}
		seen[doc.Content] = struct{}{}
		out = append(out, doc)
	}
	return out
}
