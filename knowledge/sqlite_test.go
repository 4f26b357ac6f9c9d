package knowledge

import (
	"context"
	"testing"
)

// fakeEmbedder maps known texts to fixed vectors so similarity ordering is
// deterministic.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (e *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := e.vectors[text]; ok {
			out[i] = vec
		} else {
			out[i] = []float32{0, 0, 1}
		}
	}
	return out, nil
}

func testStore(t *testing.T) *SqliteStore {
	t.Helper()
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"dental implants":    {1, 0, 0},
		"implants ad":        {0.9, 0.1, 0},
		"accounting ad":      {0, 1, 0},
		"teeth whitening ad": {0.7, 0.3, 0},
	}}
	store, err := NewSqliteInMemory(embedder)
	if err != nil {
		t.Fatalf("NewSqliteInMemory failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedDocs(t *testing.T, store *SqliteStore) {
	t.Helper()
	err := store.AddDocuments(context.Background(), []Document{
		{Content: "implants ad", Metadata: Metadata{Company: "Era Dental"}},
		{Content: "accounting ad", Metadata: Metadata{Company: "Geros buhalterės"}},
		{Content: "teeth whitening ad", Metadata: Metadata{Company: "Denticija"}},
	})
	if err != nil {
		t.Fatalf("AddDocuments failed: %v", err)
	}
}

func TestSimilaritySearchRanksByCosine(t *testing.T) {
	store := testStore(t)
	seedDocs(t, store)

	docs, err := store.SimilaritySearch(context.Background(), "dental implants", 2, nil)
	if err != nil {
		t.Fatalf("SimilaritySearch failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].Content != "implants ad" {
		t.Errorf("expected closest doc first, got %q", docs[0].Content)
	}
	if docs[1].Content != "teeth whitening ad" {
		t.Errorf("expected second closest, got %q", docs[1].Content)
	}
}

func TestSimilaritySearchCompanyFilter(t *testing.T) {
	store := testStore(t)
	seedDocs(t, store)

	docs, err := store.SimilaritySearch(context.Background(), "dental implants", 5, &Filter{Company: "Geros buhalterės"})
	if err != nil {
		t.Fatalf("SimilaritySearch failed: %v", err)
	}
	if len(docs) != 1 || docs[0].Metadata.Company != "Geros buhalterės" {
		t.Errorf("expected only the filtered company's docs, got %+v", docs)
	}
}

func TestSimilaritySearchPreservesMetadata(t *testing.T) {
	store := testStore(t)
	err := store.AddDocuments(context.Background(), []Document{{
		Content: "implants ad",
		Metadata: Metadata{
			Company: "Era Dental", Source: "ads", DocID: "d1",
			DocType: "example_ad", Language: "lt", Filename: "era.txt",
		},
	}})
	if err != nil {
		t.Fatalf("AddDocuments failed: %v", err)
	}

	docs, err := store.SimilaritySearch(context.Background(), "dental implants", 1, nil)
	if err != nil {
		t.Fatalf("SimilaritySearch failed: %v", err)
	}
	meta := docs[0].Metadata
	if meta.DocID != "d1" || meta.Language != "lt" || meta.Filename != "era.txt" {
		t.Errorf("metadata not preserved: %+v", meta)
	}
}

func TestSimilaritySearchEmptyStore(t *testing.T) {
	store := testStore(t)
	docs, err := store.SimilaritySearch(context.Background(), "dental implants", 3, nil)
	if err != nil {
		t.Fatalf("SimilaritySearch failed: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("expected no docs, got %d", len(docs))
	}
}
