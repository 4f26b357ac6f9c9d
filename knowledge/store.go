// Package knowledge provides the vector knowledge base the retrieve tool
// searches against.
//
// Information Hiding:
// - Embedding provider hidden behind the Embedder interface
// - Vector storage and scoring hidden behind the Store interface
package knowledge

import "context"

// Metadata describes where a document came from.
type Metadata struct {
	Company  string `json:"company"`
	Source   string `json:"source"`
	DocID    string `json:"docId"`
	DocType  string `json:"docType"`
	Language string `json:"language"`
	Filename string `json:"filename"`
}

// Document is one entry in the knowledge base.
type Document struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Filter restricts a similarity search. A nil filter matches everything.
type Filter struct {
	Company string
}

// Store is a searchable document collection.
type Store interface {
	// AddDocuments embeds and persists the documents.
	AddDocuments(ctx context.Context, docs []Document) error

	// SimilaritySearch returns up to k documents closest to the query,
	// most similar first.
	SimilaritySearch(ctx context.Context, query string, k int, filter *Filter) ([]Document, error)
}
