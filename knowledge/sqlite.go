// SQLite-backed vector store.
//
// Information Hiding:
// - SQLite connection management hidden behind the Store interface
// - Schema and vector encoding details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package knowledge

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore implements Store on a SQLite database. Embeddings are kept as
// little-endian float32 blobs and scored with a brute-force cosine scan,
// which is plenty for a knowledge base of a few thousand ads.
type SqliteStore struct {
	db       *sql.DB
	embedder Embedder
}

// OpenSqlite opens or creates a knowledge database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string, embedder Embedder) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db, embedder: embedder}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSqliteInMemory creates an in-memory store (useful for testing).
func NewSqliteInMemory(embedder Embedder) (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	store := &SqliteStore{db: db, embedder: embedder}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			content TEXT NOT NULL,
			company TEXT NOT NULL DEFAULT '',
			metadata TEXT NOT NULL,
			embedding BLOB NOT NULL,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_documents_company
		ON documents(company);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// AddDocuments implements Store.
func (s *SqliteStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is safe after Commit - it becomes a no-op
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO documents (content, company, metadata, embedding) VALUES (?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, doc := range docs {
		meta, err := json.Marshal(doc.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, doc.Content, doc.Metadata.Company, string(meta), encodeVector(vectors[i])); err != nil {
			return fmt.Errorf("failed to insert document: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type scoredDoc struct {
	doc   Document
	score float64
}

// SimilaritySearch implements Store.
func (s *SqliteStore) SimilaritySearch(ctx context.Context, query string, k int, filter *Filter) ([]Document, error) {
	if k <= 0 {
		return []Document{}, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := vectors[0]

	var rows *sql.Rows
	if filter != nil && filter.Company != "" {
		rows, err = s.db.QueryContext(ctx,
			"SELECT content, metadata, embedding FROM documents WHERE company = ?",
			filter.Company)
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT content, metadata, embedding FROM documents")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var scored []scoredDoc
	for rows.Next() {
		var content, meta string
		var blob []byte
		if err := rows.Scan(&content, &meta, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}

		doc := Document{Content: content}
		if err := json.Unmarshal([]byte(meta), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("invalid metadata in database: %w", err)
		}
		scored = append(scored, scoredDoc{doc: doc, score: cosineSimilarity(queryVec, decodeVector(blob))})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })
	if len(scored) > k {
		scored = scored[:k]
	}

	docs := make([]Document, len(scored))
	for i, sd := range scored {
		docs[i] = sd.doc
	}
	return docs, nil
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var _ Store = (*SqliteStore)(nil)
