package knowledge

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// chunkSeparator delimits individual ads inside a source file.
const chunkSeparator = "###"

var (
	linkPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
	phonePattern = regexp.MustCompile(`\+?\d[\d\s\-()]{6,}\d`)
)

// LoadDirectory reads every .txt file under dir, splits each into chunks
// and stores them. The file name (without extension) is recorded as the
// company. Returns the number of documents stored.
func LoadDirectory(ctx context.Context, store Store, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read knowledge directory: %w", err)
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return total, fmt.Errorf("read %s: %w", path, err)
		}

		company := strings.TrimSuffix(entry.Name(), ".txt")
		docs := SplitFile(string(raw), company, entry.Name())
		if len(docs) == 0 {
			continue
		}
		if err := store.AddDocuments(ctx, docs); err != nil {
			return total, fmt.Errorf("store documents from %s: %w", path, err)
		}
		total += len(docs)
	}
	return total, nil
}

// SplitFile splits raw file content into sanitized documents.
func SplitFile(raw, company, filename string) []Document {
	var docs []Document
	for _, chunk := range strings.Split(raw, chunkSeparator) {
		content := Sanitize(chunk)
		if content == "" {
			continue
		}
		docs = append(docs, Document{
			Content: content,
			Metadata: Metadata{
				Company:  company,
				Source:   "ads",
				DocID:    uuid.NewString(),
				DocType:  "example_ad",
				Language: "lt",
				Filename: filename,
			},
		})
	}
	return docs
}

// Sanitize strips links and phone numbers so the knowledge base carries no
// contact details, then trims the result.
func Sanitize(text string) string {
	text = linkPattern.ReplaceAllString(text, "")
	text = phonePattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
