package knowledge

import "testing"

func TestSanitizeStripsContacts(t *testing.T) {
	in := "Visit https://eradental.lt or call +370 600 12345 today!"
	got := Sanitize(in)
	if got != "Visit  or call  today!" {
		t.Errorf("unexpected sanitized text: %q", got)
	}
}

func TestSanitizeKeepsPlainText(t *testing.T) {
	in := "  Healthy smiles for the whole family.  "
	if got := Sanitize(in); got != "Healthy smiles for the whole family." {
		t.Errorf("unexpected result: %q", got)
	}
}

func TestSplitFile(t *testing.T) {
	raw := "First ad about implants.\n###\nSecond ad, see www.example.com\n###\n   \n"
	docs := SplitFile(raw, "Era Dental", "era_dental.txt")

	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Content != "First ad about implants." {
		t.Errorf("unexpected first chunk: %q", docs[0].Content)
	}
	if docs[1].Content != "Second ad, see" {
		t.Errorf("expected link stripped: %q", docs[1].Content)
	}
	for _, d := range docs {
		if d.Metadata.Company != "Era Dental" || d.Metadata.Filename != "era_dental.txt" {
			t.Errorf("unexpected metadata: %+v", d.Metadata)
		}
		if d.Metadata.DocID == "" {
			t.Error("expected a generated doc ID")
		}
	}
}
