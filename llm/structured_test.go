package llm

import "testing"

func TestDecodeAdResult(t *testing.T) {
	result, err := DecodeAdResult(`{"adText":"Visit us today","otherText":""}`)
	if err != nil {
		t.Fatalf("DecodeAdResult failed: %v", err)
	}
	if result.AdText != "Visit us today" {
		t.Errorf("unexpected ad text: %q", result.AdText)
	}
}

func TestDecodeAdResultFenced(t *testing.T) {
	result, err := DecodeAdResult("```json\n{\"adText\":\"\",\"otherText\":\"I am a copywriter.\"}\n```")
	if err != nil {
		t.Fatalf("DecodeAdResult failed: %v", err)
	}
	if result.OtherText != "I am a copywriter." {
		t.Errorf("unexpected other text: %q", result.OtherText)
	}
}

func TestDecodeAdResultMalformed(t *testing.T) {
	if _, err := DecodeAdResult("sorry, I cannot help"); err == nil {
		t.Fatal("expected error for non-JSON output")
	}
}
