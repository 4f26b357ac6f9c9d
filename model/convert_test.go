package model

import "testing"

func sampleTurns() []Turn {
	return []Turn{
		{Role: TurnRoleUser, Content: "Create a Facebook ad for Era Dental"},
		{
			Role:             TurnRoleAssistant,
			RetrievedContent: "Ad 1: ...",
			ScrapedServices:  "implants, whitening",
			Responses: []TurnResponse{
				{Model: ModelOpenAI, TaskSummary: "the brief", GeneratedContent: `{"adText":"Smile!"}`},
				{Model: ModelGemini, GeneratedContent: `{"adText":"Shine!"}`},
			},
		},
		{Role: TurnRoleUser, Content: "Make it shorter"},
	}
}

func TestToAugmentationMessages(t *testing.T) {
	msgs := ToAugmentationMessages(sampleTurns())

	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].Role != RoleHuman {
		t.Errorf("expected leading human message, got %s", msgs[0].Role)
	}
	if msgs[1].Tags.Function != FunctionRetrieve {
		t.Errorf("expected retrieve tag, got %q", msgs[1].Tags.Function)
	}
	if msgs[2].Tags.Function != FunctionScrapedServices {
		t.Errorf("expected scrapedServices tag, got %q", msgs[2].Tags.Function)
	}
	if last, _ := msgs.Last(); last.Text != "Make it shorter" {
		t.Errorf("expected trailing user request, got %q", last.Text)
	}
}

func TestToCreationMessagesFiltersByOwner(t *testing.T) {
	msgs := ToCreationMessages(sampleTurns(), ModelOpenAI)

	var summaries, drafts int
	for _, m := range msgs {
		switch m.Tags.Function {
		case FunctionCreateTaskSummary:
			summaries++
			if !m.Tags.Historical {
				t.Error("prior-turn summary must be historical")
			}
		case FunctionGenerateAdContent:
			drafts++
			if m.Tags.OwnerModel != ModelOpenAI {
				t.Errorf("foreign draft leaked in: %s", m.Tags.OwnerModel)
			}
		}
	}
	if summaries != 1 || drafts != 1 {
		t.Errorf("expected 1 summary and 1 draft, got %d and %d", summaries, drafts)
	}
}

func TestAugmentationCarryover(t *testing.T) {
	state := WorkflowState{
		Messages: Messages{
			NewToolResultMessage("c1", RetrieveToolName, "retrieved ads", nil),
		},
		ScrapedServices: "implants",
	}

	msgs := AugmentationCarryover(state)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 carryover messages, got %d", len(msgs))
	}
	if msgs[0].Text != "retrieved ads" {
		t.Errorf("expected the retrieve result first, got %q", msgs[0].Text)
	}
	if msgs[1].Tags.Function != FunctionScrapedServices {
		t.Errorf("expected scrapedServices tag, got %q", msgs[1].Tags.Function)
	}
}

func TestAugmentationCarryoverEmptyState(t *testing.T) {
	if msgs := AugmentationCarryover(WorkflowState{}); len(msgs) != 0 {
		t.Errorf("expected no carryover, got %d messages", len(msgs))
	}
}
