package model

// Turn is one prior conversation turn handed to the orchestrator by the
// transport. Assistant turns carry the per-model responses and augmentation
// artifacts recorded when that turn was produced.
type Turn struct {
	Role                  string         `json:"role"`
	Content               string         `json:"content"`
	Responses             []TurnResponse `json:"responses,omitempty"`
	RetrievedContent      string         `json:"retrievedContent,omitempty"`
	ScrapedServices       string         `json:"scrapedServices,omitempty"`
	ScrapedServiceContent string         `json:"scrapedServiceContent,omitempty"`
}

// TurnResponse is one model's recorded output within an assistant turn.
type TurnResponse struct {
	Model            ModelID `json:"model"`
	TaskSummary      string  `json:"taskSummary,omitempty"`
	GeneratedContent string  `json:"generatedContent,omitempty"`
}

// Turn roles on the transport boundary.
const (
	TurnRoleUser      = "user"
	TurnRoleAssistant = "assistant"
)

// ToAugmentationMessages converts prior turns into the message seed for the
// augmentation graph: user messages plus function-tagged AI messages for
// retrieval and scrape artifacts of earlier turns.
func ToAugmentationMessages(turns []Turn) Messages {
	var out Messages
	for _, t := range turns {
		switch t.Role {
		case TurnRoleUser:
			out = append(out, NewHumanMessage(t.Content))
		case TurnRoleAssistant:
			if t.RetrievedContent != "" {
				out = append(out, NewAIMessage(t.RetrievedContent, Tags{Function: FunctionRetrieve}))
			}
			if t.ScrapedServices != "" {
				out = append(out, NewAIMessage(t.ScrapedServices, Tags{Function: FunctionScrapedServices}))
			}
			if t.ScrapedServiceContent != "" {
				out = append(out, NewAIMessage(t.ScrapedServiceContent, Tags{Function: FunctionScrapedServiceContent}))
			}
		}
	}
	return out
}

// ToCreationMessages converts prior turns into the conversation seed for one
// model's creation branch. Earlier summaries and drafts belonging to that
// model come back as historical-tagged AI messages so the run's dedup
// triggers ignore them.
func ToCreationMessages(turns []Turn, owner ModelID) Messages {
	var out Messages
	for _, t := range turns {
		switch t.Role {
		case TurnRoleUser:
			out = append(out, NewHumanMessage(t.Content))
		case TurnRoleAssistant:
			for _, r := range t.Responses {
				if r.Model != owner {
					continue
				}
				if r.TaskSummary != "" {
					out = append(out, NewAIMessage(r.TaskSummary, Tags{
						OwnerModel: owner,
						Function:   FunctionCreateTaskSummary,
						Historical: true,
					}))
				}
				if r.GeneratedContent != "" {
					out = append(out, NewAIMessage(r.GeneratedContent, Tags{
						OwnerModel: owner,
						Function:   FunctionGenerateAdContent,
						Historical: true,
					}))
				}
			}
		}
	}
	return out
}

// AugmentationCarryover extracts the messages a creation branch needs from
// the final augmentation state: the retrieve tool result plus scrape
// artifacts as function-tagged AI messages.
func AugmentationCarryover(state WorkflowState) Messages {
	var out Messages
	if retrieved, ok := state.Messages.FirstToolResult(RetrieveToolName); ok {
		out = append(out, retrieved)
	}
	if state.ScrapedServiceContent != "" {
		out = append(out, NewAIMessage(state.ScrapedServiceContent, Tags{Function: FunctionScrapedServiceContent}))
	}
	if state.ScrapedServices != "" {
		out = append(out, NewAIMessage(state.ScrapedServices, Tags{Function: FunctionScrapedServices}))
	}
	return out
}
