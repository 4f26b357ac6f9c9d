package model

// WorkflowState is the shared state threaded through one augmentation run.
// It is owned exclusively by that run; creation branches receive a read-only
// snapshot via Clone.
type WorkflowState struct {
	Messages              Messages `json:"messages"`
	ScrapedServices       string   `json:"scrapedServices,omitempty"`
	ScrapedServiceContent string   `json:"scrapedServiceContent,omitempty"`
	LinksUsedForScraping  []string `json:"linksUsedForScraping,omitempty"`
}

// Append adds messages to the state. Existing entries are never mutated.
func (s *WorkflowState) Append(msgs ...ConversationMessage) {
	s.Messages = append(s.Messages, msgs...)
}

// Clone returns an independent copy of the state. The copy shares no slice
// backing with the original, so concurrent branches cannot observe each
// other's appends.
func (s WorkflowState) Clone() WorkflowState {
	out := s
	out.Messages = make(Messages, len(s.Messages))
	copy(out.Messages, s.Messages)
	if s.LinksUsedForScraping != nil {
		out.LinksUsedForScraping = make([]string, len(s.LinksUsedForScraping))
		copy(out.LinksUsedForScraping, s.LinksUsedForScraping)
	}
	return out
}
