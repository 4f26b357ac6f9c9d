package model

// StepKind discriminates step events pushed to the external transport.
type StepKind string

// Step event kinds. The string values are the wire contract consumed by the
// transport's clients.
const (
	StepRetrievalContent      StepKind = "retrievalContent"
	StepScrapedServices       StepKind = "scrapedServices"
	StepScrapedServiceContent StepKind = "scrapedServiceContent"
	StepTaskSummary           StepKind = "taskSummary"
	StepGenerateAd            StepKind = "generateAd"
	StepError                 StepKind = "error"
	StepComplete              StepKind = "complete"
)

// StepEvent is one unit of incremental progress. Events are emitted at most
// once per (kind, model) pair per workflow run, except Error, which may
// recur because each model's failure is independent.
type StepEvent struct {
	Kind    StepKind `json:"type"`
	Content string   `json:"content,omitempty"`
	Model   ModelID  `json:"model,omitempty"`
}

// EmitFunc receives step events in emission order. The orchestrator
// serializes calls; implementations need not be safe for concurrent use.
type EmitFunc func(StepEvent)
