package model

// GenerationParams are the sampling parameters for one model invocation.
// They are passed explicitly into each graph node instead of being read
// from shared mutable settings at call time.
type GenerationParams struct {
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"topP"`
	MaxTokens   int     `json:"maxTokens"`
}

// DefaultGenerationParams are the ad-generation defaults used when the
// caller supplies none.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{Temperature: 0.7, TopP: 0.9, MaxTokens: 1500}
}

// AdResult is the structured ad-generation output. The two fields are
// mutually exclusive by content: ad copy goes to AdText, anything that is
// not an advertisement goes to OtherText.
type AdResult struct {
	AdText    string `json:"adText"`
	OtherText string `json:"otherText"`
}
