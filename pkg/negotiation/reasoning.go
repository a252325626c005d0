package negotiation

// ReasoningResult is the structured decision extracted from the model for
// one player turn. Precedence between the flags is applied by Decide.
type ReasoningResult struct {
	Outraged     bool    `json:"outraged"`
	DealMade     bool    `json:"deal_made"`
	ChangedPrice bool    `json:"changed_price"`
	NewPrice     float64 `json:"new_price"`
}

var reasoningFields = []string{"outraged", "deal_made", "changed_price", "new_price"}

// ParseReasoning decodes a reasoning completion.
func ParseReasoning(raw string) (ReasoningResult, error) {
	var r ReasoningResult
	if err := decodeStrict(raw, "reasoning result", reasoningFields, &r); err != nil {
		return ReasoningResult{}, err
	}
	return r, nil
}
