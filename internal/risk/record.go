// Package risk scores a merged contract record with the model and decides
// the high-risk flag.
package risk

// ScoreKeys are the numeric risk fields, each constrained to [0,10].
var ScoreKeys = []string{
	"overall_risk",
	"liability_risk",
	"termination_risk",
	"financial_risk",
}

// RecordKeys is the closed risk field set: the four scores plus rationale.
var RecordKeys = append(append([]string{}, ScoreKeys...), "rationale")

// Record is a validated risk assessment.
type Record struct {
	OverallRisk     float64 `json:"overall_risk"`
	LiabilityRisk   float64 `json:"liability_risk"`
	TerminationRisk float64 `json:"termination_risk"`
	FinancialRisk   float64 `json:"financial_risk"`
	Rationale       string  `json:"rationale"`
}

// Scores returns the four numeric fields in canonical order.
func (r Record) Scores() []float64 {
	return []float64{r.OverallRisk, r.LiabilityRisk, r.TerminationRisk, r.FinancialRisk}
}

// Schema returns the risk JSON Schema as a generic map for the defensive
// revalidation pass.
func Schema() map[string]any {
	props := make(map[string]any, len(RecordKeys))
	for _, k := range ScoreKeys {
		props[k] = map[string]any{"type": "number", "minimum": 0, "maximum": 10}
	}
	props["rationale"] = map[string]any{"type": "string", "minLength": 1}
	required := make([]any, 0, len(RecordKeys))
	for _, k := range RecordKeys {
		required = append(required, k)
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}
