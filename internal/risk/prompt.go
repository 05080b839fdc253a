package risk

import (
	"encoding/json"
	"fmt"
)

// BuildPrompt renders the scoring prompt for one structured contract. The
// instructions are kept very explicit to reduce non-JSON responses.
func BuildPrompt(contract any) (string, error) {
	encoded, err := json.Marshal(contract)
	if err != nil {
		return "", fmt.Errorf("encoding structured contract: %w", err)
	}
	return fmt.Sprintf(`Analyze the following contract clauses.
Return risk scores from 0-10 and rationale.

Return ONLY valid JSON with exactly these fields:
{
  "overall_risk": number,
  "liability_risk": number,
  "termination_risk": number,
  "financial_risk": number,
  "rationale": string
}

Scoring guidance (0-10):
- 0 = no meaningful risk
- 10 = extreme risk / unacceptable
Be consistent: overall_risk should reflect the component risks.

Contract (structured JSON):
%s
`, encoded), nil
}
