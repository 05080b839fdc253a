package risk

import "github.com/romitbhandari17/agentic-risk-automation/constants"

// DefaultThreshold is the score above which a contract is flagged.
const DefaultThreshold = 7.0

// Flag returns HIGH_RISK when ANY score, overall included, strictly exceeds
// the threshold. A score exactly at the threshold stays OK.
func Flag(r Record, threshold float64) constants.RiskFlag {
	for _, s := range r.Scores() {
		if s > threshold {
			return constants.RiskFlagHigh
		}
	}
	return constants.RiskFlagOK
}
