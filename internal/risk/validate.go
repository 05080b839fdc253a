package risk

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
)

// Validate enforces the closed 5-field risk schema on a decoded object.
// Checks run in order and fail fast: no keys outside the field set, no
// required field missing, every score numeric and within [0,10], rationale a
// non-blank string.
func Validate(obj map[string]any) error {
	if obj == nil {
		return common.NewAppError("SCHEMA_ERROR", "risk output is not an object", common.ErrSchemaValidation)
	}

	allowed := make(map[string]struct{}, len(RecordKeys))
	for _, k := range RecordKeys {
		allowed[k] = struct{}{}
	}
	var extra []string
	for k := range obj {
		if _, ok := allowed[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return common.NewAppError("SCHEMA_ERROR",
			fmt.Sprintf("unexpected fields in risk output: %v", extra), common.ErrSchemaValidation)
	}

	for _, k := range RecordKeys {
		if _, ok := obj[k]; !ok {
			return common.NewAppError("SCHEMA_ERROR",
				fmt.Sprintf("missing required field in risk output: %s", k), common.ErrSchemaValidation)
		}
	}

	for _, k := range ScoreKeys {
		v, ok := numeric(obj[k])
		if !ok {
			return common.NewAppError("SCHEMA_ERROR",
				fmt.Sprintf("field '%s' must be a number", k), common.ErrSchemaValidation)
		}
		if v < 0 || v > 10 {
			return common.NewAppError("SCHEMA_ERROR",
				fmt.Sprintf("field '%s' must be between 0 and 10", k), common.ErrSchemaValidation)
		}
	}

	s, ok := obj["rationale"].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return common.NewAppError("SCHEMA_ERROR",
			"field 'rationale' must be a non-empty string", common.ErrSchemaValidation)
	}
	return nil
}

// numeric accepts the types encoding/json can decode a number into.
func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// ToRecord converts a validated object into a typed Record. Call Validate
// first; ToRecord trusts its input.
func ToRecord(obj map[string]any) Record {
	score := func(k string) float64 {
		f, _ := numeric(obj[k])
		return f
	}
	return Record{
		OverallRisk:     score("overall_risk"),
		LiabilityRisk:   score("liability_risk"),
		TerminationRisk: score("termination_risk"),
		FinancialRisk:   score("financial_risk"),
		Rationale:       obj["rationale"].(string),
	}
}
