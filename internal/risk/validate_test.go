package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/extract"
)

func riskObject(overrides map[string]any) map[string]any {
	obj := map[string]any{
		"overall_risk":     5.5,
		"liability_risk":   4.0,
		"termination_risk": 3.0,
		"financial_risk":   6.0,
		"rationale":        "Moderate exposure across liability and payment terms.",
	}
	for k, v := range overrides {
		if v == removed {
			delete(obj, k)
			continue
		}
		obj[k] = v
	}
	return obj
}

// removed marks a key for deletion in riskObject overrides.
var removed = struct{ _ byte }{}

func TestValidateAccepts(t *testing.T) {
	require.NoError(t, Validate(riskObject(nil)))
	// Integer scores are fine too.
	require.NoError(t, Validate(riskObject(map[string]any{"overall_risk": 7})))
	// Boundary values are inclusive.
	require.NoError(t, Validate(riskObject(map[string]any{"liability_risk": 0.0, "financial_risk": 10.0})))
}

func TestValidateNilObject(t *testing.T) {
	err := Validate(nil)
	require.ErrorIs(t, err, common.ErrSchemaValidation)
	assert.Contains(t, err.Error(), "not an object")
}

func TestValidateRejectsExtraField(t *testing.T) {
	err := Validate(riskObject(map[string]any{"severity": "high"}))
	require.ErrorIs(t, err, common.ErrSchemaValidation)
	assert.Contains(t, err.Error(), "unexpected fields")
	assert.Contains(t, err.Error(), "severity")
}

func TestValidateRejectsMissingField(t *testing.T) {
	err := Validate(riskObject(map[string]any{"financial_risk": removed}))
	require.ErrorIs(t, err, common.ErrSchemaValidation)
	assert.Contains(t, err.Error(), "missing required field")
	assert.Contains(t, err.Error(), "financial_risk")
}

func TestValidateRejectsNonNumericScore(t *testing.T) {
	err := Validate(riskObject(map[string]any{"overall_risk": "high"}))
	require.ErrorIs(t, err, common.ErrSchemaValidation)
	assert.Contains(t, err.Error(), "must be a number")
}

func TestValidateRejectsOutOfRangeScore(t *testing.T) {
	err := Validate(riskObject(map[string]any{"termination_risk": 10.5}))
	require.ErrorIs(t, err, common.ErrSchemaValidation)
	assert.Contains(t, err.Error(), "between 0 and 10")

	err = Validate(riskObject(map[string]any{"liability_risk": -0.1}))
	require.ErrorIs(t, err, common.ErrSchemaValidation)
}

func TestValidateRejectsBlankRationale(t *testing.T) {
	err := Validate(riskObject(map[string]any{"rationale": "   "}))
	require.ErrorIs(t, err, common.ErrSchemaValidation)
	assert.Contains(t, err.Error(), "rationale")

	err = Validate(riskObject(map[string]any{"rationale": 3}))
	require.ErrorIs(t, err, common.ErrSchemaValidation)
}

func TestValidateExtraReportedBeforeMissing(t *testing.T) {
	err := Validate(riskObject(map[string]any{
		"rationale": removed,
		"bonus":     1,
	}))
	require.ErrorIs(t, err, common.ErrSchemaValidation)
	assert.Contains(t, err.Error(), "unexpected fields")
}

func TestToRecord(t *testing.T) {
	obj := riskObject(map[string]any{"overall_risk": 8, "rationale": "Unbounded liability."})
	require.NoError(t, Validate(obj))
	r := ToRecord(obj)
	assert.Equal(t, 8.0, r.OverallRisk)
	assert.Equal(t, 4.0, r.LiabilityRisk)
	assert.Equal(t, "Unbounded liability.", r.Rationale)
}

func TestSchemaAcceptsAndRejects(t *testing.T) {
	require.NoError(t, extract.ValidateAgainstSchema(Schema(),
		[]byte(`{"overall_risk":5,"liability_risk":4,"termination_risk":3,"financial_risk":6,"rationale":"ok"}`)))
	require.Error(t, extract.ValidateAgainstSchema(Schema(),
		[]byte(`{"overall_risk":11,"liability_risk":4,"termination_risk":3,"financial_risk":6,"rationale":"ok"}`)))
	require.Error(t, extract.ValidateAgainstSchema(Schema(),
		[]byte(`{"overall_risk":5,"liability_risk":4,"termination_risk":3,"financial_risk":6,"rationale":""}`)))
}
