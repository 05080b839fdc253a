package risk

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romitbhandari17/agentic-risk-automation/constants"
	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/llm"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ocr"

	"github.com/romitbhandari17/agentic-risk-automation/internal/ingest"
)

type stubInvoker struct {
	response string
	err      error
	prompt   string
}

func (s *stubInvoker) Invoke(_ context.Context, req llm.InvokeRequest) ([]byte, error) {
	s.prompt = req.Prompt
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.response), nil
}

func riskEnvelope(t *testing.T, overrides map[string]any) string {
	t.Helper()
	inner, err := json.Marshal(riskObject(overrides))
	require.NoError(t, err)
	env, err := json.Marshal(map[string]any{
		"content": []map[string]any{{"type": "text", "text": string(inner)}},
	})
	require.NoError(t, err)
	return string(env)
}

func sampleContract() StructuredContract {
	law := "New York"
	return StructuredContract{
		ContractID: "c-risk-1",
		Source:     map[string]any{"bucket": "b", "key": "contracts/x.pdf"},
		Extracted:  map[string]any{"governing_law": law},
		ChunkCount: 2,
		Failures:   []string{},
		Status:     "INGESTED",
	}
}

func TestAnalyzerHappyPath(t *testing.T) {
	inv := &stubInvoker{response: riskEnvelope(t, map[string]any{"overall_risk": 4.0})}
	a := NewAnalyzer(Config{Threshold: 7}, inv, llm.ShapeFor("anthropic"), nil)

	res, err := a.Run(context.Background(), sampleContract())
	require.NoError(t, err)
	assert.Equal(t, constants.ContractStatusRiskAnalyzed, res.Status)
	assert.Equal(t, constants.RiskFlagOK, res.RiskFlag)
	require.NotNil(t, res.Risk)
	assert.Equal(t, 4.0, res.Risk.OverallRisk)

	// The scoring prompt carries the structured contract verbatim.
	assert.Contains(t, inv.prompt, "Return ONLY valid JSON")
	assert.Contains(t, inv.prompt, `"contract_id":"c-risk-1"`)
	assert.Contains(t, inv.prompt, "New York")
}

func TestAnalyzerFlagsHighRisk(t *testing.T) {
	inv := &stubInvoker{response: riskEnvelope(t, map[string]any{"liability_risk": 9.0})}
	a := NewAnalyzer(Config{Threshold: 7}, inv, llm.ShapeFor("anthropic"), nil)

	res, err := a.Run(context.Background(), sampleContract())
	require.NoError(t, err)
	assert.Equal(t, constants.RiskFlagHigh, res.RiskFlag)
}

func TestAnalyzerInvokeErrorIsTerminal(t *testing.T) {
	inv := &stubInvoker{err: errors.New("throttled")}
	a := NewAnalyzer(Config{}, inv, llm.ShapeFor("anthropic"), nil)

	res, err := a.Run(context.Background(), sampleContract())
	require.Error(t, err)
	assert.Equal(t, constants.ContractStatusError, res.Status)
	assert.Contains(t, res.Reason, "throttled")
	assert.Nil(t, res.Risk)
}

func TestAnalyzerMalformedResponseIsTerminal(t *testing.T) {
	// Unlike ingestion there is no retry or isolation: a schema violation
	// fails the contract.
	inv := &stubInvoker{response: riskEnvelope(t, map[string]any{"overall_risk": "very high"})}
	a := NewAnalyzer(Config{}, inv, llm.ShapeFor("anthropic"), nil)

	res, err := a.Run(context.Background(), sampleContract())
	require.ErrorIs(t, err, common.ErrSchemaValidation)
	assert.Equal(t, constants.ContractStatusError, res.Status)
}

func TestAnalyzerNoJSONInResponse(t *testing.T) {
	inv := &stubInvoker{response: `{"content":[{"type":"text","text":"I cannot score this."}]}`}
	a := NewAnalyzer(Config{}, inv, llm.ShapeFor("anthropic"), nil)

	_, err := a.Run(context.Background(), sampleContract())
	require.ErrorIs(t, err, common.ErrNoJSONFound)
}

func TestFromIngestResult(t *testing.T) {
	sc := FromIngestResult(ingest.Result{
		ContractID: "c-9",
		Source:     ocr.DocumentLocation{Bucket: "b", Key: "k"},
		Extracted:  map[string]any{"payment_terms": "Net 30"},
		ChunkCount: 3,
		Status:     constants.ContractStatusIngested,
	})
	assert.Equal(t, "c-9", sc.ContractID)
	assert.Equal(t, "b", sc.Source["bucket"])
	assert.Equal(t, 3, sc.ChunkCount)
	assert.NotNil(t, sc.Failures)
	assert.Equal(t, "INGESTED", sc.Status)
}

func TestResultFailureShape(t *testing.T) {
	inv := &stubInvoker{err: errors.New("boom")}
	a := NewAnalyzer(Config{}, inv, llm.ShapeFor("anthropic"), nil)
	res, _ := a.Run(context.Background(), sampleContract())

	b, err := json.Marshal(res)
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, `"contract_id":"c-risk-1"`)
	assert.Contains(t, s, `"status":"ERROR"`)
	// Risk fields are omitted entirely on failure.
	assert.NotContains(t, s, `"risk"`)
	assert.NotContains(t, s, `"risk_flag"`)
}
