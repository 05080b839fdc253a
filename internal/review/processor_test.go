package review

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romitbhandari17/agentic-risk-automation/constants"
	"github.com/romitbhandari17/agentic-risk-automation/internal/approval"
	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ingest"
	"github.com/romitbhandari17/agentic-risk-automation/internal/llm"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ocr"
	"github.com/romitbhandari17/agentic-risk-automation/internal/repository"
	"github.com/romitbhandari17/agentic-risk-automation/internal/risk"
)

type fakeDetector struct{ text string }

func (f *fakeDetector) Submit(context.Context, ocr.DocumentLocation) (string, error) {
	return "job-1", nil
}
func (f *fakeDetector) Poll(context.Context, string) (ocr.JobState, error) {
	return ocr.JobState{Status: constants.OCRJobSucceeded}, nil
}
func (f *fakeDetector) FetchPage(context.Context, string, string, int32) (ocr.ResultPage, error) {
	return ocr.ResultPage{Lines: []string{f.text}}, nil
}

// sequenceInvoker answers the extraction call first, then the risk call.
type sequenceInvoker struct {
	responses []string
	calls     int
}

func (s *sequenceInvoker) Invoke(context.Context, llm.InvokeRequest) ([]byte, error) {
	i := s.calls
	s.calls++
	return []byte(s.responses[i]), nil
}

type capturingReviews struct {
	upserts []repository.Review
}

func (c *capturingReviews) EnsureSchema(context.Context) error { return nil }
func (c *capturingReviews) Upsert(_ context.Context, rev repository.Review) error {
	c.upserts = append(c.upserts, rev)
	return nil
}
func (c *capturingReviews) Get(context.Context, string) (repository.Review, error) {
	return repository.Review{}, nil
}
func (c *capturingReviews) RecordDecision(context.Context, string, string, string, string, time.Time) error {
	return nil
}
func (c *capturingReviews) List(context.Context, *time.Time, *time.Time) ([]repository.Review, error) {
	return nil, nil
}

type memApprovals struct {
	items map[string]approval.Approval
}

func (m *memApprovals) CreateApproval(_ context.Context, a approval.Approval) error {
	m.items[a.ApprovalID] = a
	return nil
}
func (m *memApprovals) GetApproval(_ context.Context, id string) (approval.Approval, error) {
	a, ok := m.items[id]
	if !ok {
		return approval.Approval{}, common.NewAppError("NOT_FOUND", "not found", common.ErrNotFound)
	}
	return a, nil
}
func (m *memApprovals) ResolveApproval(_ context.Context, id string, status constants.ApprovalStatus, approver, comments string, at time.Time) error {
	a := m.items[id]
	a.Status = status
	m.items[id] = a
	return nil
}

func textEnvelope(t *testing.T, obj map[string]any) string {
	t.Helper()
	inner, err := json.Marshal(obj)
	require.NoError(t, err)
	env, err := json.Marshal(map[string]any{
		"content": []map[string]any{{"type": "text", "text": string(inner)}},
	})
	require.NoError(t, err)
	return string(env)
}

func extractionEnvelope(t *testing.T, fields map[string]any) string {
	full := map[string]any{
		"governing_law": nil, "termination_clause": nil, "liability_clause": nil,
		"indemnity_clause": nil, "data_protection": nil, "payment_terms": nil,
		"renewal_terms": nil,
	}
	for k, v := range fields {
		full[k] = v
	}
	return textEnvelope(t, full)
}

func riskEnvelope(t *testing.T, overall float64) string {
	return textEnvelope(t, map[string]any{
		"overall_risk": overall, "liability_risk": overall,
		"termination_risk": 2.0, "financial_risk": 2.0,
		"rationale": "test rationale",
	})
}

func newTestProcessor(t *testing.T, inv llm.Invoker, reviews repository.ReviewRepository, approvals approval.Store) *Processor {
	t.Helper()
	orch := ocr.NewOrchestrator(
		&fakeDetector{text: "Contract body under review."},
		ocr.Config{WaitTimeout: time.Second, PollInterval: time.Millisecond, MaxPageSize: 10},
		nil,
	)
	pipeline := ingest.NewPipeline(
		ingest.Config{MaxCharsPerChunk: 12000, MaxTokens: 1200},
		nil, orch, inv, llm.ShapeFor("anthropic"), nil,
	)
	analyzer := risk.NewAnalyzer(risk.Config{Threshold: 7}, inv, llm.ShapeFor("anthropic"), nil)
	var gate *approval.Gate
	if approvals != nil {
		gate = approval.NewGate(approvals, approval.NopNotifier{}, nil)
	}
	return NewProcessor(pipeline, analyzer, gate, reviews, nil)
}

func TestProcessContractLowRiskSkipsGate(t *testing.T) {
	inv := &sequenceInvoker{responses: []string{
		extractionEnvelope(t, map[string]any{"governing_law": "New York"}),
		riskEnvelope(t, 3),
	}}
	reviews := &capturingReviews{}
	approvals := &memApprovals{items: map[string]approval.Approval{}}
	p := newTestProcessor(t, inv, reviews, approvals)

	out, err := p.ProcessContract(context.Background(), ingest.Request{
		ContractID: "c-low",
		Source:     ocr.DocumentLocation{Bucket: "b", Key: "k"},
	})
	require.NoError(t, err)
	assert.Nil(t, out.Approval)
	assert.Empty(t, approvals.items)
	require.NotNil(t, out.Risk)
	assert.Equal(t, constants.RiskFlagOK, out.Risk.RiskFlag)

	// One snapshot after extraction, one after scoring.
	require.Len(t, reviews.upserts, 2)
	assert.Equal(t, constants.ContractStatusIngested, reviews.upserts[0].Status)
	assert.Equal(t, constants.ContractStatusRiskAnalyzed, reviews.upserts[1].Status)
	assert.Equal(t, constants.RiskFlagOK, reviews.upserts[1].RiskFlag)
}

func TestProcessContractHighRiskOpensGate(t *testing.T) {
	inv := &sequenceInvoker{responses: []string{
		extractionEnvelope(t, map[string]any{"liability_clause": "unlimited"}),
		riskEnvelope(t, 9),
	}}
	approvals := &memApprovals{items: map[string]approval.Approval{}}
	p := newTestProcessor(t, inv, &capturingReviews{}, approvals)

	out, err := p.ProcessContract(context.Background(), ingest.Request{
		ContractID: "c-high",
		Source:     ocr.DocumentLocation{Bucket: "b", Key: "contracts/x.pdf"},
	})
	require.NoError(t, err)
	require.NotNil(t, out.Approval)
	assert.Equal(t, constants.ApprovalPending, out.Approval.Status)
	assert.Equal(t, "c-high", out.Approval.ContractID)
	assert.Equal(t, "s3://b/contracts/x.pdf", out.Approval.Data.SourceLocation)
	assert.Equal(t, "unlimited", out.Approval.Data.ExtractedClauses["liability_clause"])
	assert.Len(t, approvals.items, 1)
}

func TestProcessContractIngestFailurePersistsError(t *testing.T) {
	inv := &sequenceInvoker{responses: []string{
		`{"content":[{"type":"text","text":"no json"}]}`,
	}}
	reviews := &capturingReviews{}
	p := newTestProcessor(t, inv, reviews, nil)

	out, err := p.ProcessContract(context.Background(), ingest.Request{ContractID: "c-bad"})
	require.ErrorIs(t, err, common.ErrAllChunksFailed)
	assert.Nil(t, out.Risk)
	assert.Nil(t, out.Approval)
	require.Len(t, reviews.upserts, 1)
	assert.Equal(t, constants.ContractStatusError, reviews.upserts[0].Status)
	assert.Len(t, reviews.upserts[0].Failures, 1)
}
