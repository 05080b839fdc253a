package risk

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/romitbhandari17/agentic-risk-automation/constants"
	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ingest"
	"github.com/romitbhandari17/agentic-risk-automation/internal/llm"
)

// StructuredContract is the scoring input: an ingestion result narrowed to
// what the model needs to see.
type StructuredContract struct {
	ContractID string         `json:"contract_id"`
	Source     map[string]any `json:"source"`
	Extracted  map[string]any `json:"extracted"`
	ChunkCount int            `json:"chunk_count"`
	Failures   []string       `json:"bedrock_failures"`
	Status     string         `json:"status"`
}

// FromIngestResult adapts an ingestion result into the scoring input shape.
func FromIngestResult(r ingest.Result) StructuredContract {
	failures := r.Failures
	if failures == nil {
		failures = []string{}
	}
	return StructuredContract{
		ContractID: r.ContractID,
		Source:     map[string]any{"bucket": r.Source.Bucket, "key": r.Source.Key},
		Extracted:  r.Extracted,
		ChunkCount: r.ChunkCount,
		Failures:   failures,
		Status:     string(r.Status),
	}
}

// Config holds analyzer knobs.
type Config struct {
	Threshold   float64
	MaxTokens   int
	Temperature float64
}

// Result is the risk record handed to orchestration.
type Result struct {
	ContractID string                   `json:"contract_id"`
	Risk       *Record                  `json:"risk,omitempty"`
	RiskFlag   constants.RiskFlag       `json:"risk_flag,omitempty"`
	Status     constants.ContractStatus `json:"status"`
	Reason     string                   `json:"reason,omitempty"`
}

// Analyzer scores one structured contract in a single model call. Unlike
// ingestion there is no chunk-level isolation: a malformed risk response is
// terminal for the contract.
type Analyzer struct {
	cfg     Config
	invoker llm.Invoker
	shape   llm.ResponseShape
	logger  *slog.Logger
}

func NewAnalyzer(cfg Config, invoker llm.Invoker, shape llm.ResponseShape, logger *slog.Logger) *Analyzer {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 500
	}
	if shape == nil {
		shape = llm.ShapeFor("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cfg: cfg, invoker: invoker, shape: shape, logger: logger}
}

// Run scores one contract and applies the high-risk flag.
func (a *Analyzer) Run(ctx context.Context, contract StructuredContract) (Result, error) {
	ctx = common.WithContractID(ctx, contract.ContractID)
	start := time.Now()
	res := Result{ContractID: contract.ContractID}

	a.logger.Info("risk.analyze.start",
		"contract_id", contract.ContractID,
		"threshold", a.cfg.Threshold,
	)

	prompt, err := BuildPrompt(contract)
	if err != nil {
		return a.fail(res, err)
	}

	payload, err := a.invoker.Invoke(ctx, llm.InvokeRequest{
		Prompt:      prompt,
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return a.fail(res, fmt.Errorf("invoke model: %w", err))
	}

	modelText, err := llm.NormalizeResponse(a.shape, payload)
	if err != nil {
		return a.fail(res, err)
	}

	obj, err := llm.RecoverJSONObject(modelText)
	if err != nil {
		return a.fail(res, err)
	}

	if err := Validate(obj); err != nil {
		return a.fail(res, err)
	}

	record := ToRecord(obj)
	flag := Flag(record, a.cfg.Threshold)

	res.Risk = &record
	res.RiskFlag = flag
	res.Status = constants.ContractStatusRiskAnalyzed
	a.logger.Info("risk.analyze.ok",
		"contract_id", contract.ContractID,
		"risk_flag", string(flag),
		"overall_risk", record.OverallRisk,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (a *Analyzer) fail(res Result, err error) (Result, error) {
	res.Status = constants.ContractStatusError
	res.Reason = err.Error()
	a.logger.Error("risk.analyze.failed", "contract_id", res.ContractID, "error", err)
	return res, err
}
