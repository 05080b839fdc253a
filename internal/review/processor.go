// Package review orchestrates the full contract review: extraction, risk
// scoring, the approval gate for flagged contracts, and outcome persistence.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/romitbhandari17/agentic-risk-automation/constants"
	"github.com/romitbhandari17/agentic-risk-automation/internal/approval"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ingest"
	"github.com/romitbhandari17/agentic-risk-automation/internal/repository"
	"github.com/romitbhandari17/agentic-risk-automation/internal/risk"
)

// Outcome aggregates the stages one contract went through.
type Outcome struct {
	Ingest   ingest.Result      `json:"ingest"`
	Risk     *risk.Result       `json:"risk,omitempty"`
	Approval *approval.Approval `json:"approval,omitempty"`
}

// Processor runs the review stages in order. The gate and repository are
// optional collaborators: without a gate flagged contracts simply stay
// flagged, without a repository outcomes are not persisted.
type Processor struct {
	pipeline *ingest.Pipeline
	analyzer *risk.Analyzer
	gate     *approval.Gate
	reviews  repository.ReviewRepository
	logger   *slog.Logger
}

func NewProcessor(pipeline *ingest.Pipeline, analyzer *risk.Analyzer, gate *approval.Gate, reviews repository.ReviewRepository, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{pipeline: pipeline, analyzer: analyzer, gate: gate, reviews: reviews, logger: logger}
}

// ProcessContract runs extraction, scoring, and the approval gate for one
// request. Every stage outcome is persisted, including terminal failures, so
// the review record always reflects how far the contract got.
func (p *Processor) ProcessContract(ctx context.Context, req ingest.Request) (Outcome, error) {
	start := time.Now()
	var out Outcome

	ingRes, err := p.pipeline.Run(ctx, req)
	out.Ingest = ingRes
	p.persist(ctx, out)
	if err != nil {
		return out, err
	}

	riskRes, err := p.analyzer.Run(ctx, risk.FromIngestResult(ingRes))
	out.Risk = &riskRes
	p.persist(ctx, out)
	if err != nil {
		return out, err
	}

	if riskRes.RiskFlag == constants.RiskFlagHigh && p.gate != nil {
		a, err := p.gate.Open(ctx, approval.RequestData{
			ContractID:       req.ContractID,
			SourceLocation:   fmt.Sprintf("s3://%s/%s", req.Source.Bucket, req.Source.Key),
			RiskFlag:         riskRes.RiskFlag,
			RiskScores:       *riskRes.Risk,
			ExtractedClauses: ingRes.Extracted,
		})
		if err != nil {
			return out, err
		}
		out.Approval = &a
	}

	p.logger.Info("review.processed",
		"contract_id", req.ContractID,
		"risk_flag", string(riskRes.RiskFlag),
		"gated", out.Approval != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// persist writes the current outcome snapshot. Persistence failures are
// logged, not propagated: the review result already exists in memory and the
// caller still gets it.
func (p *Processor) persist(ctx context.Context, out Outcome) {
	if p.reviews == nil {
		return
	}
	rev := repository.Review{
		ContractID: out.Ingest.ContractID,
		Bucket:     out.Ingest.Source.Bucket,
		Key:        out.Ingest.Source.Key,
		Extracted:  out.Ingest.Extracted,
		ChunkCount: out.Ingest.ChunkCount,
		Failures:   out.Ingest.Failures,
		Status:     out.Ingest.Status,
	}
	if out.Risk != nil {
		rev.Risk = out.Risk.Risk
		rev.RiskFlag = out.Risk.RiskFlag
		rev.Status = out.Risk.Status
	}
	if err := p.reviews.Upsert(ctx, rev); err != nil {
		p.logger.Error("review.persist_failed", "contract_id", rev.ContractID, "error", err)
	}
}
