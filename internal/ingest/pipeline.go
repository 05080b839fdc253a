// Package ingest runs the per-contract extraction pipeline: document OCR,
// chunking, per-chunk model extraction with failure isolation, and the
// first-write-wins merge into a single clause record.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/romitbhandari17/agentic-risk-automation/constants"
	"github.com/romitbhandari17/agentic-risk-automation/internal/chunk"
	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/extract"
	"github.com/romitbhandari17/agentic-risk-automation/internal/llm"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ocr"
)

// DocumentSource confirms a locator points at a real stored document before
// the detection job is submitted.
type DocumentSource interface {
	StatDocument(ctx context.Context, loc ocr.DocumentLocation) error
}

// Config holds pipeline knobs.
type Config struct {
	MaxCharsPerChunk int
	MaxTokens        int
	Temperature      float64
}

// Result is the extraction record handed to orchestration. The shape is
// stable: contract_id and status are always present, and failures carry a
// reason instead of a bare error.
type Result struct {
	ContractID string                   `json:"contract_id"`
	Source     ocr.DocumentLocation     `json:"source"`
	Extracted  map[string]any           `json:"extracted,omitempty"`
	ChunkCount int                      `json:"chunk_count"`
	Failures   []string                 `json:"bedrock_failures"`
	Status     constants.ContractStatus `json:"status"`
	Reason     string                   `json:"reason,omitempty"`
}

// Pipeline wires the collaborators for one contract's ingestion.
type Pipeline struct {
	cfg     Config
	source  DocumentSource
	ocr     *ocr.Orchestrator
	invoker llm.Invoker
	shape   llm.ResponseShape
	logger  *slog.Logger
}

func NewPipeline(cfg Config, source DocumentSource, orchestrator *ocr.Orchestrator, invoker llm.Invoker, shape llm.ResponseShape, logger *slog.Logger) *Pipeline {
	if cfg.MaxCharsPerChunk <= 0 {
		cfg.MaxCharsPerChunk = 12000
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 1200
	}
	if shape == nil {
		shape = llm.ShapeFor("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, source: source, ocr: orchestrator, invoker: invoker, shape: shape, logger: logger}
}

// Run executes the full ingestion for one request. Terminal failures return
// a Result with status ERROR and a reason; the error return carries the
// taxonomy error for callers that branch on kind.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	ctx = common.WithContractID(ctx, req.ContractID)
	start := time.Now()
	res := Result{
		ContractID: req.ContractID,
		Source:     req.Source,
		Failures:   []string{},
	}

	p.logger.Info("ingest.start",
		"contract_id", req.ContractID,
		"bucket", req.Source.Bucket, "key", req.Source.Key,
	)

	if p.source != nil {
		if err := p.source.StatDocument(ctx, req.Source); err != nil {
			return p.fail(res, fmt.Errorf("document not reachable: %w", err))
		}
	}

	fullText, sum, err := p.ocr.Run(ctx, req.Source)
	if err != nil {
		return p.fail(res, err)
	}
	if fullText == "" {
		return p.fail(res, fmt.Errorf("text detection returned empty text for job %s", sum.JobID))
	}

	chunks := chunk.Split(fullText, p.cfg.MaxCharsPerChunk)
	res.ChunkCount = len(chunks)
	p.logger.Info("ingest.chunked",
		"contract_id", req.ContractID,
		"text_len", len(fullText), "chunks", len(chunks),
	)

	var extractions []map[string]any
	for idx, c := range chunks {
		ext, err := p.extractChunk(ctx, c, req.VendorMetadata)
		if err != nil {
			// Chunk failures are isolated and audited; the pipeline
			// continues with the remaining chunks.
			res.Failures = append(res.Failures, fmt.Sprintf("chunk[%d]: %v", idx, err))
			p.logger.Warn("ingest.chunk.failed", "contract_id", req.ContractID, "chunk", idx, "error", err)
			continue
		}
		extractions = append(extractions, ext)
	}

	if len(extractions) == 0 {
		return p.fail(res, common.NewAppError("ALL_CHUNKS_FAILED",
			fmt.Sprintf("all extractions failed, first errors: %v", firstN(res.Failures, 3)),
			common.ErrAllChunksFailed))
	}

	merged, err := extract.MergeValidated(extractions)
	if err != nil {
		return p.fail(res, err)
	}

	res.Extracted = merged
	res.Status = constants.ContractStatusIngested
	p.logger.Info("ingest.ok",
		"contract_id", req.ContractID,
		"chunks", res.ChunkCount,
		"chunk_failures", len(res.Failures),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// extractChunk runs prompt → invoke → normalize → recover → coerce → validate
// for one chunk.
func (p *Pipeline) extractChunk(ctx context.Context, text string, meta map[string]any) (map[string]any, error) {
	prompt := extract.BuildPrompt(text, meta)

	payload, err := p.invoker.Invoke(ctx, llm.InvokeRequest{
		Prompt:      prompt,
		MaxTokens:   p.cfg.MaxTokens,
		Temperature: p.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("invoke model: %w", err)
	}

	modelText, err := llm.NormalizeResponse(p.shape, payload)
	if err != nil {
		return nil, err
	}

	obj, err := llm.RecoverJSONObject(modelText)
	if err != nil {
		return nil, err
	}

	coerced := extract.CoerceTypes(obj)
	if err := extract.Validate(coerced); err != nil {
		return nil, err
	}
	return coerced, nil
}

func (p *Pipeline) fail(res Result, err error) (Result, error) {
	res.Status = constants.ContractStatusError
	res.Reason = err.Error()
	p.logger.Error("ingest.failed", "contract_id", res.ContractID, "error", err)
	return res, err
}

func firstN(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
