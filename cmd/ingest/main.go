// Command ingest runs extraction for a single contract document and prints
// the result JSON. Useful for local testing without the daemon.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ingest"
	"github.com/romitbhandari17/agentic-risk-automation/internal/llm"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ocr"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 3 {
		logger.Error("usage", "cmd", "ingest <bucket> <key>")
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if cfg.Model.BaseURL == "" || cfg.OCR.BaseURL == "" {
		logger.Error("MODEL_BASE_URL and OCR_BASE_URL are required")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OCR.WaitTimeout+5*time.Minute)
	defer cancel()

	detector := ocr.NewHTTPDetector(cfg.OCR.BaseURL, 30*time.Second, logger)
	orchestrator := ocr.NewOrchestrator(detector, ocr.Config{
		WaitTimeout:  cfg.OCR.WaitTimeout,
		PollInterval: cfg.OCR.PollInterval,
		MaxPageSize:  cfg.OCR.MaxPageSize,
	}, logger)

	shape := llm.ShapeFor(cfg.Model.ResponseShape)
	invoker := llm.NewClient(llm.ClientConfig{
		BaseURL: cfg.Model.BaseURL,
		APIKey:  cfg.Model.APIKey,
		ModelID: cfg.Model.ModelID,
		Timeout: cfg.Model.Timeout,
		Shape:   shape,
	}, logger)

	pipeline := ingest.NewPipeline(ingest.Config{
		MaxCharsPerChunk: cfg.Ingest.MaxCharsPerChunk,
		MaxTokens:        cfg.Ingest.MaxTokens,
		Temperature:      cfg.Model.Temperature,
	}, nil, orchestrator, invoker, shape, logger)

	res, err := pipeline.Run(ctx, ingest.Request{
		ContractID: uuid.New().String(),
		Source:     ocr.DocumentLocation{Bucket: os.Args[1], Key: os.Args[2]},
	})
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
	if err != nil {
		os.Exit(1)
	}
}
