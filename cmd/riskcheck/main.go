// Command riskcheck scores an already-extracted contract record read from a
// JSON file (the output of cmd/ingest) and prints the risk result.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ingest"
	"github.com/romitbhandari17/agentic-risk-automation/internal/llm"
	"github.com/romitbhandari17/agentic-risk-automation/internal/risk"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "riskcheck <ingest-result.json>")
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if cfg.Model.BaseURL == "" {
		logger.Error("MODEL_BASE_URL is required")
		os.Exit(2)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("cannot read input file", "path", os.Args[1], "error", err)
		os.Exit(2)
	}
	var ingRes ingest.Result
	if err := json.Unmarshal(raw, &ingRes); err != nil {
		logger.Error("input is not an ingest result", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	shape := llm.ShapeFor(cfg.Model.ResponseShape)
	invoker := llm.NewClient(llm.ClientConfig{
		BaseURL: cfg.Model.BaseURL,
		APIKey:  cfg.Model.APIKey,
		ModelID: cfg.Model.ModelID,
		Timeout: cfg.Model.Timeout,
		Shape:   shape,
	}, logger)

	analyzer := risk.NewAnalyzer(risk.Config{
		Threshold:   cfg.Risk.HighRiskThreshold,
		MaxTokens:   cfg.Risk.MaxTokens,
		Temperature: cfg.Model.Temperature,
	}, invoker, shape, logger)

	res, err := analyzer.Run(ctx, risk.FromIngestResult(ingRes))
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)
	if err != nil {
		os.Exit(1)
	}
}
