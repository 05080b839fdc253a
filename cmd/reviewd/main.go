package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/romitbhandari17/agentic-risk-automation/internal/approval"
	"github.com/romitbhandari17/agentic-risk-automation/internal/async"
	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/export"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ingest"
	"github.com/romitbhandari17/agentic-risk-automation/internal/llm"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ocr"
	"github.com/romitbhandari17/agentic-risk-automation/internal/repository"
	"github.com/romitbhandari17/agentic-risk-automation/internal/review"
	"github.com/romitbhandari17/agentic-risk-automation/internal/risk"
	"github.com/romitbhandari17/agentic-risk-automation/internal/server"
	"github.com/romitbhandari17/agentic-risk-automation/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	approvalsRepo := repository.NewApprovalRepository(pool, logger)
	reviewsRepo := repository.NewReviewRepository(pool, logger)
	if err := approvalsRepo.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}
	if err := reviewsRepo.EnsureSchema(ctx); err != nil {
		logger.Error("failed to ensure schema", "error", err)
		os.Exit(1)
	}

	var source ingest.DocumentSource
	if cfg.Storage.AccessKey != "" {
		store, err := storage.NewDocumentStore(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
		}, logger)
		if err != nil {
			logger.Error("failed to create document store", "error", err)
			os.Exit(1)
		}
		source = store
	} else {
		logger.Warn("no storage credentials, document existence checks disabled")
	}

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
	}, source, orchestrator, invoker, shape, logger)

	analyzer := risk.NewAnalyzer(risk.Config{
		Threshold:   cfg.Risk.HighRiskThreshold,
		MaxTokens:   cfg.Risk.MaxTokens,
		Temperature: cfg.Model.Temperature,
	}, invoker, shape, logger)

	gate := approval.NewGate(approvalsRepo, approval.LogNotifier{
		Endpoint: cfg.Approval.Endpoint,
		Logger:   logger,
	}, logger)

	processor := review.NewProcessor(pipeline, analyzer, gate, reviewsRepo, logger)
	queue := async.NewReviewQueue(processor, logger,
		async.WithWorkers(6),
		async.WithQueueSize(512),
		async.WithProcessTimeout(cfg.OCR.WaitTimeout+5*time.Minute),
	)

	router := server.NewRouter(server.Deps{
		Queue:   queue,
		Gate:    gate,
		Reviews: reviewsRepo,
		Export:  export.NewService(reviewsRepo, logger),
		Logger:  logger,
	}, cfg.Server.RequestTimeout)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("reviewd listening", "addr", cfg.Server.HTTPAddr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
}
