package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/romitbhandari17/agentic-risk-automation/constants"
	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
)

// Config holds orchestrator timing and pagination knobs.
type Config struct {
	WaitTimeout  time.Duration // wall-clock bound on the poll loop
	PollInterval time.Duration // sleep between status polls
	MaxPageSize  int32         // max results per retrieval page
}

// Orchestrator runs the submit → poll → retrieve state machine over a
// TextDetector. No automatic re-submission happens on timeout or failure;
// retry scheduling belongs to the caller.
type Orchestrator struct {
	detector TextDetector
	cfg      Config
	logger   *slog.Logger
}

// Summary describes a completed detection run.
type Summary struct {
	JobID     string
	Status    constants.OCRJobStatus // SUCCEEDED or PARTIAL_SUCCESS
	LineCount int
	Polls     int
	Elapsed   time.Duration
}

func NewOrchestrator(detector TextDetector, cfg Config, logger *slog.Logger) *Orchestrator {
	if cfg.WaitTimeout <= 0 {
		cfg.WaitTimeout = 300 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 1000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{detector: detector, cfg: cfg, logger: logger}
}

// Run submits a detection job for loc, waits for a terminal state, and
// collects all result text. The returned text may be empty (zero lines);
// treating that as failure is the caller's explicit check, not this layer's.
func (o *Orchestrator) Run(ctx context.Context, loc DocumentLocation) (string, Summary, error) {
	start := time.Now()

	jobID, err := o.detector.Submit(ctx, loc)
	if err != nil {
		o.logger.Error("ocr.submit.failed", "bucket", loc.Bucket, "key", loc.Key, "error", err)
		return "", Summary{}, common.NewAppError("OCR_SUBMIT", "start text detection", fmt.Errorf("%w: %w", common.ErrJobSubmission, err))
	}
	o.logger.Info("ocr.submit.ok", "job_id", jobID, "bucket", loc.Bucket, "key", loc.Key)

	status, polls, err := o.wait(ctx, jobID)
	if err != nil {
		return "", Summary{JobID: jobID, Polls: polls, Elapsed: time.Since(start)}, err
	}
	if status == constants.OCRJobPartialSuccess {
		o.logger.Warn("ocr.wait.partial_success", "job_id", jobID, "polls", polls)
	}

	text, lines, err := o.collect(ctx, jobID)
	if err != nil {
		return "", Summary{JobID: jobID, Status: status, Polls: polls, Elapsed: time.Since(start)}, err
	}

	sum := Summary{
		JobID:     jobID,
		Status:    status,
		LineCount: lines,
		Polls:     polls,
		Elapsed:   time.Since(start),
	}
	o.logger.Info("ocr.run.ok",
		"job_id", jobID, "status", string(status),
		"lines", lines, "polls", polls,
		"elapsed_ms", sum.Elapsed.Milliseconds(),
	)
	return text, sum, nil
}

// wait polls at the configured interval until the job reaches a terminal
// state or the wall-clock timeout elapses.
func (o *Orchestrator) wait(ctx context.Context, jobID string) (constants.OCRJobStatus, int, error) {
	start := time.Now()
	polls := 0
	for {
		polls++
		state, err := o.detector.Poll(ctx, jobID)
		if err != nil {
			return "", polls, fmt.Errorf("poll job %s: %w", jobID, err)
		}
		o.logger.Debug("ocr.poll", "job_id", jobID, "poll", polls, "status", string(state.Status))

		if state.Status.Retrievable() {
			return state.Status, polls, nil
		}
		if state.Status == constants.OCRJobFailed {
			o.logger.Error("ocr.wait.failed", "job_id", jobID, "status_message", state.StatusMessage)
			return "", polls, common.NewAppError("OCR_FAILED",
				fmt.Sprintf("job %s ended with status=FAILED: %s", jobID, state.StatusMessage),
				common.ErrJobFailed)
		}

		if elapsed := time.Since(start); elapsed > o.cfg.WaitTimeout {
			return "", polls, common.NewAppError("OCR_TIMEOUT",
				fmt.Sprintf("timed out waiting for job %s after %.1fs (last status %s)",
					jobID, elapsed.Seconds(), state.Status),
				common.ErrJobTimeout)
		}

		select {
		case <-ctx.Done():
			return "", polls, ctx.Err()
		case <-time.After(o.cfg.PollInterval):
		}
	}
}

// collect pages through all results and joins line blocks with newlines in
// the order the service returned them.
func (o *Orchestrator) collect(ctx context.Context, jobID string) (string, int, error) {
	var lines []string
	token := ""
	for {
		page, err := o.detector.FetchPage(ctx, jobID, token, o.cfg.MaxPageSize)
		if err != nil {
			return "", 0, fmt.Errorf("fetch results for job %s: %w", jobID, err)
		}
		lines = append(lines, page.Lines...)
		token = page.NextPageToken
		if token == "" {
			break
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), len(lines), nil
}
