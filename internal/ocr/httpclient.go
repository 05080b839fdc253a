package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/romitbhandari17/agentic-risk-automation/constants"
)

// HTTPDetector is a TextDetector over a REST text-detection service:
// POST /jobs starts a job, GET /jobs/{id} reports status, and
// GET /jobs/{id}/pages retrieves paginated line blocks.
type HTTPDetector struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewHTTPDetector(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPDetector {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPDetector{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (d *HTTPDetector) Submit(ctx context.Context, loc DocumentLocation) (string, error) {
	body, err := json.Marshal(map[string]any{"document_location": loc})
	if err != nil {
		return "", fmt.Errorf("encode submit body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/jobs", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		JobID string `json:"job_id"`
	}
	if err := d.do(req, &out); err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", fmt.Errorf("detection service returned no job id")
	}
	return out.JobID, nil
}

func (d *HTTPDetector) Poll(ctx context.Context, jobID string) (JobState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return JobState{}, fmt.Errorf("build poll request: %w", err)
	}

	var out struct {
		Status        string `json:"status"`
		StatusMessage string `json:"status_message"`
	}
	if err := d.do(req, &out); err != nil {
		return JobState{}, err
	}
	return JobState{
		Status:        constants.OCRJobStatus(out.Status),
		StatusMessage: out.StatusMessage,
	}, nil
}

func (d *HTTPDetector) FetchPage(ctx context.Context, jobID, pageToken string, maxResults int32) (ResultPage, error) {
	u := d.baseURL + "/jobs/" + url.PathEscape(jobID) + "/pages?max_results=" + strconv.Itoa(int(maxResults))
	if pageToken != "" {
		u += "&page_token=" + url.QueryEscape(pageToken)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return ResultPage{}, fmt.Errorf("build page request: %w", err)
	}

	var out struct {
		Lines         []string `json:"lines"`
		NextPageToken string   `json:"next_page_token"`
	}
	if err := d.do(req, &out); err != nil {
		return ResultPage{}, err
	}
	return ResultPage{Lines: out.Lines, NextPageToken: out.NextPageToken}, nil
}

func (d *HTTPDetector) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := d.http.Do(req)
	if err != nil {
		d.logger.Error("ocr.http.send_error", "url", req.URL.Path, "error", err)
		return err
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			d.logger.Warn("ocr.http.body_close_error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	d.logger.Debug("ocr.http.response",
		"url", req.URL.Path,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("detection service status %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode detection response: %w", err)
	}
	return nil
}
