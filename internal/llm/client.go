package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ClientConfig configures the HTTP model-inference client.
type ClientConfig struct {
	BaseURL string // e.g. https://bedrock-runtime.us-east-1.amazonaws.com or a gateway in front of it
	APIKey  string // optional bearer token
	ModelID string // base model ID or inference profile ID/ARN
	Timeout time.Duration
	Shape   ResponseShape
}

// Client posts shape-built request bodies to a model-runtime invoke endpoint
// and returns the raw response envelope.
type Client struct {
	cfg    ClientConfig
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.Shape == nil {
		cfg.Shape = ShapeFor("")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Shape returns the response-shape adapter this client sends with.
func (c *Client) Shape() ResponseShape { return c.cfg.Shape }

// Invoke implements Invoker.
func (c *Client) Invoke(ctx context.Context, req InvokeRequest) ([]byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	body := c.cfg.Shape.BuildBody(req)
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode invoke body: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/model/" + url.PathEscape(c.cfg.ModelID) + "/invoke"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	c.logger.Info("llm.invoke.request",
		"req_id", rid,
		"model", c.cfg.ModelID,
		"shape", c.cfg.Shape.Name(),
		"prompt_len", len(req.Prompt),
		"max_tokens", req.MaxTokens,
	)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Error("llm.invoke.send_error",
			"req_id", rid, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.logger.Warn("llm.invoke.body_close_error", "req_id", rid, "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Info("llm.invoke.response",
		"req_id", rid,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return raw, fmt.Errorf("model runtime status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
