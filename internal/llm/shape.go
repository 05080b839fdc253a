package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
)

// ResponseShape builds the provider-specific request body for a prompt and
// extracts the flat text from the provider's response envelope. Shapes are
// selected by explicit configuration, with a permissive fallback for
// unrecognized names.
type ResponseShape interface {
	Name() string
	BuildBody(req InvokeRequest) map[string]any
	ExtractText(payload []byte) (string, error)
}

// ShapeFor returns the adapter for a configured shape name. Unrecognized
// names get the fallback adapter, which sends the anthropic-style request and
// accepts either envelope on the way back.
func ShapeFor(name string) ResponseShape {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "anthropic":
		return anthropicShape{}
	case "nova":
		return novaShape{}
	default:
		return fallbackShape{}
	}
}

// anthropicShape handles envelopes whose text parts live in a top-level
// "content" array tagged type:"text".
type anthropicShape struct{}

func (anthropicShape) Name() string { return "anthropic" }

func (anthropicShape) BuildBody(req InvokeRequest) map[string]any {
	return map[string]any{
		"anthropic_version": "bedrock-2023-05-31",
		"max_tokens":        req.MaxTokens,
		"temperature":       req.Temperature,
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": []map[string]any{{"type": "text", "text": req.Prompt}},
			},
		},
	}
}

func (anthropicShape) ExtractText(payload []byte) (string, error) {
	var env struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", fmt.Errorf("decode anthropic envelope: %w", err)
	}
	var parts []string
	for _, p := range env.Content {
		if p.Type == "text" {
			parts = append(parts, p.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// novaShape handles envelopes whose text parts are nested under
// output.message.content and tagged by the presence of a "text" key.
type novaShape struct{}

func (novaShape) Name() string { return "nova" }

func (novaShape) BuildBody(req InvokeRequest) map[string]any {
	return map[string]any{
		"inferenceConfig": map[string]any{
			"maxTokens":   req.MaxTokens,
			"temperature": req.Temperature,
		},
		"messages": []map[string]any{
			{
				"role":    "user",
				"content": []map[string]any{{"text": req.Prompt}},
			},
		},
	}
}

func (novaShape) ExtractText(payload []byte) (string, error) {
	var env struct {
		Output struct {
			Message struct {
				Content []map[string]any `json:"content"`
			} `json:"message"`
		} `json:"output"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return "", fmt.Errorf("decode nova envelope: %w", err)
	}
	var parts []string
	for _, p := range env.Output.Message.Content {
		if t, ok := p["text"].(string); ok {
			parts = append(parts, t)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}

// fallbackShape mirrors the anthropic request format but tolerates either
// envelope on responses, stringifying the whole payload when neither matches.
type fallbackShape struct{}

func (fallbackShape) Name() string { return "fallback" }

func (fallbackShape) BuildBody(req InvokeRequest) map[string]any {
	return anthropicShape{}.BuildBody(req)
}

func (fallbackShape) ExtractText(payload []byte) (string, error) {
	var env struct {
		Content []map[string]any `json:"content"`
	}
	if err := json.Unmarshal(payload, &env); err == nil && len(env.Content) > 0 {
		var parts []string
		for _, p := range env.Content {
			if t, ok := p["text"].(string); ok {
				parts = append(parts, t)
			}
		}
		if len(parts) > 0 {
			return strings.TrimSpace(strings.Join(parts, "\n")), nil
		}
	}
	return strings.TrimSpace(string(payload)), nil
}

// NormalizeResponse extracts text through the shape and enforces the
// non-empty invariant the downstream JSON parser relies on.
func NormalizeResponse(shape ResponseShape, payload []byte) (string, error) {
	text, err := shape.ExtractText(payload)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", common.ErrEmptyResponse
	}
	return text, nil
}
