package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
)

// RecoverJSONObject parses a JSON object out of free-form model text that may
// carry leading or trailing commentary. The trimmed text is parsed whole when
// it already looks like an object; otherwise the span between the first "{"
// and the last "}" is parsed.
//
// This is a best-effort heuristic: it does not balance nested braces beyond
// the outermost pair, so a stray "}" before a later legitimate object can
// mis-extract. That behavior is intentional and load-bearing; a balancing
// parser would change what malformed responses get accepted.
func RecoverJSONObject(text string) (map[string]any, error) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return decodeObject(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end != -1 && end > start {
		return decodeObject(text[start : end+1])
	}

	return nil, common.ErrNoJSONFound
}

func decodeObject(s string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil, fmt.Errorf("parse model JSON: %w", err)
	}
	return m, nil
}
