package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPromptDeterministic(t *testing.T) {
	meta := map[string]any{"contract_type": "MSA"}
	a := BuildPrompt("some clause text", meta)
	b := BuildPrompt("some clause text", meta)
	assert.Equal(t, a, b)
}

func TestBuildPromptContents(t *testing.T) {
	p := BuildPrompt("the chunk body", map[string]any{"region": "us-east-1"})
	for _, k := range FieldNames {
		assert.Contains(t, p, "- "+k)
	}
	assert.Contains(t, p, "If a field is missing, return null.")
	assert.Contains(t, p, "no commentary, no markdown, no code fences")
	assert.Contains(t, p, `"region":"us-east-1"`)
	assert.Contains(t, p, `"""the chunk body"""`)
}

func TestBuildPromptNilMetadata(t *testing.T) {
	p := BuildPrompt("c", nil)
	assert.Contains(t, p, "{}")
}
