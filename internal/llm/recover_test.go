package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
)

func TestRecoverJSONObjectWhole(t *testing.T) {
	m, err := RecoverJSONObject(" \n{\"a\": 1}\n ")
	require.NoError(t, err)
	assert.Equal(t, float64(1), m["a"])
}

func TestRecoverJSONObjectEmbedded(t *testing.T) {
	m, err := RecoverJSONObject(`Here is the result: {"a":1} -- end`)
	require.NoError(t, err)
	assert.Equal(t, float64(1), m["a"])
}

func TestRecoverJSONObjectNoBraces(t *testing.T) {
	_, err := RecoverJSONObject("no json here")
	assert.ErrorIs(t, err, common.ErrNoJSONFound)
}

func TestRecoverJSONObjectOnlyClosingBrace(t *testing.T) {
	_, err := RecoverJSONObject("} oops")
	assert.ErrorIs(t, err, common.ErrNoJSONFound)
}

func TestRecoverJSONObjectInvalidSpan(t *testing.T) {
	_, err := RecoverJSONObject("prefix { not json } suffix")
	require.Error(t, err)
	assert.NotErrorIs(t, err, common.ErrNoJSONFound)
}

// The heuristic takes the outermost brace span; a stray closing brace after
// a legitimate object widens the span and fails the parse. Documented
// limitation, not a bug.
func TestRecoverJSONObjectKnownLossyHeuristic(t *testing.T) {
	_, err := RecoverJSONObject(`result: {"a":1} trailing note with a stray }`)
	require.Error(t, err)
}
