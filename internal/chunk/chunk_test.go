package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "a b c", Normalize("a\n\n b\t\t c "))
	assert.Equal(t, "", Normalize("  \n\t "))
}

func TestSplitSingleChunkWhenUnderLimit(t *testing.T) {
	in := "This agreement is governed by   the laws of\nNew York."
	out := Split(in, 1000)
	require.Len(t, out, 1)
	assert.Equal(t, Normalize(in), out[0])
}

func TestSplitEmptyInput(t *testing.T) {
	assert.Nil(t, Split("   ", 100))
}

func TestSplitPrefersSentenceBoundary(t *testing.T) {
	first := strings.Repeat("a", 80) + "."
	second := strings.Repeat("b", 50)
	out := Split(first+" "+second, 100)
	require.Len(t, out, 2)
	// The boundary sits past 60% of the window, so the cut lands on it.
	assert.Equal(t, strings.Repeat("a", 80), out[0])
	assert.True(t, strings.HasSuffix(out[1], second))
}

func TestSplitFallsBackToSpace(t *testing.T) {
	// No ". " anywhere; words force space cuts.
	words := strings.Repeat("word ", 50) // 250 chars normalized to 249
	out := Split(words, 60)
	require.Greater(t, len(out), 1)
	for _, c := range out {
		assert.LessOrEqual(t, len(c), 60)
		assert.Equal(t, c, strings.TrimSpace(c))
	}
}

func TestSplitHardCutsLongToken(t *testing.T) {
	out := Split(strings.Repeat("x", 250), 100)
	require.Len(t, out, 3)
	assert.Equal(t, 100, len(out[0]))
	assert.Equal(t, 100, len(out[1]))
	assert.Equal(t, 50, len(out[2]))
}

func TestSplitCoverageRoundTrip(t *testing.T) {
	// Concatenating chunks (ignoring boundary trimming) reconstructs the
	// normalized input.
	var b strings.Builder
	for i := 0; i < 120; i++ {
		b.WriteString("The vendor shall indemnify the customer against claims. ")
	}
	in := b.String()
	normalized := Normalize(in)

	out := Split(in, 500)
	require.Greater(t, len(out), 1)

	joined := out[0]
	rest := normalized
	for _, c := range out {
		idx := strings.Index(rest, c)
		require.GreaterOrEqual(t, idx, 0, "chunk %q not found in order", c[:min(20, len(c))])
		rest = rest[idx+len(c):]
	}
	_ = joined

	// Stripping whitespace and separators, nothing was lost.
	squash := func(s string) string {
		return strings.Map(func(r rune) rune {
			if r == ' ' {
				return -1
			}
			return r
		}, s)
	}
	assert.Equal(t, squash(normalized), squash(strings.Join(out, "")))
}
