package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeFirstWriteWins(t *testing.T) {
	first := fullObject(map[string]any{"payment_terms": "Net 30"})
	second := fullObject(map[string]any{"governing_law": "NY", "payment_terms": "Net 60"})

	merged := Merge([]map[string]any{first, second})

	assert.Equal(t, "NY", merged["governing_law"])
	assert.Equal(t, "Net 30", merged["payment_terms"])
	for _, k := range []string{"termination_clause", "liability_clause", "indemnity_clause", "data_protection", "renewal_terms"} {
		assert.Nil(t, merged[k], k)
	}
}

func TestMergeEmptyInput(t *testing.T) {
	merged := Merge(nil)
	for _, k := range FieldNames {
		assert.Nil(t, merged[k])
	}
}

func TestMergeValidatedRoundTrip(t *testing.T) {
	merged, err := MergeValidated([]map[string]any{
		fullObject(map[string]any{"indemnity_clause": "vendor indemnifies"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "vendor indemnifies", merged["indemnity_clause"])
	assert.Len(t, merged, len(FieldNames))
}
