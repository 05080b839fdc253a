// Package extract turns noisy model output into a strictly typed,
// schema-validated contract clause record, merged deterministically across
// text chunks.
package extract

// FieldNames is the closed extraction field set, in canonical order.
var FieldNames = []string{
	"governing_law",
	"termination_clause",
	"liability_clause",
	"indemnity_clause",
	"data_protection",
	"payment_terms",
	"renewal_terms",
}

// Record maps each extraction field to a clause string or nil. The key set is
// exactly FieldNames; Validate enforces that before a Record leaves this
// package. Records are passed by value downstream and never mutated after
// validation.
type Record map[string]*string

// NewRecord returns a Record with every field present and nil.
func NewRecord() Record {
	r := make(Record, len(FieldNames))
	for _, k := range FieldNames {
		r[k] = nil
	}
	return r
}

// Schema returns the extraction JSON Schema as a generic map, used for the
// defensive revalidation pass after merge.
func Schema() map[string]any {
	props := make(map[string]any, len(FieldNames))
	for _, k := range FieldNames {
		props[k] = map[string]any{"type": []string{"string", "null"}}
	}
	required := make([]any, 0, len(FieldNames))
	for _, k := range FieldNames {
		required = append(required, k)
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}
