package extract

import "encoding/json"

// Merge combines per-chunk validated objects into one record using a
// first-write-wins policy: each field takes the value from the first chunk
// (in order) that supplied a non-nil value. Later chunks never override a
// filled field, even when their content is more specific.
func Merge(extractions []map[string]any) map[string]any {
	merged := make(map[string]any, len(FieldNames))
	for _, k := range FieldNames {
		merged[k] = nil
	}
	for _, ext := range extractions {
		for _, k := range FieldNames {
			if merged[k] == nil && ext[k] != nil {
				merged[k] = ext[k]
			}
		}
	}
	return merged
}

// MergeValidated merges and re-runs both validators over the result. Merge
// cannot by construction violate the schema, but the revalidation is kept as
// a safety net against future drift.
func MergeValidated(extractions []map[string]any) (map[string]any, error) {
	merged := Merge(extractions)
	if err := Validate(merged); err != nil {
		return nil, err
	}
	b, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	if err := ValidateAgainstSchema(Schema(), b); err != nil {
		return nil, err
	}
	return merged, nil
}
