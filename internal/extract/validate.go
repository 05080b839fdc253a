package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
)

// Validate enforces the closed 7-field schema on a coerced object. Checks run
// in order and fail fast on the first violation: no keys outside the field
// set, no required field missing, every present value string or nil. There is
// no partial-validation mode.
func Validate(obj map[string]any) error {
	if obj == nil {
		return common.NewAppError("SCHEMA_ERROR", "extraction output is not an object", common.ErrSchemaValidation)
	}

	allowed := make(map[string]struct{}, len(FieldNames))
	for _, k := range FieldNames {
		allowed[k] = struct{}{}
	}
	var extra []string
	for k := range obj {
		if _, ok := allowed[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return common.NewAppError("SCHEMA_ERROR",
			fmt.Sprintf("unexpected fields in output: %v", extra), common.ErrSchemaValidation)
	}

	for _, k := range FieldNames {
		if _, ok := obj[k]; !ok {
			return common.NewAppError("SCHEMA_ERROR",
				fmt.Sprintf("missing required field: %s", k), common.ErrSchemaValidation)
		}
	}

	for _, k := range FieldNames {
		switch obj[k].(type) {
		case nil, string:
		default:
			return common.NewAppError("SCHEMA_ERROR",
				fmt.Sprintf("field '%s' must be string or null", k), common.ErrSchemaValidation)
		}
	}
	return nil
}

// ToRecord converts a validated object into a typed Record. Call Validate
// first; ToRecord trusts its input.
func ToRecord(obj map[string]any) Record {
	r := NewRecord()
	for _, k := range FieldNames {
		if s, ok := obj[k].(string); ok {
			v := s
			r[k] = &v
		}
	}
	return r
}

// ValidateAgainstSchema validates data against a generic schema map. Used as
// the defensive second pass after merge; the ordered Validate above owns
// error wording for per-chunk failures.
func ValidateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
