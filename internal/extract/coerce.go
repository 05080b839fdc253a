package extract

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CoerceTypes normalizes every expected field of a raw decoded object to
// string-or-nil, regardless of whether the model returned an object, array,
// number, or boolean for it. Unexpected top-level keys are deliberately left
// untouched so Validate can reject them; coercion must not hide a malformed
// response.
func CoerceTypes(obj map[string]any) map[string]any {
	coerced := make(map[string]any, len(obj))
	for k, v := range obj {
		coerced[k] = v
	}
	for _, k := range FieldNames {
		coerced[k] = anyToStringOrNil(obj[k])
	}
	return coerced
}

// anyToStringOrNil returns either a non-empty trimmed string or nil.
func anyToStringOrNil(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		return s
	case map[string]any:
		return compactJSON(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			switch it := item.(type) {
			case nil:
				continue
			case string:
				s := strings.TrimSpace(it)
				if s != "" {
					parts = append(parts, s)
				}
			case map[string]any:
				parts = append(parts, compactJSON(it))
			default:
				parts = append(parts, scalarString(it))
			}
		}
		joined := strings.TrimSpace(strings.Join(parts, "\n"))
		if joined == "" {
			return nil
		}
		return joined
	default:
		s := strings.TrimSpace(scalarString(v))
		if s == "" {
			return nil
		}
		return s
	}
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Values decoded from JSON always re-encode; keep a string anyway.
		return ""
	}
	return string(b)
}

func scalarString(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
