package extract

import (
	"encoding/json"
	"strings"
)

// BuildPrompt renders the deterministic extraction instruction prompt for one
// chunk of contract text plus vendor metadata. Pure function; no side effects.
func BuildPrompt(chunk string, vendorMetadata map[string]any) string {
	meta, err := json.Marshal(vendorMetadata)
	if err != nil || vendorMetadata == nil {
		meta = []byte("{}")
	}

	var b strings.Builder
	b.WriteString("You are a contract ingestion agent.\n")
	b.WriteString("Extract the following fields ONLY in JSON (no commentary, no markdown, no code fences):\n")
	for _, k := range FieldNames {
		b.WriteString("- ")
		b.WriteString(k)
		b.WriteString("\n")
	}
	b.WriteString("\nIf a field is missing, return null.\n")
	b.WriteString("Do not invent facts. Use only the provided text.\n\n")
	b.WriteString("Vendor metadata (may help interpret the contract, but do not override text):\n")
	b.Write(meta)
	b.WriteString("\n\nContract text:\n\"\"\"")
	b.WriteString(chunk)
	b.WriteString("\"\"\"\n")
	return b.String()
}
