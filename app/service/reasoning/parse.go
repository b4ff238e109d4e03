package reasoning

import (
	"encoding/json"
	"strings"
)

// parseStructured splits a model reply into prose and an optional structured
// object. Replies that are a single (possibly fenced) JSON object become the
// structured output, with its final_response as the prose; anything else is
// returned verbatim as prose.
func parseStructured(content string) (string, *StructuredOutput) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.Trim(cleaned, "`")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimPrefix(cleaned, "json")
	cleaned = strings.TrimSpace(cleaned)

	if !strings.HasPrefix(cleaned, "{") {
		return strings.TrimSpace(content), nil
	}

	var structured StructuredOutput
	if err := json.Unmarshal([]byte(cleaned), &structured); err != nil {
		return strings.TrimSpace(content), nil
	}

	if !structured.Consistent() {
		return strings.TrimSpace(content), nil
	}

	text := strings.TrimSpace(structured.FinalResponse)

	return text, &structured
}
