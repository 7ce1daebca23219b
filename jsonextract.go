package bioquery

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// codeBlockPattern matches markdown code blocks with an optional language tag.
var codeBlockPattern = regexp.MustCompile(`(?s)` + "```" + `(\w*)\s*\n(.+?)\n` + "```")

// extractJSONObject pulls a JSON object out of a model response that may be
// wrapped in markdown or surrounded by prose. Fenced json (or untagged)
// blocks win over a raw object in the text.
func extractJSONObject(response string) (string, error) {
	for _, match := range codeBlockPattern.FindAllStringSubmatch(response, -1) {
		lang := strings.ToLower(match[1])
		content := strings.TrimSpace(match[2])
		if lang != "" && lang != "json" {
			continue
		}
		if strings.HasPrefix(content, "{") && isValidJSON(content) {
			return content, nil
		}
	}

	for start := strings.Index(response, "{"); start >= 0; {
		if obj := matchBraces(response[start:]); obj != "" && isValidJSON(obj) {
			return obj, nil
		}
		next := strings.Index(response[start+1:], "{")
		if next < 0 {
			break
		}
		start += next + 1
	}

	return "", fmt.Errorf("no JSON object found in response")
}

// matchBraces returns the balanced object at the start of s, honoring strings.
func matchBraces(s string) string {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

func isValidJSON(s string) bool {
	var js json.RawMessage
	return json.Unmarshal([]byte(s), &js) == nil
}
