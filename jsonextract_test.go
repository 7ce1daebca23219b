package bioquery

import "testing"

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name     string
		response string
		want     string
	}{
		{"bare", `{"operation": "translate"}`, `{"operation": "translate"}`},
		{"prose", `Sure: {"operation": "gc-content"} hope that helps`, `{"operation": "gc-content"}`},
		{"fenced_json", "```json\n{\"operation\": \"six-frame\"}\n```", `{"operation": "six-frame"}`},
		{"fenced_untagged", "```\n{\"operation\": \"six-frame\"}\n```", `{"operation": "six-frame"}`},
		{"other_language_not_preferred", "```python\n{\"a\": 1}\n```\nthen {\"operation\": \"unknown\"}", `{"a": 1}`},
		{"nested", `x {"operation": "pattern-search", "parameters": {"pattern": "GAATTC"}} y`, `{"operation": "pattern-search", "parameters": {"pattern": "GAATTC"}}`},
		{"braces_in_strings", `{"reasoning": "a } b {", "operation": "unknown"}`, `{"reasoning": "a } b {", "operation": "unknown"}`},
		{"escaped_quote", `{"reasoning": "say \"}\"", "operation": "unknown"}`, `{"reasoning": "say \"}\"", "operation": "unknown"}`},
		{"skips_invalid_first", `{not json} {"operation": "translate"}`, `{"operation": "translate"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractJSONObject(tc.response)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}

	for _, bad := range []string{"", "no object here", `{"unterminated": `, "[1, 2, 3]"} {
		if _, err := extractJSONObject(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
