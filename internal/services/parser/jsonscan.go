package parser

import "encoding/json"

// extractJSONSpans finds every top-level well-formed JSON object or array
// embedded in free-form text using a balanced-delimiter scan. Providers
// often wrap their JSON in conversational prose, so a first-to-last-brace
// slice is not good enough: nested braces and braces in prose both break
// it. Spans are returned in order of appearance.
func extractJSONSpans(raw string) []string {
	var spans []string

	var stack []byte
	inString := false
	escaped := false
	start := -1

	for i := 0; i < len(raw); i++ {
		c := raw[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if len(stack) > 0 {
				inString = true
			}
		case '{', '[':
			if len(stack) == 0 {
				start = i
			}
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 {
				continue // stray closer in prose
			}
			open := stack[len(stack)-1]
			if (c == '}' && open != '{') || (c == ']' && open != '[') {
				// Mismatched nesting, abandon this span
				stack = stack[:0]
				start = -1
				continue
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 && start >= 0 {
				candidate := raw[start : i+1]
				if json.Valid([]byte(candidate)) {
					spans = append(spans, candidate)
				}
				start = -1
			}
		}
	}

	return spans
}

// bestJSONObject returns the longest well-formed top-level JSON object
// span decoded into a map, or nil if the text holds none. Ties keep the
// earliest span so identical input always yields identical output.
func bestJSONObject(raw string) map[string]any {
	spans := extractJSONSpans(raw)

	var best map[string]any
	bestLen := 0
	for _, span := range spans {
		if span[0] != '{' {
			continue
		}
		if len(span) <= bestLen {
			continue
		}
		var decoded map[string]any
		if err := json.Unmarshal([]byte(span), &decoded); err != nil {
			continue
		}
		best = decoded
		bestLen = len(span)
	}

	return best
}
