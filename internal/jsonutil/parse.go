// Package jsonutil extracts the JSON payload from model responses. Even with
// a response schema the text can arrive wrapped in markdown code fences or
// with stray prose around it; Payload isolates the outermost JSON value and
// leaves validation to the caller.
package jsonutil

import (
	"fmt"
	"strings"
)

// Payload returns the outermost JSON object or array embedded in raw,
// stripping a markdown code fence first if one wraps the text.
func Payload(raw string) ([]byte, error) {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return nil, fmt.Errorf("no JSON content found (response length %d)", len(raw))
	}

	var closer byte = '}'
	if text[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(text, closer)
	if end < start {
		return nil, fmt.Errorf("no closing %q found", string(closer))
	}

	return []byte(text[start : end+1]), nil
}
