package llm

import (
	"encoding/json"
	"strings"
)

const fence = "```"

// FencedBlocks returns the contents of ``` fenced segments in order. An info
// string on the opening fence line (such as "json") is dropped. An unclosed
// fence yields the remainder of the text as its block.
func FencedBlocks(text string) []string {
	var blocks []string
	inside := false
	var current strings.Builder

	rest := text
	for {
		idx := strings.Index(rest, fence)
		if idx < 0 {
			break
		}

		if !inside {
			rest = rest[idx+len(fence):]
			// skip the info string up to the end of the opening line
			if nl := strings.IndexByte(rest, '\n'); nl >= 0 && isInfoString(rest[:nl]) {
				rest = rest[nl+1:]
			} else if nl < 0 && isInfoString(rest) && !strings.Contains(rest, "{") {
				rest = ""
			}
			inside = true
			current.Reset()
			continue
		}

		current.WriteString(rest[:idx])
		blocks = append(blocks, current.String())
		rest = rest[idx+len(fence):]
		inside = false
	}

	if inside {
		current.WriteString(rest)
		blocks = append(blocks, current.String())
	}
	return blocks
}

// isInfoString reports whether s looks like a fence language tag
func isInfoString(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '-' || r == '_' || r == '+') {
			return false
		}
	}
	return true
}

// ParseJSONObject extracts a JSON object from model output. Fenced segments
// are tried in order and the first one that decodes to an object wins;
// otherwise the whole trimmed text is tried.
func ParseJSONObject(text string) (map[string]any, bool) {
	for _, block := range FencedBlocks(text) {
		if obj, ok := decodeObject(block); ok {
			return obj, true
		}
	}
	return decodeObject(text)
}

func decodeObject(s string) (map[string]any, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
