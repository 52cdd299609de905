package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences splits text after '.', '!' or '?' when followed by whitespace.
// Fragments are trimmed and empty ones dropped.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}

		next, _ := utf8.DecodeRuneInString(text[i:])
		if i >= len(text) || !unicode.IsSpace(next) {
			continue
		}

		sentences = appendTrimmed(sentences, text[start:i])
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		start = i
	}

	return appendTrimmed(sentences, text[start:])
}

func appendTrimmed(sentences []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return sentences
	}
	return append(sentences, s)
}

// SelectRelevant keeps sentences mentioning any keyword or name
// (case-insensitive substring match), up to max sentences joined by spaces.
// When nothing matches, the first max sentences are returned. max <= 0 means
// no limit.
func SelectRelevant(text string, keywords, names []string, max int) string {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return ""
	}

	var needles []string
	for _, term := range append(append([]string{}, keywords...), names...) {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" {
			needles = append(needles, term)
		}
	}

	var selected []string
	for _, sentence := range sentences {
		if max > 0 && len(selected) >= max {
			break
		}
		lower := strings.ToLower(sentence)
		for _, needle := range needles {
			if strings.Contains(lower, needle) {
				selected = append(selected, sentence)
				break
			}
		}
	}

	if len(selected) == 0 {
		selected = sentences
		if max > 0 && len(selected) > max {
			selected = selected[:max]
		}
	}

	return strings.Join(selected, " ")
}
