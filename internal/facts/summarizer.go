package facts

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/coasterscan/internal/llm"
	"github.com/ppiankov/coasterscan/internal/model"
)

// MaxSummaryInput is the total character budget for snippets in a summary prompt
const MaxSummaryInput = 12000

// Summarizer writes short neutral notes from ordered source snippets
type Summarizer struct {
	completer llm.Completer
	logger    *zap.Logger
}

// NewSummarizer creates a Summarizer. A nil completer behaves as llm.Disabled.
func NewSummarizer(completer llm.Completer, logger *zap.Logger) *Summarizer {
	if completer == nil {
		completer = llm.Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{completer: completer, logger: logger}
}

// Summarize returns notes of at most maxChars characters, or nil when no
// summary can be produced. Without a text capability the first non-empty
// snippet is used verbatim.
func (s *Summarizer) Summarize(ctx context.Context, name string, kind model.Kind, snippets []model.Snippet, lang string, maxChars int) *string {
	first := firstText(snippets)
	if first == "" {
		return nil
	}

	body := renderSnippets(snippets, MaxSummaryInput)
	out, err := s.completer.Complete(ctx, llm.Request{
		System:      summarySystem(kind),
		User:        summaryPrompt(name, kind, lang, body),
		Temperature: 0.3,
		MaxTokens:   350,
	})
	if err != nil {
		if llm.IsUnavailable(err) {
			return clip(first, maxChars)
		}
		s.logger.Warn("summary failed", zap.String("name", name), zap.Error(err))
		return nil
	}

	return clip(out, maxChars)
}

func firstText(snippets []model.Snippet) string {
	for _, sn := range snippets {
		if t := strings.TrimSpace(sn.Text); t != "" {
			return t
		}
	}
	return ""
}

// clip trims and truncates text; blank text yields nil
func clip(text string, maxChars int) *string {
	text = strings.TrimSpace(text)
	if maxChars > 0 {
		text = strings.TrimSpace(model.TruncateRunes(text, maxChars))
	}
	if text == "" {
		return nil
	}
	return &text
}

// renderSnippets concatenates non-empty snippets under source headers within
// budget characters. The snippet that overflows the budget is truncated and
// nothing after it is included.
func renderSnippets(snippets []model.Snippet, budget int) string {
	var buf strings.Builder
	remaining := budget

	for _, sn := range snippets {
		text := strings.TrimSpace(sn.Text)
		if text == "" {
			continue
		}

		header := fmt.Sprintf("[SOURCE: %s]\n", sn.Label)
		if sn.URL != "" {
			header = fmt.Sprintf("[SOURCE: %s — %s]\n", sn.Label, sn.URL)
		}

		headerLen := len([]rune(header))
		if headerLen >= remaining {
			break
		}
		remaining -= headerLen

		textLen := len([]rune(text))
		truncated := false
		if textLen > remaining {
			text = model.TruncateRunes(text, remaining)
			textLen = remaining
			truncated = true
		}

		buf.WriteString(header)
		buf.WriteString(text)
		buf.WriteString("\n\n")
		remaining -= textLen

		if truncated || remaining <= 0 {
			break
		}
	}

	return strings.TrimSpace(buf.String())
}
