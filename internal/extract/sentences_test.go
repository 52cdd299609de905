package extract

import (
	"strings"
	"testing"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace", "   \n ", nil},
		{"basic", "One. Two! Three? Four", []string{"One.", "Two!", "Three?", "Four"}},
		{"no space after dot", "Version 2.5 is out. Yes", []string{"Version 2.5 is out.", "Yes"}},
		{"newline separator", "First line.\nSecond line.", []string{"First line.", "Second line."}},
		{"multiple spaces", "A.   B.", []string{"A.", "B."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d sentences, got %d: %q", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Sentence %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestSelectRelevant_Filters(t *testing.T) {
	text := "Efteling is a park. It opened in 1952. Baron 1898 is a dive coaster. The weather was nice."

	got := SelectRelevant(text, []string{"EFTELING"}, []string{"baron 1898"}, 10)
	want := "Efteling is a park. Baron 1898 is a dive coaster."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestSelectRelevant_Fallback(t *testing.T) {
	text := "Alpha. Beta. Gamma. Delta."

	got := SelectRelevant(text, []string{"zeta"}, nil, 2)
	if got != "Alpha. Beta." {
		t.Errorf("Expected first 2 sentences, got %q", got)
	}
}

func TestSelectRelevant_Cap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 100; i++ {
		b.WriteString("Coaster sentence. ")
	}

	got := SplitSentences(SelectRelevant(b.String(), []string{"coaster"}, nil, 80))
	if len(got) != 80 {
		t.Errorf("Expected 80 sentences, got %d", len(got))
	}
}

func TestSelectRelevant_EmptyInputAndBlankKeywords(t *testing.T) {
	if got := SelectRelevant("", []string{"x"}, nil, 5); got != "" {
		t.Errorf("Expected empty output, got %q", got)
	}

	// A blank keyword must not match every sentence
	got := SelectRelevant("Alpha. Beta.", []string{"", "  "}, []string{"beta"}, 5)
	if got != "Beta." {
		t.Errorf("Expected only the matching sentence, got %q", got)
	}
}

func TestSelectRelevant_NoLimit(t *testing.T) {
	got := SelectRelevant("A. B. C.", nil, nil, 0)
	if got != "A. B. C." {
		t.Errorf("Expected all sentences, got %q", got)
	}
}
