package facts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/coasterscan/internal/llm"
	"github.com/ppiankov/coasterscan/internal/model"
)

func TestSummarize_DegradesToFirstSnippet(t *testing.T) {
	s := NewSummarizer(&stubCompleter{err: llm.ErrUnavailable}, nil)
	snippets := []model.Snippet{
		{Label: "Wikidata (structured facts)", Text: "   "},
		{Label: "Official website", Text: "  Efteling is a fairy-tale park in the Netherlands.  "},
		{Label: "Wikipedia (en)", Text: "Other text."},
	}

	notes := s.Summarize(context.Background(), "Efteling", model.KindPark, snippets, "en", 20)

	require.NotNil(t, notes)
	assert.Equal(t, "Efteling is a fairy-", *notes)
}

func TestSummarize_DisabledWithoutCompleter(t *testing.T) {
	s := NewSummarizer(nil, nil)
	notes := s.Summarize(context.Background(), "Vekoma", model.KindManufacturer, []model.Snippet{{Label: "x", Text: "Vekoma builds coasters."}}, "en", 800)

	require.NotNil(t, notes)
	assert.Equal(t, "Vekoma builds coasters.", *notes)
}

func TestSummarize_NoSnippets(t *testing.T) {
	stub := &stubCompleter{out: "text"}
	s := NewSummarizer(stub, nil)

	assert.Nil(t, s.Summarize(context.Background(), "X", model.KindPark, nil, "en", 800))
	assert.Nil(t, s.Summarize(context.Background(), "X", model.KindPark, []model.Snippet{{Text: " "}}, "en", 800))
	assert.Empty(t, stub.requests)
}

func TestSummarize_UsesCapability(t *testing.T) {
	stub := &stubCompleter{out: "  Efteling is a theme park in Kaatsheuvel.  "}
	s := NewSummarizer(stub, nil)
	snippets := []model.Snippet{
		{Label: "Official website", Text: "Welcome to Efteling.", URL: "https://www.efteling.com"},
		{Label: "Wikipedia (en)", Text: "Efteling is a fantasy-themed amusement park."},
	}

	notes := s.Summarize(context.Background(), "Efteling", model.KindPark, snippets, "nl", 800)

	require.NotNil(t, notes)
	assert.Equal(t, "Efteling is a theme park in Kaatsheuvel.", *notes)
	require.Len(t, stub.requests, 1)
	req := stub.requests[0]
	assert.Contains(t, req.User, "[SOURCE: Official website — https://www.efteling.com]")
	assert.Contains(t, req.User, "Dutch")
	assert.Less(t, strings.Index(req.User, "Official website"), strings.Index(req.User, "Wikipedia (en)"))
	assert.InDelta(t, 0.3, float64(req.Temperature), 1e-6)
}

func TestSummarize_BlankOrErrorYieldsNil(t *testing.T) {
	snippets := []model.Snippet{{Label: "x", Text: "Some text."}}

	blank := NewSummarizer(&stubCompleter{out: "   "}, nil)
	assert.Nil(t, blank.Summarize(context.Background(), "X", model.KindPark, snippets, "en", 800))

	failing := NewSummarizer(&stubCompleter{err: errors.New("timeout")}, nil)
	assert.Nil(t, failing.Summarize(context.Background(), "X", model.KindPark, snippets, "en", 800))
}

func TestSummarize_TruncatesOutput(t *testing.T) {
	stub := &stubCompleter{out: strings.Repeat("word ", 400)}
	notes := NewSummarizer(stub, nil).Summarize(context.Background(), "X", model.KindPark, []model.Snippet{{Text: "t"}}, "en", 800)

	require.NotNil(t, notes)
	assert.LessOrEqual(t, len([]rune(*notes)), 800)
}

func TestRenderSnippets_Budget(t *testing.T) {
	snippets := []model.Snippet{
		{Label: "A", Text: strings.Repeat("a", 50)},
		{Label: "B", Text: strings.Repeat("b", 100)},
		{Label: "C", Text: "never included"},
	}

	out := renderSnippets(snippets, 100)

	assert.Contains(t, out, "[SOURCE: A]")
	assert.Contains(t, out, "[SOURCE: B]")
	assert.NotContains(t, out, "never included")
	assert.LessOrEqual(t, len(out), 110)
}

func TestSummarize_KindEmphasis(t *testing.T) {
	snippets := []model.Snippet{{Label: "Official website", Text: "Some text."}}

	park := &stubCompleter{out: "Park."}
	NewSummarizer(park, nil).Summarize(context.Background(), "Efteling", model.KindPark, snippets, "en", 800)
	require.Len(t, park.requests, 1)
	assert.Contains(t, park.requests[0].System, "location")
	assert.Contains(t, park.requests[0].System, "role in the amusement industry")
	assert.Contains(t, park.requests[0].System, "roller coasters")

	mfr := &stubCompleter{out: "Manufacturer."}
	NewSummarizer(mfr, nil).Summarize(context.Background(), "Vekoma", model.KindManufacturer, snippets, "en", 800)
	require.Len(t, mfr.requests, 1)
	assert.Contains(t, mfr.requests[0].System, "what the company builds")
	assert.NotContains(t, mfr.requests[0].System, "role in the amusement industry")
}
