// Package facts turns noisy source text into normalized facts, structured
// candidates and short neutral summaries using an injected text capability.
package facts

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/coasterscan/internal/llm"
	"github.com/ppiankov/coasterscan/internal/model"
)

const (
	// MaxFactsInput caps the text sent for fact extraction
	MaxFactsInput = 6000
	// MaxStructuredInput caps the combined snippet text for structured extraction
	MaxStructuredInput = 12000

	maxKeywords = 20
	maxNames    = 30
)

// Extractor extracts facts and structured candidates
type Extractor struct {
	completer llm.Completer
	logger    *zap.Logger
}

// NewExtractor creates an Extractor. A nil completer behaves as llm.Disabled.
func NewExtractor(completer llm.Completer, logger *zap.Logger) *Extractor {
	if completer == nil {
		completer = llm.Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{completer: completer, logger: logger}
}

// ExtractFacts extracts the kind-specific fact schema from text. It never
// fails: any problem yields fully defaulted facts.
func (e *Extractor) ExtractFacts(ctx context.Context, kind model.Kind, text, lang string) model.Facts {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.EmptyFacts()
	}
	text = model.TruncateRunes(text, MaxFactsInput)

	out, err := e.completer.Complete(ctx, llm.Request{
		System:      extractionSystem,
		User:        factsPrompt(kind, text, lang),
		Temperature: 0.1,
		MaxTokens:   700,
	})
	if err != nil {
		e.logFailure("facts", err)
		return model.EmptyFacts()
	}

	obj, ok := llm.ParseJSONObject(out)
	if !ok {
		e.logger.Warn("fact extraction returned no JSON object", zap.String("kind", string(kind)))
		return model.EmptyFacts()
	}
	return NormalizeFacts(kind, obj)
}

// NormalizeFacts coerces a decoded JSON object into Facts for the kind.
// Missing keys default to null or an empty list; non-list values for list
// fields become empty lists.
func NormalizeFacts(kind model.Kind, obj map[string]any) model.Facts {
	f := model.EmptyFacts()
	f.Name = stringValue(obj["name"])
	f.LocationCountry = stringValue(obj["location_country"])
	f.OpeningYear = intValue(obj["opening_year"])
	f.Keywords = listValue(obj["keywords"], maxKeywords)

	switch kind {
	case model.KindManufacturer:
		f.RideTypes = listValue(obj["ride_types"], maxKeywords)
		f.NotableCoasters = listValue(obj["notable_coasters"], maxNames)
		f.NotableParks = listValue(obj["notable_parks"], maxNames)
	default:
		f.LocationCity = stringValue(obj["location_city"])
		f.MentionedCoasters = listValue(obj["mentioned_coasters"], maxNames)
	}
	return f
}

// ExtractStructured runs the secondary extraction pass over the combined
// snippets. Failures yield an empty candidate.
func (e *Extractor) ExtractStructured(ctx context.Context, kind model.Kind, name string, snippets []model.Snippet, lang string) model.Candidate {
	body := renderSnippets(snippets, MaxStructuredInput)
	if body == "" {
		return model.Candidate{}
	}

	out, err := e.completer.Complete(ctx, llm.Request{
		System:      extractionSystem,
		User:        structuredPrompt(kind, name, body),
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		e.logFailure("structured", err)
		return model.Candidate{}
	}

	obj, ok := llm.ParseJSONObject(out)
	if !ok {
		e.logger.Warn("structured extraction returned no JSON object", zap.String("kind", string(kind)))
		return model.Candidate{}
	}
	return NormalizeCandidate(kind, obj)
}

// NormalizeCandidate coerces a decoded JSON object into a Candidate.
// Out-of-range months, days and coordinates are dropped.
func NormalizeCandidate(kind model.Kind, obj map[string]any) model.Candidate {
	c := model.Candidate{
		Name:        stringValue(obj["name"]),
		OpeningYear: intValue(obj["opening_year"]),
		WebsiteURL:  stringValue(obj["website_url"]),
	}
	if code := stringValue(obj["country_code"]); code != nil {
		c.CountryCode = model.NormalizeCountry(*code)
	}
	if kind == model.KindManufacturer {
		return c
	}

	c.OpeningMonth = inRange(intValue(obj["opening_month"]), 1, 12)
	c.OpeningDay = inRange(intValue(obj["opening_day"]), 1, 31)
	lat := floatValue(obj["latitude"])
	lon := floatValue(obj["longitude"])
	if lat != nil && lon != nil && math.Abs(*lat) <= 90 && math.Abs(*lon) <= 180 {
		c.Latitude, c.Longitude = lat, lon
	}
	return c
}

func (e *Extractor) logFailure(pass string, err error) {
	if llm.IsUnavailable(err) {
		e.logger.Debug("text capability unavailable", zap.String("pass", pass))
		return
	}
	e.logger.Warn("extraction failed", zap.String("pass", pass), zap.Error(err))
}

func stringValue(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return nil
	}
	return &s
}

func intValue(v any) *int {
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) {
			return nil
		}
		n := int(t)
		return &n
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		return &n
	}
	return nil
}

func floatValue(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

func inRange(v *int, lo, hi int) *int {
	if v == nil || *v < lo || *v > hi {
		return nil
	}
	return v
}

func listValue(v any, max int) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if len(out) >= max {
			break
		}
		if s := stringValue(item); s != nil {
			out = append(out, *s)
		}
	}
	return out
}
