package model

import "time"

// Snippet is one labelled piece of source text handed to the summarizer
type Snippet struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	URL   string `json:"url,omitempty"`
}

// Facts is the normalized output of fact extraction for one entity.
// List fields are never nil.
type Facts struct {
	Name              *string  `json:"name"`
	LocationCountry   *string  `json:"location_country"`
	LocationCity      *string  `json:"location_city,omitempty"`
	OpeningYear       *int     `json:"opening_year"`
	Keywords          []string `json:"keywords"`
	MentionedCoasters []string `json:"mentioned_coasters,omitempty"`
	RideTypes         []string `json:"ride_types,omitempty"`
	NotableCoasters   []string `json:"notable_coasters,omitempty"`
	NotableParks      []string `json:"notable_parks,omitempty"`
}

// EmptyFacts returns facts with every list initialized
func EmptyFacts() Facts {
	return Facts{
		Keywords:          []string{},
		MentionedCoasters: []string{},
		RideTypes:         []string{},
		NotableCoasters:   []string{},
		NotableParks:      []string{},
	}
}

// CoasterNames returns every coaster name the facts mention
func (f Facts) CoasterNames() []string {
	names := make([]string, 0, len(f.MentionedCoasters)+len(f.NotableCoasters))
	names = append(names, f.MentionedCoasters...)
	names = append(names, f.NotableCoasters...)
	return names
}

// Candidate holds structured field values proposed by one source
type Candidate struct {
	Name         *string  `json:"name"`
	CountryCode  *string  `json:"country_code"`
	OpeningYear  *int     `json:"opening_year"`
	OpeningMonth *int     `json:"opening_month"`
	OpeningDay   *int     `json:"opening_day"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	WebsiteURL   *string  `json:"website_url"`
}

// MaxProvenanceChars caps the stored raw and clean text of a source page
const MaxProvenanceChars = 10000

// SourcePage is a provenance record of one fetched source
type SourcePage struct {
	ID         string    `json:"id"`
	EntityKind Kind      `json:"entity_kind"`
	EntityID   string    `json:"entity_id"`
	URL        string    `json:"url"`
	StatusCode int       `json:"status_code,omitempty"`
	Error      string    `json:"error,omitempty"`
	RawHTML    string    `json:"raw_html,omitempty"`
	CleanText  string    `json:"clean_text,omitempty"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Truncate cuts RawHTML and CleanText to MaxProvenanceChars runes
func (p *SourcePage) Truncate() {
	p.RawHTML = TruncateRunes(p.RawHTML, MaxProvenanceChars)
	p.CleanText = TruncateRunes(p.CleanText, MaxProvenanceChars)
}

// TruncateRunes returns at most max runes of s
func TruncateRunes(s string, max int) string {
	if max < 0 {
		return s
	}
	if len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
