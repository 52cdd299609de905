package reconcile

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/coasterscan/internal/extract"
	"github.com/ppiankov/coasterscan/internal/model"
)

// profile lists the field groups a kind reconciles beyond name, country,
// website and notes
type profile struct {
	openingDate bool
	coordinates bool
}

var profiles = map[model.Kind]profile{
	model.KindPark:         {openingDate: true, coordinates: true},
	model.KindManufacturer: {},
}

// Evidence sources, in merge priority order
const (
	fromKnowledgeBase = "knowledge_base"
	fromFacts         = "official_facts"
	fromCombined      = "combined"
	fromTitle         = "title"
	fromSummary       = "summary"
	fromDescription   = "meta_description"
)

type choice[T any] struct {
	source string
	value  *T
}

// firstSet returns the first choice with a value
func firstSet[T any](choices ...choice[T]) (choice[T], bool) {
	for _, c := range choices {
		if c.value != nil {
			return c, true
		}
	}
	return choice[T]{}, false
}

// nonBlank drops empty strings so they never win a merge
func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// merge resolves each field independently and returns the proposed field map
func merge(e *model.Entity, prof profile, ev *evidence, log *zap.Logger) model.FieldMap {
	proposed := e.Fields()
	kb := model.Candidate{}
	if ev.record != nil {
		kb = ev.record.Candidate
	}
	combined := ev.combined

	decided := func(field, source string, value any) {
		log.Debug("field resolved", zap.String("field", field), zap.String("source", source), zap.Any("value", value))
	}

	// name
	var title *string
	if ev.page != nil {
		if t := extract.TitleName(ev.page.Title); t != "" && t != strings.TrimSpace(e.Name) {
			title = &t
		}
	}
	if c, ok := firstSet(
		choice[string]{fromKnowledgeBase, nonBlank(kb.Name)},
		choice[string]{fromFacts, nonBlank(ev.facts.Name)},
		choice[string]{fromCombined, nonBlank(combined.Name)},
		choice[string]{fromTitle, title},
	); ok {
		proposed["name"] = *c.value
		decided("name", c.source, *c.value)
	}

	// country
	if c, ok := firstSet(
		choice[string]{fromKnowledgeBase, nonBlank(kb.CountryCode)},
		choice[string]{fromFacts, model.NormalizeCountry(deref(ev.facts.LocationCountry))},
		choice[string]{fromCombined, model.NormalizeCountry(deref(combined.CountryCode))},
	); ok {
		proposed["country_code"] = *c.value
		decided("country_code", c.source, *c.value)
	}

	// website
	if c, ok := firstSet(
		choice[string]{fromKnowledgeBase, nonBlank(kb.WebsiteURL)},
		choice[string]{fromCombined, nonBlank(combined.WebsiteURL)},
	); ok && !SameWebsite(*c.value, e.Website()) {
		proposed["website_url"] = *c.value
		decided("website_url", c.source, *c.value)
	}

	// notes
	current := strings.TrimSpace(deref(e.Notes))
	var description *string
	if ev.page != nil {
		if d := strings.TrimSpace(ev.page.Description); d != "" && d != current {
			description = &d
		}
	}
	if c, ok := firstSet(
		choice[string]{fromSummary, nonBlank(ev.summary)},
		choice[string]{fromDescription, description},
	); ok {
		proposed["notes"] = *c.value
		decided("notes", c.source, *c.value)
	}

	if prof.openingDate {
		mergeOpeningDate(e, proposed, kb, ev.facts, combined, decided)
	}
	if prof.coordinates {
		mergeCoordinates(proposed, kb, combined, decided)
	}
	return proposed
}

type date struct {
	year, month, day *int
}

// mergeOpeningDate takes the whole date from the first source that knows
// the year. Month and day unknown to that source keep their current values
// when the year agrees with the current one; otherwise they are cleared.
func mergeOpeningDate(e *model.Entity, proposed model.FieldMap, kb model.Candidate, f model.Facts, combined model.Candidate, decided func(string, string, any)) {
	candidates := []struct {
		source string
		d      date
	}{
		{fromKnowledgeBase, date{kb.OpeningYear, kb.OpeningMonth, kb.OpeningDay}},
		{fromFacts, date{year: f.OpeningYear}},
		{fromCombined, date{combined.OpeningYear, combined.OpeningMonth, combined.OpeningDay}},
	}

	for _, c := range candidates {
		if c.d.year == nil {
			continue
		}
		d := c.d
		if e.OpeningYear != nil && *e.OpeningYear == *d.year {
			if d.month == nil {
				d.month = e.OpeningMonth
				if d.day == nil {
					d.day = e.OpeningDay
				}
			}
		}
		if d.month == nil {
			d.day = nil
		}
		proposed["opening_year"] = *d.year
		proposed["opening_month"] = optional(d.month)
		proposed["opening_day"] = optional(d.day)
		decided("opening_date", c.source, formatDate(d))
		return
	}
}

// mergeCoordinates takes latitude and longitude together from one source
func mergeCoordinates(proposed model.FieldMap, kb, combined model.Candidate, decided func(string, string, any)) {
	for _, c := range []struct {
		source   string
		lat, lon *float64
	}{
		{fromKnowledgeBase, kb.Latitude, kb.Longitude},
		{fromCombined, combined.Latitude, combined.Longitude},
	} {
		if c.lat == nil || c.lon == nil {
			continue
		}
		proposed["latitude"] = *c.lat
		proposed["longitude"] = *c.lon
		decided("coordinates", c.source, []float64{*c.lat, *c.lon})
		return
	}
}

// SameWebsite compares two URLs ignoring host case and a trailing slash
func SameWebsite(a, b string) bool {
	return canonicalURL(a) == canonicalURL(b)
}

func canonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(strings.ToLower(raw), "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

func formatDate(d date) string {
	s := fmt.Sprintf("%04d", *d.year)
	if d.month != nil {
		s += fmt.Sprintf("-%02d", *d.month)
		if d.day != nil {
			s += fmt.Sprintf("-%02d", *d.day)
		}
	}
	return s
}

// optional converts a pointer into a field value, nil staying untyped
func optional[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
