package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/coasterscan/internal/model"
)

// Wikidata properties read by the provider
const (
	propCountry     = "P17"
	propInception   = "P571"
	propOpeningDate = "P1619"
	propCoordinates = "P625"
	propWebsite     = "P856"
)

// wikidataCountries maps country item ids to ISO 3166-1 alpha-2 codes.
// Anything not listed resolves to null.
var wikidataCountries = map[string]string{
	"Q55": "NL", "Q183": "DE", "Q142": "FR", "Q30": "US", "Q31": "BE",
	"Q145": "GB", "Q29": "ES", "Q38": "IT", "Q39": "CH", "Q36": "PL",
	"Q34": "SE", "Q35": "DK", "Q20": "NO", "Q33": "FI", "Q40": "AT",
	"Q148": "CN", "Q17": "JP", "Q16": "CA", "Q408": "AU", "Q96": "MX",
	"Q155": "BR", "Q884": "KR", "Q213": "CZ", "Q27": "IE", "Q45": "PT",
	"Q878": "AE", "Q159": "RU", "Q668": "IN", "Q43": "TR", "Q334": "SG",
	"Q833": "MY", "Q865": "TW",
}

// Record is a resolved knowledge-base entity
type Record struct {
	EntityID  string
	URL       string
	Candidate model.Candidate
}

// Snippet renders the record as labelled text for summarization
func (r *Record) Snippet() model.Snippet {
	c := r.Candidate
	var lines []string
	if c.Name != nil {
		lines = append(lines, "Official name: "+*c.Name)
	}
	if c.CountryCode != nil {
		lines = append(lines, "Country code: "+*c.CountryCode)
	}
	switch {
	case c.OpeningYear != nil && c.OpeningMonth != nil && c.OpeningDay != nil:
		lines = append(lines, fmt.Sprintf("Opening date: %04d-%02d-%02d", *c.OpeningYear, *c.OpeningMonth, *c.OpeningDay))
	case c.OpeningYear != nil:
		lines = append(lines, fmt.Sprintf("Opening year: %d", *c.OpeningYear))
	}
	if c.Latitude != nil && c.Longitude != nil {
		lines = append(lines, fmt.Sprintf("Coordinates: %s, %s",
			strconv.FormatFloat(*c.Latitude, 'f', -1, 64), strconv.FormatFloat(*c.Longitude, 'f', -1, 64)))
	}
	if c.WebsiteURL != nil {
		lines = append(lines, "Official website: "+*c.WebsiteURL)
	}
	return model.Snippet{
		Label: "Wikidata (structured facts)",
		Text:  strings.Join(lines, "\n"),
		URL:   r.URL,
	}
}

// Wikidata searches the knowledge base and reads an entity's claims
type Wikidata struct {
	client    *apiClient
	apiURL    string
	entityURL string
	logger    *zap.Logger
}

// NewWikidata creates the knowledge-base provider. apiURL is the
// api.php endpoint, entityURL the Special:EntityData base.
func NewWikidata(apiURL, entityURL string, opts ClientOptions, logger *zap.Logger) *Wikidata {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wikidata{
		client:    newAPIClient(opts),
		apiURL:    apiURL,
		entityURL: strings.TrimSuffix(entityURL, "/"),
		logger:    logger,
	}
}

// Name returns the provider name
func (w *Wikidata) Name() string {
	return "wikidata"
}

type wbSearchResponse struct {
	Search []struct {
		ID    string `json:"id"`
		Label string `json:"label"`
	} `json:"search"`
}

type wbEntityResponse struct {
	Entities map[string]wbEntity `json:"entities"`
}

type wbEntity struct {
	ID     string `json:"id"`
	Labels map[string]struct {
		Language string `json:"language"`
		Value    string `json:"value"`
	} `json:"labels"`
	Claims map[string][]wbClaim `json:"claims"`
}

type wbClaim struct {
	Rank     string `json:"rank"`
	Mainsnak struct {
		SnakType  string `json:"snaktype"`
		DataValue struct {
			Type  string          `json:"type"`
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
}

// Fetch resolves q.Name to the first search hit and parses its claims
func (w *Wikidata) Fetch(ctx context.Context, q Query) *Record {
	search := NormalizeName(q.Name)
	if search == "" {
		return nil
	}
	lang := q.Lang
	if lang == "" {
		lang = "en"
	}

	var hits wbSearchResponse
	err := w.client.getJSON(ctx, "wikidata", w.apiURL, url.Values{
		"action":   {"wbsearchentities"},
		"search":   {search},
		"language": {lang},
		"type":     {"item"},
		"limit":    {"1"},
		"format":   {"json"},
	}, &hits)
	if err != nil {
		w.logger.Warn("wikidata search failed", zap.String("query", search), zap.Error(err))
		return nil
	}
	if len(hits.Search) == 0 || hits.Search[0].ID == "" {
		w.logger.Debug("wikidata search returned no hits", zap.String("query", search))
		return nil
	}
	id := hits.Search[0].ID

	var data wbEntityResponse
	if err := w.client.getJSON(ctx, "wikidata", fmt.Sprintf("%s/%s.json", w.entityURL, url.PathEscape(id)), nil, &data); err != nil {
		w.logger.Warn("wikidata entity fetch failed", zap.String("entity", id), zap.Error(err))
		return nil
	}

	entity, ok := data.Entities[id]
	if !ok {
		// redirected ids come back under their target id
		for _, e := range data.Entities {
			entity, ok = e, true
			break
		}
	}
	if !ok {
		return nil
	}
	if entity.ID != "" {
		id = entity.ID
	}

	return &Record{
		EntityID:  id,
		URL:       "https://www.wikidata.org/wiki/" + id,
		Candidate: parseEntity(entity, q.Kind, lang),
	}
}

// parseEntity converts claims into a candidate. Each claim is parsed on its
// own; a malformed claim nulls only the fields it feeds.
func parseEntity(e wbEntity, kind model.Kind, lang string) model.Candidate {
	c := model.Candidate{Name: entityLabel(e, lang)}

	var country struct {
		ID string `json:"id"`
	}
	if decodeClaim(e, propCountry, &country) {
		if code, ok := wikidataCountries[country.ID]; ok {
			c.CountryCode = &code
		}
	}

	dateProps := []string{propOpeningDate, propInception}
	if kind == model.KindManufacturer {
		dateProps = []string{propInception, propOpeningDate}
	}
	for _, prop := range dateProps {
		var t struct {
			Time      string `json:"time"`
			Precision int    `json:"precision"`
		}
		if !decodeClaim(e, prop, &t) {
			continue
		}
		if y, m, d, ok := parseWikidataTime(t.Time, t.Precision); ok {
			c.OpeningYear, c.OpeningMonth, c.OpeningDay = y, m, d
			break
		}
	}

	if kind != model.KindManufacturer {
		var coords struct {
			Latitude  *float64 `json:"latitude"`
			Longitude *float64 `json:"longitude"`
		}
		if decodeClaim(e, propCoordinates, &coords) && coords.Latitude != nil && coords.Longitude != nil {
			c.Latitude, c.Longitude = coords.Latitude, coords.Longitude
		}
	}

	var website string
	if decodeClaim(e, propWebsite, &website) && strings.TrimSpace(website) != "" {
		website = strings.TrimSpace(website)
		c.WebsiteURL = &website
	}

	return c
}

// entityLabel prefers the requested language, then English, then the
// alphabetically first language so the choice is deterministic
func entityLabel(e wbEntity, lang string) *string {
	for _, l := range []string{lang, "en"} {
		if label, ok := e.Labels[l]; ok && label.Value != "" {
			v := label.Value
			return &v
		}
	}
	langs := make([]string, 0, len(e.Labels))
	for l := range e.Labels {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	for _, l := range langs {
		if v := e.Labels[l].Value; v != "" {
			return &v
		}
	}
	return nil
}

// decodeClaim decodes the value of the best claim for prop into v: the
// first preferred claim, else the first normal one. Deprecated claims and
// "novalue"/"somevalue" snaks are skipped.
func decodeClaim(e wbEntity, prop string, v any) bool {
	claims := e.Claims[prop]
	var best *wbClaim
	for i := range claims {
		cl := &claims[i]
		if cl.Rank == "deprecated" || (cl.Mainsnak.SnakType != "" && cl.Mainsnak.SnakType != "value") {
			continue
		}
		if len(cl.Mainsnak.DataValue.Value) == 0 {
			continue
		}
		if cl.Rank == "preferred" {
			best = cl
			break
		}
		if best == nil {
			best = cl
		}
	}
	if best == nil {
		return false
	}
	return json.Unmarshal(best.Mainsnak.DataValue.Value, v) == nil
}

// parseWikidataTime parses "+1952-05-31T00:00:00Z". Precision 9 keeps the
// year only and 10 the year and month; zero month or day components are null.
func parseWikidataTime(value string, precision int) (year, month, day *int, ok bool) {
	if strings.HasPrefix(value, "-") {
		return nil, nil, nil, false
	}
	date := strings.TrimPrefix(value, "+")
	if i := strings.IndexByte(date, 'T'); i >= 0 {
		date = date[:i]
	}
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return nil, nil, nil, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, nil, nil, false
		}
		nums[i] = n
	}
	if nums[0] <= 0 || (precision != 0 && precision < 9) {
		return nil, nil, nil, false
	}

	y := nums[0]
	year = &y
	if (precision == 0 || precision >= 10) && nums[1] >= 1 && nums[1] <= 12 {
		m := nums[1]
		month = &m
	}
	if (precision == 0 || precision >= 11) && month != nil && nums[2] >= 1 && nums[2] <= 31 {
		d := nums[2]
		day = &d
	}
	return year, month, day, true
}
