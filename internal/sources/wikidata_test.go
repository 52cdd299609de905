package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/coasterscan/internal/cache"
	"github.com/ppiankov/coasterscan/internal/model"
)

const eftelingEntity = `{
  "entities": {
    "Q1094": {
      "id": "Q1094",
      "labels": {"nl": {"language": "nl", "value": "Efteling NL"}, "en": {"language": "en", "value": "Efteling"}},
      "claims": {
        "P17": [{"rank": "normal", "mainsnak": {"snaktype": "value", "datavalue": {"type": "wikibase-entityid", "value": {"id": "Q55"}}}}],
        "P1619": [{"rank": "normal", "mainsnak": {"snaktype": "value", "datavalue": {"type": "time", "value": {"time": "+1952-05-31T00:00:00Z", "precision": 11}}}}],
        "P571": [{"rank": "normal", "mainsnak": {"snaktype": "value", "datavalue": {"type": "time", "value": {"time": "+1950-00-00T00:00:00Z", "precision": 9}}}}],
        "P625": [{"rank": "normal", "mainsnak": {"snaktype": "value", "datavalue": {"type": "globecoordinate", "value": {"latitude": 51.65, "longitude": 5.05}}}}],
        "P856": [
          {"rank": "deprecated", "mainsnak": {"snaktype": "value", "datavalue": {"type": "string", "value": "http://old.efteling.nl"}}},
          {"rank": "normal", "mainsnak": {"snaktype": "value", "datavalue": {"type": "string", "value": "https://www.efteling.com"}}}
        ]
      }
    }
  }
}`

func newWikidataServer(t *testing.T, searchBody, entityBody string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		switch {
		case r.URL.Path == "/w/api.php":
			if r.URL.Query().Get("action") != "wbsearchentities" {
				t.Errorf("Expected wbsearchentities, got %s", r.URL.Query().Get("action"))
			}
			_, _ = fmt.Fprint(w, searchBody)
		case strings.HasPrefix(r.URL.Path, "/wiki/Special:EntityData/"):
			_, _ = fmt.Fprint(w, entityBody)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestWikidata(server *httptest.Server, c cache.Cache) *Wikidata {
	return NewWikidata(server.URL+"/w/api.php", server.URL+"/wiki/Special:EntityData", ClientOptions{
		Timeout:           5 * time.Second,
		UserAgent:         "coasterscan-test",
		RequestsPerSecond: 100,
		Cache:             c,
	}, nil)
}

func TestWikidata_FetchPark(t *testing.T) {
	server := newWikidataServer(t, `{"search": [{"id": "Q1094", "label": "Efteling"}]}`, eftelingEntity, nil)
	defer server.Close()

	rec := newTestWikidata(server, nil).Fetch(context.Background(), Query{Name: "Home - Efteling", Kind: model.KindPark})
	if rec == nil {
		t.Fatal("Expected a record, got nil")
	}

	c := rec.Candidate
	if rec.EntityID != "Q1094" || rec.URL != "https://www.wikidata.org/wiki/Q1094" {
		t.Errorf("Unexpected id/url: %s %s", rec.EntityID, rec.URL)
	}
	if c.Name == nil || *c.Name != "Efteling" {
		t.Errorf("Expected English label, got %v", c.Name)
	}
	if c.CountryCode == nil || *c.CountryCode != "NL" {
		t.Errorf("Expected NL, got %v", c.CountryCode)
	}
	if c.OpeningYear == nil || *c.OpeningYear != 1952 || c.OpeningMonth == nil || *c.OpeningMonth != 5 || c.OpeningDay == nil || *c.OpeningDay != 31 {
		t.Errorf("Expected 1952-05-31 from P1619, got %v %v %v", c.OpeningYear, c.OpeningMonth, c.OpeningDay)
	}
	if c.Latitude == nil || *c.Latitude != 51.65 || c.Longitude == nil || *c.Longitude != 5.05 {
		t.Errorf("Unexpected coordinates: %v %v", c.Latitude, c.Longitude)
	}
	if c.WebsiteURL == nil || *c.WebsiteURL != "https://www.efteling.com" {
		t.Errorf("Expected non-deprecated website, got %v", c.WebsiteURL)
	}

	snippet := rec.Snippet()
	for _, line := range []string{"Official name: Efteling", "Country code: NL", "Opening date: 1952-05-31", "Coordinates: 51.65, 5.05", "Official website: https://www.efteling.com"} {
		if !strings.Contains(snippet.Text, line) {
			t.Errorf("Snippet missing %q: %s", line, snippet.Text)
		}
	}
	if snippet.Label != "Wikidata (structured facts)" {
		t.Errorf("Unexpected label: %s", snippet.Label)
	}
}

func TestWikidata_ManufacturerPrefersInception(t *testing.T) {
	server := newWikidataServer(t, `{"search": [{"id": "Q1094"}]}`, eftelingEntity, nil)
	defer server.Close()

	rec := newTestWikidata(server, nil).Fetch(context.Background(), Query{Name: "Efteling", Kind: model.KindManufacturer})
	if rec == nil {
		t.Fatal("Expected a record, got nil")
	}
	c := rec.Candidate
	if c.OpeningYear == nil || *c.OpeningYear != 1950 {
		t.Errorf("Expected inception year 1950, got %v", c.OpeningYear)
	}
	if c.OpeningMonth != nil || c.OpeningDay != nil {
		t.Errorf("Year precision must null month and day, got %v %v", c.OpeningMonth, c.OpeningDay)
	}
	if c.Latitude != nil {
		t.Error("Manufacturers carry no coordinates")
	}
}

func TestWikidata_NoHits(t *testing.T) {
	server := newWikidataServer(t, `{"search": []}`, eftelingEntity, nil)
	defer server.Close()

	if rec := newTestWikidata(server, nil).Fetch(context.Background(), Query{Name: "Nowhere Land"}); rec != nil {
		t.Errorf("Expected nil, got %+v", rec)
	}
}

func TestWikidata_MalformedAndErrors(t *testing.T) {
	tests := []struct {
		name   string
		search string
		entity string
	}{
		{"malformed search", `{not json`, eftelingEntity},
		{"malformed entity", `{"search": [{"id": "Q1094"}]}`, `<html>`},
		{"empty entities", `{"search": [{"id": "Q1094"}]}`, `{"entities": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newWikidataServer(t, tt.search, tt.entity, nil)
			defer server.Close()

			if rec := newTestWikidata(server, nil).Fetch(context.Background(), Query{Name: "Efteling"}); rec != nil {
				t.Errorf("Expected nil, got %+v", rec)
			}
		})
	}
}

func TestWikidata_RedirectedEntity(t *testing.T) {
	redirected := strings.Replace(eftelingEntity, `"Q1094": {
      "id": "Q1094"`, `"Q9999": {
      "id": "Q9999"`, 1)
	server := newWikidataServer(t, `{"search": [{"id": "Q1094"}]}`, redirected, nil)
	defer server.Close()

	rec := newTestWikidata(server, nil).Fetch(context.Background(), Query{Name: "Efteling", Kind: model.KindPark})
	if rec == nil || rec.EntityID != "Q9999" {
		t.Fatalf("Expected redirected entity Q9999, got %+v", rec)
	}
}

func TestWikidata_UsesCache(t *testing.T) {
	var calls atomic.Int32
	server := newWikidataServer(t, `{"search": [{"id": "Q1094"}]}`, eftelingEntity, &calls)
	defer server.Close()

	wd := newTestWikidata(server, cache.NewMemoryCache(time.Minute, time.Minute))
	for i := 0; i < 3; i++ {
		if rec := wd.Fetch(context.Background(), Query{Name: "Efteling", Kind: model.KindPark}); rec == nil {
			t.Fatal("Expected a record")
		}
	}
	if calls.Load() != 2 {
		t.Errorf("Expected 2 upstream calls with caching, got %d", calls.Load())
	}
}

func TestParseEntity_ClaimIsolation(t *testing.T) {
	e := wbEntity{
		Labels: map[string]struct {
			Language string `json:"language"`
			Value    string `json:"value"`
		}{"de": {Language: "de", Value: "Phantasialand"}, "fr": {Language: "fr", Value: "Phantasialand FR"}},
		Claims: map[string][]wbClaim{},
	}
	bad := wbClaim{}
	bad.Mainsnak.DataValue.Value = []byte(`"not an object"`)
	e.Claims[propCountry] = []wbClaim{bad}
	unmapped := wbClaim{}
	unmapped.Mainsnak.DataValue.Value = []byte(`{"id": "Q12345678"}`)
	e.Claims[propOpeningDate] = []wbClaim{bad}
	good := wbClaim{}
	good.Mainsnak.DataValue.Value = []byte(`"https://www.phantasialand.de"`)
	e.Claims[propWebsite] = []wbClaim{good}

	c := parseEntity(e, model.KindPark, "en")
	if c.Name == nil || *c.Name != "Phantasialand" {
		t.Errorf("Expected alphabetically first label (de), got %v", c.Name)
	}
	if c.CountryCode != nil || c.OpeningYear != nil {
		t.Errorf("Malformed claims must yield null, got %v %v", c.CountryCode, c.OpeningYear)
	}
	if c.WebsiteURL == nil || *c.WebsiteURL != "https://www.phantasialand.de" {
		t.Errorf("Good claim must survive bad siblings, got %v", c.WebsiteURL)
	}

	e.Claims[propCountry] = []wbClaim{unmapped}
	if c := parseEntity(e, model.KindPark, "en"); c.CountryCode != nil {
		t.Errorf("Unmapped country must be null, got %s", *c.CountryCode)
	}
}

func TestParseWikidataTime(t *testing.T) {
	tests := []struct {
		value     string
		precision int
		y, m, d   int
		ok        bool
	}{
		{"+1952-05-31T00:00:00Z", 11, 1952, 5, 31, true},
		{"+1952-05-31T00:00:00Z", 10, 1952, 5, 0, true},
		{"+1952-05-31T00:00:00Z", 9, 1952, 0, 0, true},
		{"+1952-00-00T00:00:00Z", 11, 1952, 0, 0, true},
		{"+1950-01-01T00:00:00Z", 8, 0, 0, 0, false},
		{"-0500-01-01T00:00:00Z", 9, 0, 0, 0, false},
		{"garbage", 11, 0, 0, 0, false},
	}

	for _, tt := range tests {
		y, m, d, ok := parseWikidataTime(tt.value, tt.precision)
		if ok != tt.ok {
			t.Errorf("%s/%d: expected ok=%v, got %v", tt.value, tt.precision, tt.ok, ok)
			continue
		}
		if !ok {
			continue
		}
		if *y != tt.y || intOrZero(m) != tt.m || intOrZero(d) != tt.d {
			t.Errorf("%s/%d: got %v-%v-%v", tt.value, tt.precision, *y, intOrZero(m), intOrZero(d))
		}
	}
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func TestNormalizeName(t *testing.T) {
	tests := map[string]string{
		"Home - Efteling": "Efteling",
		"Efteling":        "Efteling",
		"  Vekoma  ":      "Vekoma",
		"A - B - C":       "C",
		"Walibi-Holland":  "Walibi-Holland",
	}
	for in, want := range tests {
		if got := NormalizeName(in); got != want {
			t.Errorf("NormalizeName(%q) = %q, want %q", in, got, want)
		}
	}
}
