package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newWikipediaServer(t *testing.T, searchBody, extractBody string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("list") == "search":
			if q.Get("srsearch") != "Efteling" {
				t.Errorf("Expected normalized search term, got %q", q.Get("srsearch"))
			}
			_, _ = fmt.Fprint(w, searchBody)
		case q.Get("prop") == "extracts":
			if q.Get("exintro") != "1" || q.Get("explaintext") != "1" {
				t.Errorf("Expected plain-text intro extract, got %v", q)
			}
			_, _ = fmt.Fprint(w, extractBody)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
}

func newTestWikipedia(server *httptest.Server) *Wikipedia {
	return NewWikipedia(server.URL+"/w/api.php", ClientOptions{Timeout: 5 * time.Second, RequestsPerSecond: 100}, nil)
}

func TestWikipedia_Fetch(t *testing.T) {
	server := newWikipediaServer(t,
		`{"query": {"search": [{"pageid": 42, "title": "Efteling"}]}}`,
		`{"query": {"pages": {"42": {"pageid": 42, "title": "Efteling", "extract": "Efteling is a fantasy-themed amusement park. It opened in 1952."}}}}`)
	defer server.Close()

	art := newTestWikipedia(server).Fetch(context.Background(), Query{Name: "Home - Efteling", Lang: "en"})
	if art == nil {
		t.Fatal("Expected an article, got nil")
	}
	if art.URL != "https://en.wikipedia.org/wiki/Efteling" {
		t.Errorf("Unexpected URL: %s", art.URL)
	}
	if art.Extract != "Efteling is a fantasy-themed amusement park. It opened in 1952." {
		t.Errorf("Expected unfiltered extract, got %q", art.Extract)
	}

	sn := art.Snippet("filtered")
	if sn.Label != "Wikipedia (en)" || sn.Text != "filtered" || sn.URL != art.URL {
		t.Errorf("Unexpected snippet: %+v", sn)
	}
}

func TestWikipedia_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		search  string
		extract string
	}{
		{"no hits", `{"query": {"search": []}}`, `{}`},
		{"empty extract", `{"query": {"search": [{"pageid": 42, "title": "Efteling"}]}}`, `{"query": {"pages": {"42": {"pageid": 42, "extract": "  "}}}}`},
		{"missing page", `{"query": {"search": [{"pageid": 42, "title": "Efteling"}]}}`, `{"query": {"pages": {"42": {"missing": ""}}}}`},
		{"malformed", `oops`, `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newWikipediaServer(t, tt.search, tt.extract)
			defer server.Close()

			if art := newTestWikipedia(server).Fetch(context.Background(), Query{Name: "Efteling"}); art != nil {
				t.Errorf("Expected nil, got %+v", art)
			}
		})
	}
}

func TestWikipedia_EndpointTemplate(t *testing.T) {
	w := NewWikipedia("https://%s.wikipedia.org/w/api.php", ClientOptions{}, nil)
	if got := w.endpoint("nl"); got != "https://nl.wikipedia.org/w/api.php" {
		t.Errorf("Unexpected endpoint: %s", got)
	}
}
