package sources

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/coasterscan/internal/model"
)

// Article is the intro extract of the best-matching encyclopedia page
type Article struct {
	Title   string
	PageID  int
	URL     string
	Lang    string
	Extract string
}

// Snippet renders the article with the given (usually filtered) text
func (a *Article) Snippet(text string) model.Snippet {
	return model.Snippet{
		Label: fmt.Sprintf("Wikipedia (%s)", a.Lang),
		Text:  text,
		URL:   a.URL,
	}
}

// Wikipedia finds an article by full-text search and returns its plain-text intro
type Wikipedia struct {
	client      *apiClient
	apiTemplate string
	logger      *zap.Logger
}

// NewWikipedia creates the encyclopedia provider. apiTemplate is the
// api.php URL; a "%s" in it is replaced by the language code.
func NewWikipedia(apiTemplate string, opts ClientOptions, logger *zap.Logger) *Wikipedia {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wikipedia{
		client:      newAPIClient(opts),
		apiTemplate: apiTemplate,
		logger:      logger,
	}
}

// Name returns the provider name
func (w *Wikipedia) Name() string {
	return "wikipedia"
}

type searchResponse struct {
	Query struct {
		Search []struct {
			PageID int    `json:"pageid"`
			Title  string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int     `json:"pageid"`
			Title   string  `json:"title"`
			Extract string  `json:"extract"`
			Missing *string `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

func (w *Wikipedia) endpoint(lang string) string {
	if strings.Contains(w.apiTemplate, "%s") {
		return fmt.Sprintf(w.apiTemplate, lang)
	}
	return w.apiTemplate
}

// Fetch returns the top search hit's unfiltered intro extract, or nil when
// nothing matches or the extract is empty
func (w *Wikipedia) Fetch(ctx context.Context, q Query) *Article {
	search := NormalizeName(q.Name)
	if search == "" {
		return nil
	}
	lang := q.Lang
	if lang == "" {
		lang = "en"
	}
	api := w.endpoint(lang)

	var hits searchResponse
	err := w.client.getJSON(ctx, "wikipedia", api, url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {search},
		"srlimit":  {"1"},
		"format":   {"json"},
	}, &hits)
	if err != nil {
		w.logger.Warn("wikipedia search failed", zap.String("query", search), zap.Error(err))
		return nil
	}
	if len(hits.Query.Search) == 0 {
		w.logger.Debug("wikipedia search returned no hits", zap.String("query", search))
		return nil
	}
	top := hits.Query.Search[0]

	var pages extractResponse
	err = w.client.getJSON(ctx, "wikipedia", api, url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"pageids":     {strconv.Itoa(top.PageID)},
		"format":      {"json"},
	}, &pages)
	if err != nil {
		w.logger.Warn("wikipedia extract failed", zap.Int("pageid", top.PageID), zap.Error(err))
		return nil
	}

	page, ok := pages.Query.Pages[strconv.Itoa(top.PageID)]
	if !ok || page.Missing != nil {
		return nil
	}
	extract := strings.TrimSpace(page.Extract)
	if extract == "" {
		return nil
	}

	title := page.Title
	if title == "" {
		title = top.Title
	}
	return &Article{
		Title:   title,
		PageID:  top.PageID,
		URL:     fmt.Sprintf("https://%s.wikipedia.org/wiki/%s", lang, url.PathEscape(strings.ReplaceAll(title, " ", "_"))),
		Lang:    lang,
		Extract: extract,
	}
}
