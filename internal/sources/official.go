package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/coasterscan/internal/extract"
	"github.com/ppiankov/coasterscan/internal/model"
	"github.com/ppiankov/coasterscan/internal/util"
	"github.com/ppiankov/coasterscan/internal/worker"
)

// Page is a fetched official web page
type Page struct {
	URL         string
	FinalURL    string
	StatusCode  int
	HTML        string
	Text        string
	Title       string
	Description string
}

// Snippet renders the page text for summarization, capped at maxChars
func (p *Page) Snippet(maxChars int) model.Snippet {
	return model.Snippet{
		Label: "Official website",
		Text:  model.TruncateRunes(p.Text, maxChars),
		URL:   p.URL,
	}
}

// Source builds the provenance record for the page
func (p *Page) Source(kind model.Kind, entityID string) *model.SourcePage {
	sp := &model.SourcePage{
		EntityKind: kind,
		EntityID:   entityID,
		URL:        p.URL,
		StatusCode: p.StatusCode,
		RawHTML:    p.HTML,
		CleanText:  p.Text,
	}
	sp.Truncate()
	return sp
}

// OfficialOptions configures the official-page fetcher
type OfficialOptions struct {
	Timeout       time.Duration
	UserAgent     string
	MaxBytes      int64
	RespectRobots bool
	HTTPProxy     string
	HTTPSProxy    string
	NoProxy       string
}

// Official fetches an entity's own website
type Official struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	logger     *zap.Logger
}

// NewOfficial creates the official-page fetcher
func NewOfficial(opts OfficialOptions, logger *zap.Logger) *Official {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 2_000_000
	}

	client := NewHTTPClient(opts.Timeout, opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy)
	o := &Official{
		httpClient: client,
		userAgent:  opts.UserAgent,
		maxBytes:   opts.MaxBytes,
		limiter:    worker.NewLimiter(1, 1),
		logger:     logger,
	}
	if opts.RespectRobots {
		o.robots = util.NewRobotsChecker(client, opts.UserAgent, opts.Timeout)
	}
	return o
}

// Name returns the provider name
func (o *Official) Name() string {
	return "official"
}

// Fetch retrieves q.URL. Non-2xx responses are returned with their status
// and body; transport errors and robots.txt refusals yield nil.
func (o *Official) Fetch(ctx context.Context, q Query) *Page {
	page, err := o.fetch(ctx, q.URL)
	if err != nil {
		o.logger.Warn("official page unavailable", zap.String("url", q.URL), zap.Error(err))
		return nil
	}
	return page
}

func (o *Official) fetch(ctx context.Context, rawURL string) (*Page, error) {
	var delay time.Duration
	if o.robots != nil {
		allowed, crawlDelay, err := o.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("disallowed by robots.txt")
		}
		delay = crawlDelay
	}
	if err := o.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", o.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, o.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	raw := string(body)
	parsed := extract.ParsePage(raw)
	return &Page{
		URL:         rawURL,
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		HTML:        raw,
		Text:        parsed.Text,
		Title:       parsed.Title,
		Description: parsed.Description,
	}, nil
}
