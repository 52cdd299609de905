package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/coasterscan/internal/cache"
	"github.com/ppiankov/coasterscan/internal/util"
	"github.com/ppiankov/coasterscan/internal/worker"
)

// maxAPIBytes caps a single knowledge-base or encyclopedia response
const maxAPIBytes = 4 << 20

// ClientOptions configures the shared HTTP client used by providers
type ClientOptions struct {
	Timeout           time.Duration
	UserAgent         string
	HTTPProxy         string
	HTTPSProxy        string
	NoProxy           string
	RequestsPerSecond float64
	Cache             cache.Cache
	CacheTTL          time.Duration
}

// apiClient performs rate-limited, cached JSON GET requests
type apiClient struct {
	httpClient *http.Client
	userAgent  string
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
}

// NewHTTPClient returns an http.Client with the configured timeout and proxy
// and a redirect cap of 5
func NewHTTPClient(timeout time.Duration, httpProxy, httpsProxy, noProxy string) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		},
	}
}

func newAPIClient(opts ClientOptions) *apiClient {
	c := opts.Cache
	if c == nil {
		c = cache.Nop{}
	}
	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &apiClient{
		httpClient: NewHTTPClient(opts.Timeout, opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy),
		userAgent:  opts.UserAgent,
		limiter:    worker.NewLimiter(rps, 2),
		cache:      c,
		cacheTTL:   opts.CacheTTL,
	}
}

// getJSON fetches endpoint?params and decodes the body into v. Successful
// bodies are cached under namespace.
func (c *apiClient) getJSON(ctx context.Context, namespace, endpoint string, params url.Values, v any) error {
	target := endpoint
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	key := cache.Key(namespace, target)
	if body, ok := c.cache.Get(key); ok {
		if err := json.Unmarshal(body, v); err == nil {
			return nil
		}
		_ = c.cache.Delete(key)
	}

	if err := c.limiter.Wait(ctx, target); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	_ = c.cache.Set(key, body, c.cacheTTL)
	return nil
}
