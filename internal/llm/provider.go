package llm

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when no text capability is configured.
// Callers treat it as a signal to degrade, never as a run failure.
var ErrUnavailable = errors.New("llm: capability unavailable")

// Completer is the text-understanding capability used by fact extraction
// and summarization
type Completer interface {
	// Name returns the provider name
	Name() string

	// Complete returns the model's text for a single system/user exchange
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is one completion request
type Request struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic/Gemini
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens is used when a request does not set its own limit
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "", // Disabled by default
		Timeout:   30,
		MaxTokens: 700,
	}
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout <= 0 {
		return fallback
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c Config) maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 700
}

// Disabled is the Completer used when no provider or credential is configured
type Disabled struct{}

// Name returns the provider name
func (Disabled) Name() string {
	return "disabled"
}

// Complete always returns ErrUnavailable
func (Disabled) Complete(ctx context.Context, req Request) (string, error) {
	return "", ErrUnavailable
}

// IsUnavailable reports whether err means no capability is configured
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
