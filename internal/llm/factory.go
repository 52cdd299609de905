package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/coasterscan/internal/model"
)

// NewCompleter creates a Completer based on configuration. An empty provider,
// or a hosted provider without an API key, yields Disabled.
func NewCompleter(config Config) (Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	switch provider {
	case "openai":
		if config.APIKey == "" {
			return Disabled{}, nil
		}
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		if config.APIKey == "" {
			return Disabled{}, nil
		}
		return NewAnthropicProvider(config)

	case "gemini", "google":
		if config.APIKey == "" {
			return Disabled{}, nil
		}
		return NewGeminiProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "", "none", "disabled":
		return Disabled{}, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, gemini, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:   modelConfig.Provider,
		Model:      modelConfig.Model,
		APIKey:     modelConfig.APIKey,
		BaseURL:    modelConfig.BaseURL,
		Timeout:    modelConfig.Timeout,
		MaxTokens:  modelConfig.MaxTokens,
		HTTPProxy:  httpConfig.HTTPProxy,
		HTTPSProxy: httpConfig.HTTPSProxy,
		NoProxy:    httpConfig.NoProxy,
	}
}
