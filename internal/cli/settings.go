package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/ppiankov/coasterscan/internal/model"
)

// setDefaults registers every config key so AutomaticEnv can override it
func setDefaults(cfg model.Config) {
	defaults := map[string]any{
		"http.timeout":                cfg.HTTP.Timeout,
		"http.user_agent":             cfg.HTTP.UserAgent,
		"http.max_bytes":              cfg.HTTP.MaxBytes,
		"http.respect_robots":         cfg.HTTP.RespectRobots,
		"http.http_proxy":             cfg.HTTP.HTTPProxy,
		"http.https_proxy":            cfg.HTTP.HTTPSProxy,
		"http.no_proxy":               cfg.HTTP.NoProxy,
		"cache.enabled":               cfg.Cache.Enabled,
		"cache.dir":                   cfg.Cache.Dir,
		"cache.memory_ttl":            cfg.Cache.MemoryTTL,
		"cache.disk_ttl":              cfg.Cache.DiskTTL,
		"llm.provider":                cfg.LLM.Provider,
		"llm.model":                   cfg.LLM.Model,
		"llm.api_key":                 cfg.LLM.APIKey,
		"llm.base_url":                cfg.LLM.BaseURL,
		"llm.timeout":                 cfg.LLM.Timeout,
		"llm.max_tokens":              cfg.LLM.MaxTokens,
		"sources.wikidata_api":        cfg.Sources.WikidataAPI,
		"sources.wikidata_entity_url": cfg.Sources.WikidataEntityURL,
		"sources.wikipedia_api":       cfg.Sources.WikipediaAPI,
		"sources.language":            cfg.Sources.Language,
		"sources.max_sentences":       cfg.Sources.MaxSentences,
		"sources.official_max_chars":  cfg.Sources.OfficialMaxChars,
		"sources.notes_max_chars":     cfg.Sources.NotesMaxChars,
		"sources.requests_per_second": cfg.Sources.RequestsPerSecond,
		"store.driver":                cfg.Store.Driver,
		"store.path":                  cfg.Store.Path,
		"concurrency.workers":         cfg.Concurrency.Workers,
		"log.level":                   cfg.Log.Level,
		"log.format":                  cfg.Log.Format,
		"log.metrics_file":            cfg.Log.MetricsFile,
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("error decoding config: %w", err)
	}

	// Flags
	if storePath != "" {
		cfg.Store.Path = storePath
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if metricsFile != "" {
		cfg.Log.MetricsFile = metricsFile
	}

	resolveLLM(&cfg.LLM)
	return cfg, nil
}

// resolveLLM fills the credential and endpoint from the provider's usual
// environment variables when the config leaves them empty. Without an
// explicit provider the first configured credential wins.
func resolveLLM(c *model.LLMConfig) {
	if c.Provider == "" {
		switch {
		case os.Getenv("OPENAI_API_KEY") != "":
			c.Provider = "openai"
		case os.Getenv("ANTHROPIC_API_KEY") != "":
			c.Provider = "anthropic"
		case os.Getenv("GEMINI_API_KEY") != "":
			c.Provider = "gemini"
		case os.Getenv("OLLAMA_BASE_URL") != "" && c.Model != "":
			c.Provider = "ollama"
		}
	}

	switch strings.ToLower(c.Provider) {
	case "openai":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic", "claude":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	case "gemini", "google":
		if c.APIKey == "" {
			c.APIKey = os.Getenv("GEMINI_API_KEY")
		}
		if c.APIKey == "" {
			c.APIKey = os.Getenv("GOOGLE_API_KEY")
		}
	case "ollama":
		if c.BaseURL == "" {
			c.BaseURL = os.Getenv("OLLAMA_BASE_URL")
		}
	}
}
