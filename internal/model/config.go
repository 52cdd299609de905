package model

import "time"

// Config is the complete application configuration
type Config struct {
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Sources     SourcesConfig     `yaml:"sources" mapstructure:"sources"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// HTTPConfig controls outbound fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBytes      int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// CacheConfig controls the knowledge-base and encyclopedia response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// LLMConfig selects the text-understanding provider
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"`
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SourcesConfig holds source endpoints and selection limits
type SourcesConfig struct {
	WikidataAPI       string  `yaml:"wikidata_api" mapstructure:"wikidata_api"`
	WikidataEntityURL string  `yaml:"wikidata_entity_url" mapstructure:"wikidata_entity_url"`
	WikipediaAPI      string  `yaml:"wikipedia_api" mapstructure:"wikipedia_api"`
	Language          string  `yaml:"language" mapstructure:"language"`
	MaxSentences      int     `yaml:"max_sentences" mapstructure:"max_sentences"`
	OfficialMaxChars  int     `yaml:"official_max_chars" mapstructure:"official_max_chars"`
	NotesMaxChars     int     `yaml:"notes_max_chars" mapstructure:"notes_max_chars"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// ConcurrencyConfig controls batch reconciliation
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Format      string `yaml:"format" mapstructure:"format"`
	MetricsFile string `yaml:"metrics_file,omitempty" mapstructure:"metrics_file"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout:       10 * time.Second,
			UserAgent:     "coasterscan/0.1 (+https://github.com/ppiankov/coasterscan)",
			MaxBytes:      2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".coasterscan/cache",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		LLM: LLMConfig{
			Provider:  "",
			Model:     "",
			Timeout:   30,
			MaxTokens: 700,
		},
		Sources: SourcesConfig{
			WikidataAPI:       "https://www.wikidata.org/w/api.php",
			WikidataEntityURL: "https://www.wikidata.org/wiki/Special:EntityData",
			WikipediaAPI:      "https://%s.wikipedia.org/w/api.php",
			Language:          "en",
			MaxSentences:      80,
			OfficialMaxChars:  8000,
			NotesMaxChars:     800,
			RequestsPerSecond: 5,
		},
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   ".coasterscan/coasterscan.db",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
