package cli

import (
	"bytes"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/coasterscan/internal/model"
)

func TestSplitFields(t *testing.T) {
	got := splitFields(" country_code, ,opening_year,")
	if len(got) != 2 || got[0] != "country_code" || got[1] != "opening_year" {
		t.Errorf("splitFields = %v", got)
	}
	if got := splitFields(""); got != nil {
		t.Errorf("splitFields(\"\") = %v, want nil", got)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{"NL", `"NL"`},
		{1952, "1952"},
		{51.65, "51.65"},
	}
	for _, tt := range tests {
		if got := formatValue(tt.in); got != tt.want {
			t.Errorf("formatValue(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestPrintChanges(t *testing.T) {
	var buf bytes.Buffer
	printChanges(&buf, model.KindPark,
		model.FieldMap{"country_code": nil, "opening_year": 1950},
		model.FieldMap{"opening_year": 1952, "country_code": "NL"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", buf.String())
	}
	if !strings.Contains(lines[0], "country_code") || !strings.Contains(lines[0], `null -> "NL"`) {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "1950 -> 1952") {
		t.Errorf("unexpected second line: %q", lines[1])
	}
}

func TestMaskSecret(t *testing.T) {
	if got := maskSecret(""); got != "" {
		t.Errorf("maskSecret(\"\") = %q", got)
	}
	if got := maskSecret("abc"); got != "****" {
		t.Errorf("maskSecret(short) = %q", got)
	}
	if got := maskSecret("sk-test-1234"); got != "****1234" {
		t.Errorf("maskSecret = %q", got)
	}
}

func TestDefaultConfigFile_RoundTrips(t *testing.T) {
	content, err := defaultConfigFile()
	if err != nil {
		t.Fatalf("defaultConfigFile: %v", err)
	}
	if !strings.HasPrefix(string(content), "# coasterscan configuration file") {
		t.Errorf("missing header")
	}

	var cfg model.Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		t.Fatalf("generated file is not valid YAML: %v", err)
	}
	want := model.DefaultConfig()
	if cfg.Store.Path != want.Store.Path || cfg.Sources.MaxSentences != want.Sources.MaxSentences {
		t.Errorf("round trip lost values: %+v", cfg)
	}
	if cfg.HTTP.Timeout != want.HTTP.Timeout {
		t.Errorf("timeout = %v, want %v", cfg.HTTP.Timeout, want.HTTP.Timeout)
	}
}

func TestResolveLLM(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "")

	c := model.LLMConfig{}
	resolveLLM(&c)
	if c.Provider != "anthropic" || c.APIKey != "sk-ant-test" {
		t.Errorf("resolveLLM = %+v", c)
	}

	t.Setenv("GOOGLE_API_KEY", "g-key")
	g := model.LLMConfig{Provider: "gemini"}
	resolveLLM(&g)
	if g.APIKey != "g-key" {
		t.Errorf("gemini fallback key = %q", g.APIKey)
	}

	explicit := model.LLMConfig{Provider: "openai", APIKey: "from-config"}
	resolveLLM(&explicit)
	if explicit.APIKey != "from-config" {
		t.Errorf("config key overwritten: %q", explicit.APIKey)
	}
}
