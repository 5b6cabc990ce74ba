package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and configures the provider used by the LLM classifier.
// The yaml tags let it nest under the "llm" key of the rcscout config file.
type Config struct {
	// Provider is one of "anthropic", "openai", "gemini", "openrouter"
	// or "mock".
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// Timeout bounds one classification call including retries.
	Timeout time.Duration `yaml:"timeout"`

	// MaxTokens caps each reply.
	MaxTokens int `yaml:"max_tokens"`
}

type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// RetryConfig drives exponential backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout:   30 * time.Second,
		MaxTokens: 512,
	}
}

// envBinding ties an RCSCOUT_* variable to a Config field.
type envBinding struct {
	name string
	set  func(*Config, string)
}

var envBindings = []envBinding{
	{"RCSCOUT_LLM_PROVIDER", func(c *Config, v string) { c.Provider = v }},
	{"RCSCOUT_ANTHROPIC_API_KEY", func(c *Config, v string) { c.Anthropic.APIKey = v }},
	{"RCSCOUT_ANTHROPIC_MODEL", func(c *Config, v string) { c.Anthropic.Model = v }},
	{"RCSCOUT_OPENAI_API_KEY", func(c *Config, v string) { c.OpenAI.APIKey = v }},
	{"RCSCOUT_OPENAI_MODEL", func(c *Config, v string) { c.OpenAI.Model = v }},
	{"RCSCOUT_OPENAI_BASE_URL", func(c *Config, v string) { c.OpenAI.BaseURL = v }},
	{"RCSCOUT_GEMINI_API_KEY", func(c *Config, v string) { c.Gemini.APIKey = v }},
	{"RCSCOUT_GEMINI_MODEL", func(c *Config, v string) { c.Gemini.Model = v }},
	{"RCSCOUT_OPENROUTER_API_KEY", func(c *Config, v string) { c.OpenRouter.APIKey = v }},
	{"RCSCOUT_OPENROUTER_MODEL", func(c *Config, v string) { c.OpenRouter.Model = v }},
}

// ApplyEnv overrides cfg with any RCSCOUT_* LLM variables that are set.
func ApplyEnv(cfg *Config) {
	for _, b := range envBindings {
		if v := os.Getenv(b.name); v != "" {
			b.set(cfg, v)
		}
	}
}

// ConfigFromEnv is DefaultConfig with environment overrides applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	return cfg
}

// discoverKeys lists the vendors' own API key variables in lookup order.
var discoverKeys = []struct {
	env      string
	provider string
	set      func(*Config, string)
}{
	{"ANTHROPIC_API_KEY", "anthropic", func(c *Config, v string) { c.Anthropic.APIKey = v }},
	{"OPENAI_API_KEY", "openai", func(c *Config, v string) { c.OpenAI.APIKey = v }},
	{"GEMINI_API_KEY", "gemini", func(c *Config, v string) { c.Gemini.APIKey = v }},
	{"OPENROUTER_API_KEY", "openrouter", func(c *Config, v string) { c.OpenRouter.APIKey = v }},
}

// Discover fills in a provider and key from the vendors' standard
// variables when cfg has no usable key of its own. It reports whether cfg
// is usable afterwards.
func Discover(cfg *Config) bool {
	if cfg.Validate() == nil {
		return true
	}
	for _, d := range discoverKeys {
		if v := os.Getenv(d.env); v != "" {
			cfg.Provider = d.provider
			d.set(cfg, v)
			return true
		}
	}
	return false
}

// Validate checks that the selected provider has an API key.
func (c Config) Validate() error {
	var key, env string
	switch c.Provider {
	case "anthropic":
		key, env = c.Anthropic.APIKey, "RCSCOUT_ANTHROPIC_API_KEY"
	case "openai":
		key, env = c.OpenAI.APIKey, "RCSCOUT_OPENAI_API_KEY"
	case "gemini":
		key, env = c.Gemini.APIKey, "RCSCOUT_GEMINI_API_KEY"
	case "openrouter":
		key, env = c.OpenRouter.APIKey, "RCSCOUT_OPENROUTER_API_KEY"
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("%s is required for the %s provider", env, c.Provider)
	}
	return nil
}
